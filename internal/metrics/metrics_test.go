package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestRecordProviderAttempt(t *testing.T) {
	m := New()
	m.RecordProviderAttempt("gemini", OutcomeSkipped)
	m.RecordProviderAttempt("gemini", OutcomeSkipped)
	m.RecordProviderAttempt("ollama", OutcomeAnswered)

	require.Equal(t, 2.0, testutil.ToFloat64(m.ProviderAttemptsTotal.WithLabelValues("gemini", OutcomeSkipped)))
	require.Equal(t, 1.0, testutil.ToFloat64(m.ProviderAttemptsTotal.WithLabelValues("ollama", OutcomeAnswered)))
}

func TestRecordProbe(t *testing.T) {
	m := New()
	m.RecordProbe(false)

	require.Equal(t, 1.0, testutil.ToFloat64(m.ConnectivityProbesTotal.WithLabelValues("offline")))
	require.Equal(t, 0.0, testutil.ToFloat64(m.ConnectivityProbesTotal.WithLabelValues("online")))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.RecordProbe(true)
	m.RecordProviderAttempt("ollama", OutcomeError)
	m.RecordHTTPRequest("/api/health", http.StatusOK, time.Millisecond)
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := New()
	m.RecordHTTPRequest("/api/chat", http.StatusBadRequest, 10*time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `jarvis_http_requests_total{route="/api/chat",status="400"} 1`)
}
