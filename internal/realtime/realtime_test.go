package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comigor/jarvis-assistant/internal/config"
)

const ddgReply = `{
  "Heading": "Go (programming language)",
  "Abstract": "Go is a statically typed language.",
  "Answer": "",
  "RelatedTopics": [
    {"Text": "Goroutine - lightweight thread"},
    {"Name": "Category", "Topics": []},
    {"Text": "Rob Pike - co-designer"}
  ]
}`

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(config.RealtimeConfig{WeatherURL: srv.URL + "/v1/forecast", SearchURL: srv.URL + "/", Timeout: 2 * time.Second})
}

func TestWeather_PassesDocumentThrough(t *testing.T) {
	doc := `{"latitude":28.6,"current_weather":{"temperature":31.4,"windspeed":7.0}}`
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/forecast", r.URL.Path)
		assert.Equal(t, "28.6", r.URL.Query().Get("latitude"))
		assert.Equal(t, "77.2", r.URL.Query().Get("longitude"))
		assert.Equal(t, "true", r.URL.Query().Get("current_weather"))
		w.Write([]byte(doc))
	})

	raw, err := c.Weather(context.Background(), 28.6, 77.2)
	require.NoError(t, err)
	require.JSONEq(t, doc, string(raw))

	temp, wind := CurrentConditions(raw)
	require.Equal(t, "31.4", temp)
	require.Equal(t, "7.0", wind)
}

func TestCurrentConditions_Missing(t *testing.T) {
	temp, wind := CurrentConditions(json.RawMessage(`{"current_weather":{"temperature":null}}`))
	require.Equal(t, "unknown", temp)
	require.Equal(t, "unknown", wind)
}

func TestWeather_UpstreamFailure(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusServiceUnavailable)
	})

	_, err := c.Weather(context.Background(), 1, 2)
	require.ErrorIs(t, err, ErrUpstream)
}

func TestSearch(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "golang", r.URL.Query().Get("q"))
		assert.Equal(t, "json", r.URL.Query().Get("format"))
		w.Write([]byte(ddgReply))
	})

	res, err := c.Search(context.Background(), "golang")
	require.NoError(t, err)
	require.Equal(t, "Go (programming language)", res.Heading)
	require.Equal(t, []string{"Goroutine - lightweight thread", "Rob Pike - co-designer"}, res.Related)
	require.Equal(t, "Go is a statically typed language.", res.Summary("I found some results."))
}

func TestSearch_EmptyQuery(t *testing.T) {
	c := newTestClient(t, func(http.ResponseWriter, *http.Request) {
		t.Error("upstream must not be called")
	})

	_, err := c.Search(context.Background(), "   ")
	require.ErrorIs(t, err, ErrEmptyQuery)
}

func TestNews_AppendsSuffixAndDropsAnswer(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "latest news", r.URL.Query().Get("q"))
		w.Write([]byte(`{"Heading":"h","Abstract":"","Answer":"42","RelatedTopics":[]}`))
	})

	res, err := c.News(context.Background(), "latest")
	require.NoError(t, err)
	require.Empty(t, res.Answer)
	require.Equal(t, "No summary available.", res.Summary("No summary available."))
	require.NotNil(t, res.Related)
}

func TestSummary_PrefersAnswer(t *testing.T) {
	require.Equal(t, "a", SearchResult{Answer: "a", Abstract: "b"}.Summary("c"))
	require.Equal(t, "c", SearchResult{}.Summary("c"))
}
