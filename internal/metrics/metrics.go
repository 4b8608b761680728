// Package metrics provides Prometheus metrics for the assistant.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Provider attempt outcomes.
const (
	OutcomeAnswered = "answered"
	OutcomeEmpty    = "empty"
	OutcomeError    = "error"
	OutcomeSkipped  = "skipped"
)

// Metrics holds all Prometheus metrics for the assistant. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	ProviderAttemptsTotal   *prometheus.CounterVec
	ConnectivityProbesTotal *prometheus.CounterVec
}

// New creates the metrics on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		HTTPRequestsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "jarvis_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"route", "status"},
		),
		HTTPRequestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "jarvis_http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: []float64{.005, .01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
			},
			[]string{"route"},
		),
		ProviderAttemptsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "jarvis_provider_attempts_total",
				Help: "Provider attempts by outcome",
			},
			[]string{"provider", "outcome"},
		),
		ConnectivityProbesTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "jarvis_connectivity_probes_total",
				Help: "Connectivity probes by result",
			},
			[]string{"result"},
		),
	}
}

// RecordHTTPRequest records a served request
func (m *Metrics) RecordHTTPRequest(route string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(route, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(route).Observe(duration.Seconds())
}

// RecordProviderAttempt records one step of a provider chain walk
func (m *Metrics) RecordProviderAttempt(provider, outcome string) {
	if m == nil {
		return
	}
	m.ProviderAttemptsTotal.WithLabelValues(provider, outcome).Inc()
}

// RecordProbe records a connectivity probe result
func (m *Metrics) RecordProbe(online bool) {
	if m == nil {
		return
	}
	result := "offline"
	if online {
		result = "online"
	}
	m.ConnectivityProbesTotal.WithLabelValues(result).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
