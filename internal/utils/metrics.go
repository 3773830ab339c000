// internal/utils/metrics.go
package utils

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const metricsNamespace = "script_breakdown"

// Metrics holds the process collectors on a private registry.
// All methods are safe on a nil receiver so callers may skip metrics.
type Metrics struct {
	registry *prometheus.Registry

	generationsTotal   *prometheus.CounterVec
	generationDuration *prometheus.HistogramVec
	tokensUsed         *prometheus.CounterVec
	generationsRunning prometheus.Gauge
	activeSessions     prometheus.Gauge
	apiRequests        *prometheus.CounterVec
	apiDuration        *prometheus.HistogramVec
}

// NewMetrics registers every collector on a fresh registry
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		generationsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "generations_total",
			Help:      "Total number of breakdown generations, partitioned by outcome.",
		}, []string{"provider", "outcome"}),
		generationDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "generation_duration_seconds",
			Help:      "Latency of remote generation calls.",
			Buckets:   []float64{1, 2.5, 5, 10, 20, 30, 60, 90, 120, 180},
		}, []string{"provider", "outcome"}),
		tokensUsed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "ai_tokens_used_total",
			Help:      "Total number of AI tokens reported by the provider.",
		}, []string{"provider", "direction"}),
		generationsRunning: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "generations_in_flight",
			Help:      "Number of generation calls currently waiting on the provider.",
		}),
		activeSessions: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "active_sessions",
			Help:      "Number of browser sessions holding a controller.",
		}),
		apiRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "api_requests_total",
			Help:      "Total number of HTTP requests by route, method and status.",
		}, []string{"route", "method", "status"}),
		apiDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "api_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
	}
}

// Registry exposes the underlying registry, mainly for tests
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// GenerationStarted marks one more call in flight
func (m *Metrics) GenerationStarted() {
	if m == nil {
		return
	}
	m.generationsRunning.Inc()
}

// RecordGeneration records the end of a call; outcome is "success" or an error kind
func (m *Metrics) RecordGeneration(provider, outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	m.generationsRunning.Dec()
	m.generationsTotal.WithLabelValues(provider, outcome).Inc()
	m.generationDuration.WithLabelValues(provider, outcome).Observe(duration.Seconds())
}

// AddTokens records provider-reported token usage
func (m *Metrics) AddTokens(provider string, prompt, output int) {
	if m == nil {
		return
	}
	if prompt > 0 {
		m.tokensUsed.WithLabelValues(provider, "prompt").Add(float64(prompt))
	}
	if output > 0 {
		m.tokensUsed.WithLabelValues(provider, "output").Add(float64(output))
	}
}

// SetActiveSessions publishes the current session count
func (m *Metrics) SetActiveSessions(n int) {
	if m == nil {
		return
	}
	m.activeSessions.Set(float64(n))
}

// RecordAPIRequest records one completed HTTP request
func (m *Metrics) RecordAPIRequest(route, method string, statusCode int, duration time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.apiRequests.WithLabelValues(route, method, strconv.Itoa(statusCode)).Inc()
	m.apiDuration.WithLabelValues(route, method).Observe(duration.Seconds())
}
