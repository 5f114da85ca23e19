package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics.
type Metrics struct {
	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	// Rewrite metrics
	RewritesTotal     *prometheus.CounterVec
	RunsConcatenated  prometheus.Counter
	ResourcesBatched  prometheus.Counter
	ConcatServeErrors prometheus.Counter

	// Sandbox metrics
	SandboxCacheHits    prometheus.Counter
	SandboxCacheMisses  prometheus.Counter
	TransformerFailures prometheus.Counter

	// System metrics
	Uptime    prometheus.Gauge
	startTime time.Time
}

// NewMetrics creates a metrics collector registered on the default registry.
func NewMetrics() *Metrics {
	return newMetrics(prometheus.DefaultRegisterer)
}

// NewMetricsWithRegistry creates a metrics collector on a private
// registry, for tests.
func NewMetricsWithRegistry(reg prometheus.Registerer) *Metrics {
	return newMetrics(reg)
}

func newMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	m := &Metrics{
		startTime: time.Now(),

		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rewriter_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "rewriter_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		RewritesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rewriter_rewrites_total",
				Help: "Document rewrite operations by kind and outcome",
			},
			[]string{"kind", "outcome"},
		),
		RunsConcatenated: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "rewriter_runs_concatenated_total",
				Help: "Concatenated resource runs served",
			},
		),
		ResourcesBatched: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "rewriter_resources_batched_total",
				Help: "Individual resources served through concatenated loads",
			},
		),
		ConcatServeErrors: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "rewriter_concat_serve_errors_total",
				Help: "Concat endpoint requests that failed to resolve or fetch",
			},
		),

		SandboxCacheHits: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "rewriter_sandbox_cache_hits_total",
				Help: "Sandbox transformations served from cache",
			},
		),
		SandboxCacheMisses: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "rewriter_sandbox_cache_misses_total",
				Help: "Sandbox transformations that invoked the transformer",
			},
		),
		TransformerFailures: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "rewriter_transformer_failures_total",
				Help: "Sandbox transformations that failed or crashed",
			},
		),

		Uptime: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "rewriter_uptime_seconds",
				Help: "Process uptime in seconds",
			},
		),
	}
	return m
}

// RecordHTTPRequest records one served HTTP request.
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordRewrite records one document rewrite operation.
func (m *Metrics) RecordRewrite(kind, outcome string) {
	m.RewritesTotal.WithLabelValues(kind, outcome).Inc()
}

// SandboxCacheHit records one sandbox transformation served from cache.
func (m *Metrics) SandboxCacheHit() { m.SandboxCacheHits.Inc() }

// SandboxCacheMiss records one sandbox transformation that invoked the
// transformer.
func (m *Metrics) SandboxCacheMiss() { m.SandboxCacheMisses.Inc() }

// TransformerFailure records one failed or crashed transformation.
func (m *Metrics) TransformerFailure() { m.TransformerFailures.Inc() }

// UpdateUptime refreshes the uptime gauge.
func (m *Metrics) UpdateUptime() {
	m.Uptime.Set(time.Since(m.startTime).Seconds())
}
