package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusMetrics holds all Prometheus metrics
type PrometheusMetrics struct {
	registry *prometheus.Registry

	// Run metrics
	RunsTotal        *prometheus.CounterVec
	RunDuration      prometheus.Histogram
	GenerationsTotal prometheus.Counter
	ImprovementTotal prometheus.Counter
	BestFitness      prometheus.Gauge

	// Cache metrics
	CacheHitsTotal   prometheus.Counter
	CacheMissesTotal prometheus.Counter

	// Store metrics
	StoreFailuresTotal prometheus.Counter

	// HTTP metrics
	RequestsTotal    *prometheus.CounterVec
	RateLimitedTotal prometheus.Counter
}

// NewPrometheusMetrics creates metrics registered on a private registry
func NewPrometheusMetrics() *PrometheusMetrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &PrometheusMetrics{
		registry: reg,

		// Run metrics
		RunsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dosage_runs_total",
				Help: "Total number of optimization runs",
			},
			[]string{"status"},
		),

		RunDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "dosage_run_duration_seconds",
				Help:    "Optimization run duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
		),

		GenerationsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "dosage_generations_total",
				Help: "Total number of evaluated generations",
			},
		),

		ImprovementTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "dosage_best_improvements_total",
				Help: "Total number of generations that improved the running best",
			},
		),

		BestFitness: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "dosage_best_fitness",
				Help: "Best fitness of the most recent completed run",
			},
		),

		// Cache metrics
		CacheHitsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "dosage_cache_hits_total",
				Help: "Total number of result cache hits",
			},
		),

		CacheMissesTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "dosage_cache_misses_total",
				Help: "Total number of result cache misses",
			},
		),

		StoreFailuresTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "dosage_store_failures_total",
				Help: "Total number of run records that could not be stored",
			},
		),

		// HTTP metrics
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dosage_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"path", "status"},
		),

		RateLimitedTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "dosage_http_rate_limited_total",
				Help: "Total number of rejected rate limited requests",
			},
		),
	}
}

// RecordRun records a finished run
func (m *PrometheusMetrics) RecordRun(status string, duration time.Duration, bestFitness float64) {
	m.RunsTotal.WithLabelValues(status).Inc()
	if status == "success" {
		m.RunDuration.Observe(duration.Seconds())
		m.BestFitness.Set(bestFitness)
	}
}

// RecordGeneration records one evaluated generation
func (m *PrometheusMetrics) RecordGeneration(improved bool) {
	m.GenerationsTotal.Inc()
	if improved {
		m.ImprovementTotal.Inc()
	}
}

// RecordCacheHit records a cache hit
func (m *PrometheusMetrics) RecordCacheHit() {
	m.CacheHitsTotal.Inc()
}

// RecordCacheMiss records a cache miss
func (m *PrometheusMetrics) RecordCacheMiss() {
	m.CacheMissesTotal.Inc()
}

// RecordStoreFailure records a run that could not be persisted
func (m *PrometheusMetrics) RecordStoreFailure() {
	m.StoreFailuresTotal.Inc()
}

// RecordRequest records an HTTP request
func (m *PrometheusMetrics) RecordRequest(path, status string) {
	m.RequestsTotal.WithLabelValues(path, status).Inc()
}

// RecordRateLimited records a rejected request
func (m *PrometheusMetrics) RecordRateLimited() {
	m.RateLimitedTotal.Inc()
}

// Registry returns the registry the metrics are registered on
func (m *PrometheusMetrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the metrics in the Prometheus exposition format
func (m *PrometheusMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
