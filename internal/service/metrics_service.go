package service

import (
	"fmt"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/noah-isme/school-dashboard-api/internal/models"
)

// Form submission outcomes reported to Prometheus.
const (
	OutcomeSuccess  = "success"
	OutcomeInvalid  = "invalid"
	OutcomeRejected = "rejected"
	OutcomeFailed   = "failed"
)

// MetricsService encapsulates Prometheus instrumentation for the API.
type MetricsService struct {
	registry         *prometheus.Registry
	handler          http.Handler
	requestDuration  *prometheus.HistogramVec
	requestTotal     *prometheus.CounterVec
	formSubmissions  *prometheus.CounterVec
	formDuration     *prometheus.HistogramVec
	identityDuration *prometheus.HistogramVec
	relatedDegraded  *prometheus.CounterVec
	auditDropped     prometheus.Counter
	cacheLatency     prometheus.Observer
	cacheWrite       prometheus.Observer
	cacheHitRatio    prometheus.Gauge
	cacheHits        prometheus.Counter
	cacheMisses      prometheus.Counter

	cacheHitCount  uint64
	cacheMissCount uint64
}

// NewMetricsService registers core Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	formSubmissions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "form_submissions_total",
		Help: "Form submissions by entity, mode and outcome",
	}, []string{"entity", "mode", "outcome"})

	formDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "form_submission_duration_seconds",
		Help:    "Duration of form submissions from decode to commit",
		Buckets: prometheus.DefBuckets,
	}, []string{"entity", "mode"})

	identityDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "identity_provider_call_duration_seconds",
		Help:    "Latency of identity provider calls",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "outcome"})

	relatedDegraded := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "related_data_degraded_total",
		Help: "Related-data lists served empty because their query failed",
	}, []string{"entity", "list"})

	auditDropped := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "audit_records_dropped_total",
		Help: "Audit records that could not be queued",
	})

	cacheLatency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cache_latency_seconds",
		Help:    "Latency for cache operations",
		Buckets: prometheus.DefBuckets,
	})

	cacheWrite := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cache_write_seconds",
		Help:    "Latency for cache set operations",
		Buckets: prometheus.DefBuckets,
	})

	cacheHitRatio := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "cache_hit_ratio",
		Help: "Ratio of cache hits to total cache lookups",
	})

	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_hits_total",
		Help: "Total cache hits",
	})

	cacheMisses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_misses_total",
		Help: "Total cache misses",
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(
		requestDuration, requestTotal,
		formSubmissions, formDuration, identityDuration, relatedDegraded, auditDropped,
		cacheLatency, cacheWrite, cacheHitRatio, cacheHits, cacheMisses,
		goroutines,
	)

	handler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

	return &MetricsService{
		registry:         registry,
		handler:          handler,
		requestDuration:  requestDuration,
		requestTotal:     requestTotal,
		formSubmissions:  formSubmissions,
		formDuration:     formDuration,
		identityDuration: identityDuration,
		relatedDegraded:  relatedDegraded,
		auditDropped:     auditDropped,
		cacheLatency:     cacheLatency,
		cacheWrite:       cacheWrite,
		cacheHitRatio:    cacheHitRatio,
		cacheHits:        cacheHits,
		cacheMisses:      cacheMisses,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// ObserveFormSubmission counts a form submission and its duration.
func (m *MetricsService) ObserveFormSubmission(kind models.EntityKind, mode models.FormMode, outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	m.formSubmissions.WithLabelValues(string(kind), string(mode), outcome).Inc()
	m.formDuration.WithLabelValues(string(kind), string(mode)).Observe(duration.Seconds())
}

// ObserveIdentityCall implements identity.Observer.
func (m *MetricsService) ObserveIdentityCall(operation, outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	m.identityDuration.WithLabelValues(operation, outcome).Observe(duration.Seconds())
}

// RecordRelatedDegraded counts a related-data list that failed to load.
func (m *MetricsService) RecordRelatedDegraded(kind models.EntityKind, list string) {
	if m == nil {
		return
	}
	m.relatedDegraded.WithLabelValues(string(kind), list).Inc()
}

// RecordAuditDropped counts an audit record that never reached the queue.
func (m *MetricsService) RecordAuditDropped() {
	if m == nil {
		return
	}
	m.auditDropped.Inc()
}

// RecordCacheOperation records cache hit/miss metrics and updates hit ratio.
func (m *MetricsService) RecordCacheOperation(hit bool, duration time.Duration) {
	if m == nil {
		return
	}
	if m.cacheLatency != nil {
		m.cacheLatency.Observe(duration.Seconds())
	}
	if hit {
		m.cacheHits.Inc()
		atomic.AddUint64(&m.cacheHitCount, 1)
	} else {
		m.cacheMisses.Inc()
		atomic.AddUint64(&m.cacheMissCount, 1)
	}
	hits := atomic.LoadUint64(&m.cacheHitCount)
	misses := atomic.LoadUint64(&m.cacheMissCount)
	total := hits + misses
	if total > 0 {
		m.cacheHitRatio.Set(float64(hits) / float64(total))
	}
}

// ObserveCacheWrite tracks the duration for cache write operations.
func (m *MetricsService) ObserveCacheWrite(duration time.Duration) {
	if m == nil || m.cacheWrite == nil {
		return
	}
	m.cacheWrite.Observe(duration.Seconds())
}
