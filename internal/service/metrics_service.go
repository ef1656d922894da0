package service

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/noah-isme/announcement-api/internal/models"
)

// MetricsService encapsulates Prometheus instrumentation. All methods are safe on a nil receiver.
type MetricsService struct {
	registry            *prometheus.Registry
	handler             http.Handler
	requestDuration     *prometheus.HistogramVec
	requestTotal        *prometheus.CounterVec
	cacheLatency        prometheus.Observer
	cacheWrite          prometheus.Observer
	cacheLookups        *prometheus.CounterVec
	dbQueryDuration     *prometheus.HistogramVec
	dispatchTotal       *prometheus.CounterVec
	recipientsDelivered *prometheus.CounterVec
	recipientsFailed    *prometheus.CounterVec
}

// NewMetricsService registers the service collectors on a private registry.
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

	cacheLatency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cache_latency_seconds",
		Help:    "Latency for cache lookups",
		Buckets: prometheus.DefBuckets,
	})

	cacheWrite := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cache_write_seconds",
		Help:    "Latency for cache set operations",
		Buckets: prometheus.DefBuckets,
	})

	cacheLookups := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cache_lookups_total",
		Help: "Cache lookups by result",
	}, []string{"result"})

	dbQueryDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "db_query_duration_seconds",
		Help:    "Duration of database queries",
		Buckets: prometheus.DefBuckets,
	}, []string{"query"})

	dispatchTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "announcement_dispatches_total",
		Help: "Announcement dispatches by targeting mode and result",
	}, []string{"mode", "result"})

	recipientsDelivered := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "announcement_recipients_delivered_total",
		Help: "Notifications written to recipients",
	}, []string{"mode"})

	recipientsFailed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "announcement_recipients_failed_total",
		Help: "Recipients that could not be reached",
	}, []string{"mode"})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, cacheLatency, cacheWrite, cacheLookups, dbQueryDuration,
		dispatchTotal, recipientsDelivered, recipientsFailed, goroutines)

	return &MetricsService{
		registry:            registry,
		handler:             promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration:     requestDuration,
		requestTotal:        requestTotal,
		cacheLatency:        cacheLatency,
		cacheWrite:          cacheWrite,
		cacheLookups:        cacheLookups,
		dbQueryDuration:     dbQueryDuration,
		dispatchTotal:       dispatchTotal,
		recipientsDelivered: recipientsDelivered,
		recipientsFailed:    recipientsFailed,
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

// Registry returns the underlying registry, mainly for tests.
func (m *MetricsService) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
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

// RecordCacheOperation records a cache lookup.
func (m *MetricsService) RecordCacheOperation(hit bool, duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheLatency.Observe(duration.Seconds())
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.WithLabelValues(result).Inc()
}

// ObserveCacheWrite tracks the duration for cache write operations.
func (m *MetricsService) ObserveCacheWrite(duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheWrite.Observe(duration.Seconds())
}

// ObserveDBQuery records database query timing.
func (m *MetricsService) ObserveDBQuery(label string, duration time.Duration) {
	if m == nil {
		return
	}
	m.dbQueryDuration.WithLabelValues(label).Observe(duration.Seconds())
}

// RecordDispatch records a dispatch attempt with whatever recipients it reached before err, if any.
func (m *MetricsService) RecordDispatch(mode models.TargetingMode, outcome models.DeliveryOutcome, err error) {
	if m == nil {
		return
	}
	label := string(mode)
	if label == "" {
		label = "unknown"
	}
	result := "success"
	if err != nil {
		result = "error"
	}
	m.dispatchTotal.WithLabelValues(label, result).Inc()
	m.recipientsDelivered.WithLabelValues(label).Add(float64(outcome.Delivered))
	m.recipientsFailed.WithLabelValues(label).Add(float64(outcome.Failed))
}
