// Package metrics holds the prometheus collectors shared by the repository,
// presentation and transport layers. A nil *Metrics is valid and records
// nothing.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Cache lookup results.
const (
	CacheHit   = "hit"
	CacheMiss  = "miss"
	CacheError = "error"
)

// Metrics holds all Prometheus metric collectors.
type Metrics struct {
	// Repository metrics
	CacheLookups       *prometheus.CounterVec // cache lookups by database and result (hit/miss/error)
	CacheInvalidations *prometheus.CounterVec // cache keys dropped after writes, by database

	// Presentation metrics
	Operations        *prometheus.CounterVec   // presenter calls by resource, operation and status
	OperationDuration *prometheus.HistogramVec // presenter latency in seconds

	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
}

// New registers the collectors on reg, or on the default registerer when
// reg is nil.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		CacheLookups: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cleanarch_cache_lookups_total",
				Help: "Total number of repository cache lookups by result",
			},
			[]string{"database", "result"},
		),
		CacheInvalidations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cleanarch_cache_invalidations_total",
				Help: "Total number of cache entries dropped after a write",
			},
			[]string{"database"},
		),
		Operations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cleanarch_operations_total",
				Help: "Total number of presenter operations by resulting status",
			},
			[]string{"resource", "operation", "status"},
		),
		OperationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "cleanarch_operation_duration_seconds",
				Help:    "Presenter operation latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"resource", "operation"},
		),
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cleanarch_http_requests_total",
				Help: "Total number of HTTP requests by method, route and status code",
			},
			[]string{"method", "route", "status"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "cleanarch_http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
	}
}

// RecordCacheLookup counts a cache lookup with one of CacheHit, CacheMiss or CacheError.
func (m *Metrics) RecordCacheLookup(database, result string) {
	if m == nil {
		return
	}
	m.CacheLookups.WithLabelValues(database, result).Inc()
}

func (m *Metrics) RecordCacheInvalidation(database string) {
	if m == nil {
		return
	}
	m.CacheInvalidations.WithLabelValues(database).Inc()
}

// RecordOperation counts a presenter call and observes its duration.
func (m *Metrics) RecordOperation(resource, operation string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.Operations.WithLabelValues(resource, operation, strconv.Itoa(status)).Inc()
	m.OperationDuration.WithLabelValues(resource, operation).Observe(duration.Seconds())
}

func (m *Metrics) RecordHTTPRequest(method, route string, statusCode int, duration time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(statusCode)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}
