// Package metrics holds Prometheus instruments that are used across
// Formdesk.  All collectors are registered with the global registry, so
// importing this package in main.go is enough to expose them on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	FormsCreatedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "forms_created_total",
			Help: "Cumulative number of forms created.",
		})

	FormsUpdatedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "forms_updated_total",
			Help: "Cumulative number of form edits.",
		})

	FormsDeletedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "forms_deleted_total",
			Help: "Cumulative number of forms deleted.",
		})

	ResponsesStoredTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "form_responses_stored_total",
			Help: "Cumulative number of responses that passed validation and were stored.",
		})

	ResponsesRejectedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "form_responses_rejected_total",
			Help: "Cumulative number of responses rejected by field validation.",
		})

	CachedForms = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "form_cache_entries",
			Help: "Number of forms currently held in the read-through cache.",
		})

	FormLoadTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "form_cache_load_total",
			Help: "Cumulative number of forms loaded into the cache from the store.",
		})

	FormLoadErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "form_cache_load_errors_total",
			Help: "Cumulative number of cache loads that failed (not-found excluded).",
		})

	FormEvictTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "form_cache_evict_total",
			Help: "Cumulative number of forms evicted from the cache.",
		})

	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by route pattern, method, status class, and client device.",
		}, []string{"route", "method", "status", "device"})

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency by route pattern.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method"})
)

func init() {
	prometheus.MustRegister(
		FormsCreatedTotal,
		FormsUpdatedTotal,
		FormsDeletedTotal,
		ResponsesStoredTotal,
		ResponsesRejectedTotal,
		CachedForms,
		FormLoadTotal,
		FormLoadErrorsTotal,
		FormEvictTotal,
		HTTPRequestsTotal,
		HTTPRequestDuration,
	)
}
