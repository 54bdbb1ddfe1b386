package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// HTTPRequestsTotal counts inbound HTTP requests by method, route and status.
var HTTPRequestsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "isaura_http_requests_total",
		Help: "Total number of HTTP requests processed.",
	},
	[]string{"method", "path", "status"},
)

// HTTPRequestDuration observes inbound request latency by route.
var HTTPRequestDuration = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "isaura_http_request_duration_seconds",
		Help:    "HTTP request latency.",
		Buckets: prometheus.DefBuckets,
	},
	[]string{"method", "path"},
)

// ProviderRequestsTotal counts outbound Aura provider calls by endpoint and outcome.
var ProviderRequestsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "isaura_provider_requests_total",
		Help: "Total number of Aura provider requests.",
	},
	[]string{"endpoint", "outcome"},
)

// ProviderRequestDuration observes outbound provider call latency by endpoint.
var ProviderRequestDuration = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "isaura_provider_request_duration_seconds",
		Help:    "Aura provider request latency.",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
	},
	[]string{"endpoint"},
)

// CacheEvents counts snapshot cache hits and misses by cache name.
var CacheEvents = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "isaura_cache_events_total",
		Help: "Cache hits and misses for the snapshot caches.",
	},
	[]string{"cache", "event"},
)

// MustRegisterMetrics registers all collectors with the default registry.
// Call once at process start.
func MustRegisterMetrics() {
	prometheus.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDuration,
		ProviderRequestsTotal,
		ProviderRequestDuration,
		CacheEvents,
	)
}
