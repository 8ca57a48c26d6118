// Package metrics defines the Prometheus collectors shared across the
// access layer. Collectors are registered on the default registry and
// exported by the REST facade at /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RemoteRequestsTotal counts upstream API calls by endpoint and outcome.
	// The code label carries the HTTP status, or "transport" when no
	// response was received.
	RemoteRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wordscope_remote_requests_total",
		Help: "Upstream API requests by endpoint and status code.",
	}, []string{"endpoint", "code"})

	// RemoteRequestDuration observes upstream call latency per endpoint.
	RemoteRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "wordscope_remote_request_duration_seconds",
		Help:    "Upstream API request duration in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"endpoint"})

	// RateLimitWait observes how long callers were held at the local
	// rate limiter before their request was admitted.
	RateLimitWait = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "wordscope_ratelimit_wait_seconds",
		Help:    "Time spent waiting for rate limiter admission.",
		Buckets: []float64{.001, .005, .01, .05, .1, .25, .5, 1, 2.5, 5},
	})

	// TreeFetchesTotal counts region tree fetches. With the session
	// cache in place this should stay at 1 per process unless the
	// initial fetch fails.
	TreeFetchesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wordscope_region_tree_fetches_total",
		Help: "Number of region tree fetches issued upstream.",
	})
)
