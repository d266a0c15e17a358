// Package metrics defines and registers all custom Prometheus metrics for the
// content API. It is the single source of truth for metric names, labels, and
// help strings.
//
// Metrics are registered with the default Prometheus registry on package
// initialisation and exposed on /metrics by the router.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "content"

// ── HTTP metrics ──────────────────────────────────────────────────────────────

// HTTPRequestDuration measures handler latency.
// Labels:
//   - method: HTTP verb
//   - route:  the matched route template (e.g. "/articles/:id")
//   - code:   response status code
var HTTPRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "Duration of HTTP requests by route and status code.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"method", "route", "code"},
)

// ── Auth metrics ──────────────────────────────────────────────────────────────

// AuthAttemptsTotal counts register and login attempts.
// Labels:
//   - op:     "register" or "login"
//   - result: "success", "conflict", "invalid_credentials", "invalid_input" or "error"
var AuthAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_attempts_total",
		Help:      "Total number of authentication attempts by operation and result.",
	},
	[]string{"op", "result"},
)

// HashQueueDepth tracks password hashing jobs waiting for a worker.
var HashQueueDepth = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "hash_queue_depth",
		Help:      "Current number of password hashing jobs waiting for a worker.",
	},
)

// HashDuration measures time spent inside a hashing job, excluding queueing.
var HashDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "hash_job_duration_seconds",
		Help:      "Duration of password hashing jobs on the worker pool.",
		Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1},
	},
)

// ── Article metrics ───────────────────────────────────────────────────────────

// ArticleWritesTotal counts successful article mutations.
// Label:
//   - op: "create", "update" or "delete"
var ArticleWritesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "article_writes_total",
		Help:      "Total number of article writes, by operation.",
	},
	[]string{"op"},
)

// ── Cache metrics ─────────────────────────────────────────────────────────────

// CacheRequestsTotal counts read-through lookups.
// Label:
//   - result: "hit", "miss" or "error" (backend failure, bypassed)
var CacheRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cache_requests_total",
		Help:      "Total number of cache lookups, labelled by result.",
	},
	[]string{"result"},
)

// CacheInvalidationsTotal counts full cache clears.
// Label:
//   - result: "ok" or "error"
var CacheInvalidationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cache_invalidations_total",
		Help:      "Total number of cache invalidations, labelled by result.",
	},
	[]string{"result"},
)
