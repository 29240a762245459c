// Package metrics defines and registers all custom Prometheus metrics for the
// fleet console. It is the single source of truth for metric names, labels,
// and help strings.
//
// Metrics register with the default Prometheus registry at import time via
// promauto; the router exposes them on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "fleet_console"

// ── Session metrics ───────────────────────────────────────────────────────────

// LoginsTotal counts login attempts submitted through the console.
// Label:
//   - result: "success", "rejected" (upstream refused the credentials), or
//     "error" (validation or transport failure before/while reaching upstream)
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// SessionResolutionsTotal counts token→identity resolutions.
// Label:
//   - result: "success", "failure" (token rejected or upstream unreachable,
//     session ends), or "superseded" (a newer token arrived first; discarded)
var SessionResolutionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "session_resolutions_total",
		Help:      "Total number of session identity resolutions, by result.",
	},
	[]string{"result"},
)

// ── Upstream fleet API metrics ────────────────────────────────────────────────

// UpstreamRequestsTotal counts calls forwarded to the fleet API.
// Labels:
//   - operation: logical operation name (e.g. "login", "list_users")
//   - status: HTTP status code returned by the fleet API, or "error" when the
//     request never produced a response
var UpstreamRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "upstream_requests_total",
		Help:      "Total number of requests forwarded to the fleet API, by operation and status.",
	},
	[]string{"operation", "status"},
)

// UpstreamRequestDuration measures fleet API round-trip time per operation.
var UpstreamRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "upstream_request_duration_seconds",
		Help:      "Duration of fleet API round trips, by operation.",
		Buckets:   prometheus.DefBuckets, // .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10
	},
	[]string{"operation"},
)
