// Package metrics defines and registers all custom Prometheus metrics for
// the marketplace client. It is the single source of truth for metric
// names, labels, and help strings. Metrics self-register with the default
// registry on first import.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "talodu_client"

// RefreshTotal counts refresh exchanges actually performed against the
// remote API. Coalesced waiters do not increment this.
// Label:
//   - result: "success", "rejected", or "error" (transient failure)
var RefreshTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "refresh_total",
		Help:      "Total number of token refresh exchanges, by result.",
	},
	[]string{"result"},
)

// RefreshWaiters counts callers whose rejected request was resolved by a
// refresh initiated by another in-flight request.
var RefreshWaiters = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "refresh_coalesced_waiters_total",
		Help:      "Total number of callers that reused an in-flight refresh.",
	},
)

// RequestRetriesTotal counts requests replayed after a successful refresh.
// Label:
//   - outcome: "success" (retry succeeded) or "failed" (retry still rejected)
var RequestRetriesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "request_retries_total",
		Help:      "Total number of requests replayed after a refresh, by outcome.",
	},
	[]string{"outcome"},
)

// ForcedLogoutsTotal counts sessions terminated because a refresh was
// rejected or stored state was inconsistent.
// Label:
//   - reason: "refresh_rejected", "no_refresh_token", "corrupt_state"
var ForcedLogoutsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "forced_logouts_total",
		Help:      "Total number of forced logouts, by reason.",
	},
	[]string{"reason"},
)

// RequestDuration measures intercepted request latency end-to-end,
// including any refresh and replay.
// Labels:
//   - method: HTTP method
//   - code: final HTTP status code, or "error"
var RequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "request_duration_seconds",
		Help:      "Duration of intercepted API requests, refresh included.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"method", "code"},
)
