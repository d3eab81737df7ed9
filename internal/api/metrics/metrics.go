// Package metrics defines and registers all custom Prometheus metrics for
// the PromptForge platform API. It is the single source of truth for metric
// names, labels, and help strings.
//
// Metrics register with the default Prometheus registry at import time via
// promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "promptforge"

// ── Bearer authentication metrics ─────────────────────────────────────────────

// AuthAttemptsTotal counts bearer-token authentication outcomes.
// Labels:
//   - result: "success", "rejected", or "error"
var AuthAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_attempts_total",
		Help:      "Total number of bearer-token authentication attempts, by result.",
	},
	[]string{"result"},
)

// ── API-key metrics ───────────────────────────────────────────────────────────

// APIKeyRequestsTotal counts API-key authentication outcomes.
// Labels:
//   - code: "ok", "MISSING_API_KEY", "INVALID_API_KEY", "ORIGIN_NOT_ALLOWED",
//     "RATE_LIMIT_EXCEEDED", or "AUTH_ERROR"
var APIKeyRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "api_key_requests_total",
		Help:      "Total number of API-key authentication attempts, by outcome code.",
	},
	[]string{"code"},
)

// RateLimitRejectionsTotal counts rate-limit rejections.
// Label:
//   - window: "minute" or "day"
var RateLimitRejectionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rate_limit_rejections_total",
		Help:      "Total number of requests rejected by a rate-limit window.",
	},
	[]string{"window"},
)

// UsageQueueDepth tracks the number of pending usage updates per worker.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var UsageQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "usage_queue_depth",
		Help:      "Current number of usage updates pending in each recorder worker channel.",
	},
	[]string{"worker_id"},
)
