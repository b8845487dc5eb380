// Package metrics defines all custom Prometheus metrics for the accounts API.
// It is the single source of truth for metric names, labels, and help strings.
//
// Metrics are registered with the default registry at import time via
// promauto; the /metrics route is mounted by the router.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "accounts"

// RegistrationsTotal counts sign-up attempts.
// Label:
//   - result: "created", "duplicate", "invalid", or "error"
var RegistrationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "registrations_total",
		Help:      "Total number of account registration attempts, by result.",
	},
	[]string{"result"},
)

// LoginsTotal counts authentication attempts.
// Labels:
//   - method: "password" or "oauth"
//   - result: "success", "invalid_credentials", "unverified", or "error"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by method and result.",
	},
	[]string{"method", "result"},
)

// PasswordResetRequestsTotal counts reset-token issuance attempts.
// Label:
//   - result: "issued", "not_found", "throttled", or "error"
var PasswordResetRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "password_reset_requests_total",
		Help:      "Total number of password reset requests, by result.",
	},
	[]string{"result"},
)

// TokensRedeemedTotal counts single-use token redemptions.
// Labels:
//   - kind: "verification" or "password_reset"
//   - result: "success", "invalid", or "expired"
var TokensRedeemedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "tokens_redeemed_total",
		Help:      "Total number of token redemption attempts, by kind and result.",
	},
	[]string{"kind", "result"},
)

// NotificationsSentTotal counts outbound notification deliveries.
// Labels:
//   - kind: "verification" or "password_reset"
//   - result: "sent" or "error"
var NotificationsSentTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_sent_total",
		Help:      "Total number of notification emails attempted, by kind and result.",
	},
	[]string{"kind", "result"},
)

// BackendOpDuration observes identity-backend operation latency. HTTP
// latencies come from echoprometheus; this covers the storage round trips
// behind them.
// Labels:
//   - backend: "mongo" or "redis"
//   - op: operation name, e.g. "create_account"
var BackendOpDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "backend_op_duration_seconds",
		Help:      "Duration of identity-backend operations in seconds, by backend and operation.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"backend", "op"},
)

// ObserveBackendOp records the elapsed time of one backend operation.
// Callers defer it with the operation's start time.
func ObserveBackendOp(backend, op string, start time.Time) {
	BackendOpDuration.WithLabelValues(backend, op).Observe(time.Since(start).Seconds())
}

// SessionsPersistedTotal counts session descriptor writes.
// Label:
//   - scope: "durable" or "ephemeral"
var SessionsPersistedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sessions_persisted_total",
		Help:      "Total number of session descriptors persisted, by storage scope.",
	},
	[]string{"scope"},
)
