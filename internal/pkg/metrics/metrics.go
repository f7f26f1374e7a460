// Package metrics defines and registers the custom Prometheus metrics of the
// check-in API. It is the single source of truth for metric names, labels,
// and help strings.
//
// Metrics are registered with the default Prometheus registry at package
// initialisation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "checkin"

// ── Auth metrics ──────────────────────────────────────────────────────────────

// AuthAttemptsTotal counts POST /auth outcomes.
// Label:
//   - result: "accepted", "rejected" (bad credentials) or "error"
var AuthAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_attempts_total",
		Help:      "Total number of authentication attempts, by result.",
	},
	[]string{"result"},
)

// TokensIssuedTotal counts tokens handed out on successful authentication.
// Label:
//   - outcome: "created" (first token), "refreshed" (expired one replaced) or "reused"
var TokensIssuedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "tokens_issued_total",
		Help:      "Total number of tokens returned to clients, by outcome.",
	},
	[]string{"outcome"},
)

// ── Account metrics ───────────────────────────────────────────────────────────

var UsersCreatedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "users_created_total",
		Help:      "Total number of accounts created through signup.",
	},
)

// ── Check-in metrics ──────────────────────────────────────────────────────────

// CheckInsTotal counts check-in mutations.
// Label:
//   - op: "created" or "deleted"
var CheckInsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "check_ins_total",
		Help:      "Total number of check-ins created or deleted.",
	},
	[]string{"op"},
)
