// Package metrics defines and registers all custom Prometheus metrics for the
// MAPASCAL records API. It is the single source of truth for metric names,
// labels, and help strings.
//
// Metrics register themselves with the default registry at init time via
// promauto; the router only needs to expose the /metrics endpoint.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "mapascal"

// ── Authentication metrics ────────────────────────────────────────────────────

// LoginAttemptsTotal counts primary-credential login attempts.
// Labels:
//   - role: the selected role ("admin" or "anggota")
//   - result: "success", "second_factor", "failure", "inactive", "invalid_role"
var LoginAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "login_attempts_total",
		Help:      "Total number of primary login attempts, by role and result.",
	},
	[]string{"role", "result"},
)

// BruteForceSignalsTotal counts attempts at or beyond the brute-force
// detection threshold for a single (role, identifier) key.
// Label:
//   - role: the selected role
var BruteForceSignalsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "brute_force_signals_total",
		Help:      "Total number of login failures at or beyond the brute-force threshold.",
	},
	[]string{"role"},
)

// SecondFactorTotal counts access-code verification outcomes.
// Label:
//   - result: "success", "invalid", "expired", "wrong_code", "no_pending"
var SecondFactorTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "second_factor_total",
		Help:      "Total number of access-code verification attempts, by result.",
	},
	[]string{"result"},
)

// AccessCodesIssuedTotal counts one-time access codes issued by admins.
var AccessCodesIssuedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "access_codes_issued_total",
		Help:      "Total number of one-time access codes issued.",
	},
)

// RegistrationsTotal counts member self-registrations awaiting approval.
var RegistrationsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "registrations_total",
		Help:      "Total number of member registrations submitted.",
	},
)

// ── Letter metrics ────────────────────────────────────────────────────────────

// LettersCreatedTotal counts newly registered correspondence records.
// Label:
//   - direction: "incoming" or "outgoing"
var LettersCreatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "letters_created_total",
		Help:      "Total number of letters registered, by direction.",
	},
	[]string{"direction"},
)
