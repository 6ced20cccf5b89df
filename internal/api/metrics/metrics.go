// Package metrics defines and registers all custom Prometheus metrics for the
// visit-tracker access service. It is the single source of truth for metric
// names, labels, and help strings.
//
// Metrics are registered with the default Prometheus registry at package
// init through promauto; /metrics exposes them.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "access"

// ── Resolution metrics ────────────────────────────────────────────────────────

// RoleResolutionsTotal counts finished role resolutions.
// Label:
//   - outcome: "resolved", "none" (no role or nobody signed in), "lookup_error", "stale"
var RoleResolutionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "role_resolutions_total",
		Help:      "Total number of role resolutions, by outcome.",
	},
	[]string{"outcome"},
)

// RoleResolutionDuration measures identity + directory lookup time.
var RoleResolutionDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "role_resolution_duration_seconds",
		Help:      "Duration of a role resolution from request to result.",
		Buckets:   prometheus.DefBuckets,
	},
)

// StaleResolutionsDiscarded counts results dropped because a newer resolution
// had been requested before they arrived.
var StaleResolutionsDiscarded = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "stale_resolutions_discarded_total",
		Help:      "Total number of resolution results discarded as stale.",
	},
)

// LiveResolvers tracks session resolvers held in memory.
var LiveResolvers = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "live_resolvers",
		Help:      "Number of session role resolvers currently cached.",
	},
)

// ── Gate metrics ──────────────────────────────────────────────────────────────

// GateDecisionsTotal counts gate evaluations.
// Labels:
//   - gate: "role", "route", "capability"
//   - decision: "allow", "deny", "loading"
var GateDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "gate_decisions_total",
		Help:      "Total number of gate decisions, by gate kind and decision.",
	},
	[]string{"gate", "decision"},
)

// AdminModeChangesTotal counts accepted acting-mode writes.
// Label:
//   - enabled: "true" or "false"
var AdminModeChangesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "admin_mode_changes_total",
		Help:      "Total number of acting-mode flag changes accepted.",
	},
	[]string{"enabled"},
)

// ── Event metrics ─────────────────────────────────────────────────────────────

// AccessEventsTotal counts access events handled by the dispatcher.
// Labels:
//   - kind: event kind (e.g. "role.assigned")
//   - result: "ok" or "error"
var AccessEventsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "events_handled_total",
		Help:      "Total number of access events handled, by kind and result.",
	},
	[]string{"kind", "result"},
)

// EventsQueueDepth tracks the current number of events waiting in each worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var EventsQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "events_queue_depth",
		Help:      "Current number of events pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// RoleAssignmentsTotal counts directory writes.
// Label:
//   - result: "ok" or "failed"
var RoleAssignmentsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "role_assignments_total",
		Help:      "Total number of role assignments attempted, by result.",
	},
	[]string{"result"},
)
