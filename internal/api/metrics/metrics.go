// Package metrics defines and registers all custom Prometheus metrics for the
// verification API. It is the single source of truth for metric names,
// labels, and help strings.
//
// Metrics are registered with the default Prometheus registry at package
// initialisation via promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "verification"

// ── Adjudication metrics ──────────────────────────────────────────────────────

// DecisionsAppliedTotal counts adjudication decisions successfully applied.
// Labels:
//   - status: the credential status applied (e.g. "verified", "rejected", "pending")
//   - credential_type: "certification", "education", or "work_experience"
var DecisionsAppliedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "decisions_applied_total",
		Help:      "Total number of adjudication decisions successfully applied.",
	},
	[]string{"status", "credential_type"},
)

// DecisionErrorsTotal counts adjudication attempts that failed.
// Label:
//   - reason: short description of the failure (e.g. "not_found", "forbidden", "validation")
var DecisionErrorsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "decision_errors_total",
		Help:      "Total number of adjudication attempts that failed.",
	},
	[]string{"reason"},
)

// ── Trust score metrics ───────────────────────────────────────────────────────

// ScoreCacheTotal counts breakdown cache decisions.
// Label:
//   - result: "hit" (served from cache) or "miss" (computed fresh)
var ScoreCacheTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "score_cache_total",
		Help:      "Total number of trust score cache lookups, labelled by result (hit/miss).",
	},
	[]string{"result"},
)

// ScoreRecomputeDuration measures how long one trust score recomputation takes.
// Label:
//   - trigger: "adjudication", "ban_toggle", "manual", or "bulk"
var ScoreRecomputeDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "score_recompute_duration_seconds",
		Help:      "Duration of a single trust score recomputation.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"trigger"},
)

// RecomputeQueueDepth tracks the number of recompute jobs waiting in each
// worker channel of the bulk dispatcher.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var RecomputeQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "recompute_queue_depth",
		Help:      "Current number of recompute jobs pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// ── Submission metrics ────────────────────────────────────────────────────────

// CredentialsSubmittedTotal counts newly submitted credentials.
// Label:
//   - credential_type: "certification", "education", or "work_experience"
var CredentialsSubmittedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "credentials_submitted_total",
		Help:      "Total number of credentials submitted, by type.",
	},
	[]string{"credential_type"},
)

// RequestsQueuedTotal counts verification requests accepted into the queue.
var RequestsQueuedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "requests_queued_total",
		Help:      "Total number of verification requests queued for review.",
	},
)
