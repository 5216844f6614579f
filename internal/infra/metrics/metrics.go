// Package metrics provides Prometheus metrics for Resolution Recap —
// counters and histograms for HTTP traffic, entry writes, and the
// gamification engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ─── HTTP ───────────────────────────────────────────────────────────────────

// HTTPRequests counts API requests by method, route, and status class.
var HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "recap",
	Name:      "http_requests_total",
	Help:      "Total HTTP requests handled.",
}, []string{"method", "route", "status"})

// HTTPLatency tracks request duration in seconds per route.
var HTTPLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: "recap",
	Name:      "http_request_duration_seconds",
	Help:      "HTTP request duration in seconds.",
	Buckets:   prometheus.DefBuckets,
}, []string{"route"})

// ─── Entries ────────────────────────────────────────────────────────────────

// EntriesCreated counts logged entries by metric name.
var EntriesCreated = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "recap",
	Name:      "entries_created_total",
	Help:      "Total entries logged.",
}, []string{"metric"})

// EntriesDeleted counts soft deletions.
var EntriesDeleted = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "recap",
	Name:      "entries_deleted_total",
	Help:      "Total entries soft-deleted.",
})

// ─── Gamification ───────────────────────────────────────────────────────────

// AchievementsUnlocked counts unlocks by achievement key.
var AchievementsUnlocked = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "recap",
	Name:      "achievements_unlocked_total",
	Help:      "Total achievements unlocked.",
}, []string{"key"})

// RecapsGenerated counts recap page computations.
var RecapsGenerated = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "recap",
	Name:      "recaps_generated_total",
	Help:      "Total recap generations.",
})

// ─── Auth ───────────────────────────────────────────────────────────────────

// AuthFailures counts rejected PIN attempts.
var AuthFailures = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "recap",
	Name:      "auth_failures_total",
	Help:      "Total rejected PIN attempts.",
})

// SessionsActive tracks currently valid sessions.
var SessionsActive = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "recap",
	Name:      "sessions_active",
	Help:      "Number of active sessions.",
})
