package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func gatheredNames(t *testing.T) map[string]bool {
	t.Helper()
	families, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		t.Fatalf("Gather() error: %v", err)
	}
	names := make(map[string]bool)
	for _, f := range families {
		names[f.GetName()] = true
	}
	return names
}

func TestHTTPMetrics_Registered(t *testing.T) {
	HTTPRequests.WithLabelValues("GET", "/api/stats", "200").Inc()
	HTTPLatency.WithLabelValues("/api/stats").Observe(0.02)

	names := gatheredNames(t)
	for _, want := range []string{"recap_http_requests_total", "recap_http_request_duration_seconds"} {
		if !names[want] {
			t.Errorf("%s not found in gathered metrics", want)
		}
	}
}

func TestDomainCounters(t *testing.T) {
	EntriesCreated.WithLabelValues("Sporting").Inc()
	EntriesDeleted.Inc()
	AchievementsUnlocked.WithLabelValues("first_entry").Inc()
	RecapsGenerated.Inc()
	AuthFailures.Inc()
	SessionsActive.Set(2)

	names := gatheredNames(t)
	for _, want := range []string{
		"recap_entries_created_total",
		"recap_entries_deleted_total",
		"recap_achievements_unlocked_total",
		"recap_recaps_generated_total",
		"recap_auth_failures_total",
		"recap_sessions_active",
	} {
		if !names[want] {
			t.Errorf("%s not found in gathered metrics", want)
		}
	}
}
