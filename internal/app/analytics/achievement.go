package analytics

import (
	"fmt"
	"time"

	"github.com/recap-crew/recap/internal/domain"
)

// AchievementStore is the storage surface the rule engine needs. The
// sqlite package satisfies it; tests inject fakes.
type AchievementStore interface {
	// UnlockedKeys returns the already-earned achievement keys for a person.
	UnlockedKeys(seasonID, personID int64) (map[string]bool, error)
	// Unlock persists one earned key. Must be idempotent: unlocking an
	// already-unlocked key is a no-op, not an error.
	Unlock(seasonID, personID int64, key string) error
	// PersonEntries returns a person's non-deleted entries ordered by date.
	PersonEntries(seasonID, personID int64) ([]domain.Entry, error)
	// ActiveMetrics returns the metrics currently in play.
	ActiveMetrics() ([]domain.Metric, error)
	// PersonGoals returns a person's goals for the season.
	PersonGoals(seasonID, personID int64) ([]domain.Goal, error)
}

// AchievementEngine evaluates the unlock catalog against live data.
type AchievementEngine struct {
	store AchievementStore
	now   func() time.Time
}

// NewAchievementEngine wires the engine to its storage. nowFn may be nil,
// in which case the wall clock is used; tests pin it.
func NewAchievementEngine(store AchievementStore, nowFn func() time.Time) *AchievementEngine {
	if nowFn == nil {
		nowFn = time.Now
	}
	return &AchievementEngine{store: store, now: nowFn}
}

// AchievementFacts are the per-person inputs the rules consume. All
// derivable from one entry fetch plus goals and the metric roster.
type AchievementFacts struct {
	Entries       []domain.Entry // non-deleted, ordered by date
	Goals         []domain.Goal
	ActiveMetrics int
	Unlocked      map[string]bool
	Today         time.Time
}

// CheckAndUnlock fetches a person's current facts, evaluates every rule,
// persists the newly-qualifying keys, and returns them in catalog order.
// Safe to call after every write: already-held keys are skipped up front
// and the store-level unlock is idempotent besides.
func (e *AchievementEngine) CheckAndUnlock(seasonID, personID int64) ([]string, error) {
	unlocked, err := e.store.UnlockedKeys(seasonID, personID)
	if err != nil {
		return nil, fmt.Errorf("load unlocked keys: %w", err)
	}
	entries, err := e.store.PersonEntries(seasonID, personID)
	if err != nil {
		return nil, fmt.Errorf("load entries: %w", err)
	}
	metrics, err := e.store.ActiveMetrics()
	if err != nil {
		return nil, fmt.Errorf("load metrics: %w", err)
	}
	goals, err := e.store.PersonGoals(seasonID, personID)
	if err != nil {
		return nil, fmt.Errorf("load goals: %w", err)
	}

	newKeys := EvaluateAchievements(AchievementFacts{
		Entries:       entries,
		Goals:         goals,
		ActiveMetrics: len(metrics),
		Unlocked:      unlocked,
		Today:         e.now(),
	})
	for _, key := range newKeys {
		if err := e.store.Unlock(seasonID, personID, key); err != nil {
			return nil, fmt.Errorf("unlock %s: %w", key, err)
		}
	}
	return newKeys, nil
}

// EvaluateAchievements runs the full rule catalog over the facts and
// returns the keys that qualify now but are not yet held, ordered by
// catalog definition order. Pure: no storage, no clock beyond Today.
func EvaluateAchievements(f AchievementFacts) []string {
	qualified := make(map[string]bool)

	total := len(f.Entries)
	if total >= 1 {
		qualified["first_entry"] = true
	}
	for _, m := range []struct {
		count int
		key   string
	}{
		{10, "entries_10"}, {25, "entries_25"}, {50, "entries_50"},
		{100, "entries_100"}, {200, "entries_200"},
	} {
		if total >= m.count {
			qualified[m.key] = true
		}
	}

	days := make([]string, 0, total)
	for _, e := range f.Entries {
		days = append(days, e.EntryDate)
	}
	days = uniqueSorted(days)

	daily := scanRuns(days, IsConsecutiveDay)
	for _, m := range []struct {
		days int
		key  string
	}{
		{3, "streak_3d"}, {7, "streak_7d"}, {14, "streak_14d"}, {30, "streak_30d"},
	} {
		if daily.longest >= m.days {
			qualified[m.key] = true
		}
	}

	weeks := make([]string, len(days))
	for i, d := range days {
		weeks[i] = WeekKey(ParseDate(d))
	}
	weekly := scanRuns(uniqueSorted(weeks), IsConsecutiveWeek)
	for _, m := range []struct {
		weeks int
		key   string
	}{
		{4, "weekly_4"}, {8, "weekly_8"}, {12, "weekly_12"},
	} {
		if weekly.longest >= m.weeks {
			qualified[m.key] = true
		}
	}

	uniqueMonths := make(map[string]bool)
	uniqueMetrics := make(map[int64]bool)
	for _, e := range f.Entries {
		uniqueMonths[MonthKey(ParseDate(e.EntryDate))] = true
		uniqueMetrics[e.MetricID] = true
		if ParseDate(e.EntryDate).Month() == time.January {
			qualified["early_bird"] = true
		}
	}

	if f.ActiveMetrics > 0 && len(uniqueMetrics) >= f.ActiveMetrics {
		qualified["all_rounder"] = true
	}

	// Entries in every month so far this year. Requires being past
	// January so a single month can't trivially qualify.
	currentMonth := int(f.Today.Month())
	if currentMonth > 1 && len(uniqueMonths) >= currentMonth {
		qualified["consistency_king"] = true
	}

	perMetric := make(map[int64]int)
	for _, e := range f.Entries {
		perMetric[e.MetricID]++
	}
	for _, g := range f.Goals {
		n := perMetric[g.MetricID]
		if n == g.Target {
			qualified["perfectionist"] = true
		}
		if g.Target > 0 && float64(n) >= float64(g.Target)*1.5 {
			qualified["goal_crusher"] = true
		}
	}

	// Emit in catalog order so callers see a stable sequence.
	var newKeys []string
	for _, def := range domain.Achievements() {
		if qualified[def.Key] && !f.Unlocked[def.Key] {
			newKeys = append(newKeys, def.Key)
		}
	}
	return newKeys
}
