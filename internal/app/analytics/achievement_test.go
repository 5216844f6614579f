package analytics

import (
	"fmt"
	"testing"
	"time"

	"github.com/recap-crew/recap/internal/domain"
)

// fakeAchievementStore backs the engine with in-memory state.
type fakeAchievementStore struct {
	entries  []domain.Entry
	goals    []domain.Goal
	metrics  []domain.Metric
	unlocked map[string]bool
	unlocks  int // total Unlock calls, including no-ops
}

func newFakeStore() *fakeAchievementStore {
	return &fakeAchievementStore{unlocked: make(map[string]bool)}
}

func (s *fakeAchievementStore) UnlockedKeys(int64, int64) (map[string]bool, error) {
	out := make(map[string]bool, len(s.unlocked))
	for k := range s.unlocked {
		out[k] = true
	}
	return out, nil
}

func (s *fakeAchievementStore) Unlock(_, _ int64, key string) error {
	s.unlocks++
	s.unlocked[key] = true
	return nil
}

func (s *fakeAchievementStore) PersonEntries(int64, int64) ([]domain.Entry, error) {
	return s.entries, nil
}

func (s *fakeAchievementStore) ActiveMetrics() ([]domain.Metric, error) {
	return s.metrics, nil
}

func (s *fakeAchievementStore) PersonGoals(int64, int64) ([]domain.Goal, error) {
	return s.goals, nil
}

func entriesOnDates(metricID int64, dates ...string) []domain.Entry {
	out := make([]domain.Entry, len(dates))
	for i, d := range dates {
		out[i] = domain.Entry{ID: int64(i + 1), MetricID: metricID, EntryDate: d}
	}
	return out
}

func fixedNow(date string) func() time.Time {
	return func() time.Time { return ParseDate(date) }
}

func TestCheckAndUnlockFirstEntry(t *testing.T) {
	store := newFakeStore()
	store.metrics = []domain.Metric{{ID: 1, Name: "Sporting"}, {ID: 2, Name: "Reading"}}
	store.entries = entriesOnDates(1, "2025-03-05")

	engine := NewAchievementEngine(store, fixedNow("2025-03-05"))
	got, err := engine.CheckAndUnlock(1, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0] != "first_entry" {
		t.Fatalf("got %v, want [first_entry]", got)
	}
}

func TestCheckAndUnlockIdempotent(t *testing.T) {
	store := newFakeStore()
	store.metrics = []domain.Metric{{ID: 1, Name: "Sporting"}}
	store.entries = entriesOnDates(1,
		"2025-02-01", "2025-02-02", "2025-02-03", "2025-02-04",
		"2025-02-05", "2025-02-06", "2025-02-07", "2025-02-08",
		"2025-02-09", "2025-02-10")

	engine := NewAchievementEngine(store, fixedNow("2025-02-10"))
	first, err := engine.CheckAndUnlock(1, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(first) == 0 {
		t.Fatal("expected unlocks on first pass")
	}

	second, err := engine.CheckAndUnlock(1, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(second) != 0 {
		t.Fatalf("second pass should unlock nothing, got %v", second)
	}
}

func TestEvaluateEmitsCatalogOrder(t *testing.T) {
	// 10 consecutive days on the only metric qualifies entry milestones,
	// daily streaks, weekly_4 is out of reach, plus all_rounder.
	f := AchievementFacts{
		Entries: entriesOnDates(1,
			"2025-02-01", "2025-02-02", "2025-02-03", "2025-02-04",
			"2025-02-05", "2025-02-06", "2025-02-07", "2025-02-08",
			"2025-02-09", "2025-02-10"),
		ActiveMetrics: 1,
		Unlocked:      map[string]bool{},
		Today:         ParseDate("2025-02-10"),
	}
	got := EvaluateAchievements(f)
	want := []string{"first_entry", "entries_10", "streak_3d", "streak_7d", "all_rounder"}
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestEvaluateSkipsAlreadyUnlocked(t *testing.T) {
	f := AchievementFacts{
		Entries:       entriesOnDates(1, "2025-03-05"),
		ActiveMetrics: 2,
		Unlocked:      map[string]bool{"first_entry": true},
		Today:         ParseDate("2025-03-05"),
	}
	if got := EvaluateAchievements(f); len(got) != 0 {
		t.Fatalf("held keys must not be re-emitted, got %v", got)
	}
}

func TestEvaluateEmptyHistory(t *testing.T) {
	f := AchievementFacts{
		ActiveMetrics: 2,
		Unlocked:      map[string]bool{},
		Today:         ParseDate("2025-03-05"),
	}
	if got := EvaluateAchievements(f); len(got) != 0 {
		t.Fatalf("empty history must unlock nothing, got %v", got)
	}
}

func TestEvaluateEarlyBird(t *testing.T) {
	f := AchievementFacts{
		Entries:       entriesOnDates(1, "2025-01-20"),
		ActiveMetrics: 2,
		Unlocked:      map[string]bool{"first_entry": true},
		Today:         ParseDate("2025-01-20"),
	}
	got := EvaluateAchievements(f)
	if len(got) != 1 || got[0] != "early_bird" {
		t.Fatalf("got %v, want [early_bird]", got)
	}
}

func TestEvaluateConsistencyKing(t *testing.T) {
	// Entries in every month January through April, checked in April.
	f := AchievementFacts{
		Entries: entriesOnDates(1,
			"2025-01-10", "2025-02-10", "2025-03-10", "2025-04-10"),
		ActiveMetrics: 2,
		Unlocked: map[string]bool{
			"first_entry": true, "early_bird": true,
		},
		Today: ParseDate("2025-04-15"),
	}
	got := EvaluateAchievements(f)
	if len(got) != 1 || got[0] != "consistency_king" {
		t.Fatalf("got %v, want [consistency_king]", got)
	}

	// A January-only history in January cannot qualify.
	f = AchievementFacts{
		Entries:       entriesOnDates(1, "2025-01-10"),
		ActiveMetrics: 2,
		Unlocked:      map[string]bool{"first_entry": true, "early_bird": true},
		Today:         ParseDate("2025-01-15"),
	}
	if got := EvaluateAchievements(f); len(got) != 0 {
		t.Fatalf("single-month history should not qualify, got %v", got)
	}
}

func TestEvaluateGoalAchievements(t *testing.T) {
	entries := entriesOnDates(1, "2025-03-01", "2025-03-03", "2025-03-05", "2025-03-07")

	// Exactly on target.
	f := AchievementFacts{
		Entries:       entries,
		Goals:         []domain.Goal{{MetricID: 1, Target: 4}},
		ActiveMetrics: 2,
		Unlocked:      map[string]bool{"first_entry": true},
		Today:         ParseDate("2025-03-07"),
	}
	got := EvaluateAchievements(f)
	if len(got) != 1 || got[0] != "perfectionist" {
		t.Fatalf("got %v, want [perfectionist]", got)
	}

	// 50% past target: 4 entries against a target of 2.
	f.Goals = []domain.Goal{{MetricID: 1, Target: 2}}
	got = EvaluateAchievements(f)
	if len(got) != 1 || got[0] != "goal_crusher" {
		t.Fatalf("got %v, want [goal_crusher]", got)
	}

	// Goals on another metric don't count.
	f.Goals = []domain.Goal{{MetricID: 9, Target: 4}}
	if got := EvaluateAchievements(f); len(got) != 0 {
		t.Fatalf("unrelated goal should not unlock, got %v", got)
	}
}

func TestEvaluateWeeklyStreaks(t *testing.T) {
	// One entry per week for four straight weeks.
	f := AchievementFacts{
		Entries: entriesOnDates(1,
			"2025-03-03", "2025-03-10", "2025-03-17", "2025-03-24"),
		ActiveMetrics: 2,
		Unlocked: map[string]bool{
			"first_entry": true,
		},
		Today: ParseDate("2025-03-24"),
	}
	got := EvaluateAchievements(f)
	if len(got) != 1 || got[0] != "weekly_4" {
		t.Fatalf("got %v, want [weekly_4]", got)
	}
}
