package analytics

import (
	"testing"

	"github.com/recap-crew/recap/internal/domain"
)

func TestLevelForXPBandEdges(t *testing.T) {
	// Every band's floor and ceiling must map back into that band.
	for _, lvl := range Levels() {
		if got := LevelForXP(lvl.MinXP); got.Level != lvl.Level {
			t.Errorf("LevelForXP(floor %d) = level %d, want %d", lvl.MinXP, got.Level, lvl.Level)
		}
		if !lvl.Unbounded() {
			if got := LevelForXP(lvl.MaxXP); got.Level != lvl.Level {
				t.Errorf("LevelForXP(ceiling %d) = level %d, want %d", lvl.MaxXP, got.Level, lvl.Level)
			}
			if got := LevelForXP(lvl.MaxXP + 1); got.Level != lvl.Level+1 {
				t.Errorf("LevelForXP(%d) = level %d, want %d", lvl.MaxXP+1, got.Level, lvl.Level+1)
			}
		}
	}
}

func TestLevelForXPExtremes(t *testing.T) {
	if got := LevelForXP(0); got.Level != 1 {
		t.Errorf("zero XP should be level 1, got %d", got.Level)
	}
	if got := LevelForXP(-50); got.Level != 1 {
		t.Errorf("negative XP should clamp to level 1, got %d", got.Level)
	}
	if got := LevelForXP(1_000_000); got.Level != 15 || !got.Unbounded() {
		t.Errorf("huge XP should hit the unbounded top band, got %+v", got)
	}
}

func TestLevelProgress(t *testing.T) {
	if got := LevelProgress(0); got != 0 {
		t.Errorf("progress at floor = %d, want 0", got)
	}
	// Level 1 spans 0..99 (range 100): 50 XP is exactly halfway.
	if got := LevelProgress(50); got != 50 {
		t.Errorf("progress at 50 = %d, want 50", got)
	}
	if got := LevelProgress(100_000); got != 100 {
		t.Errorf("progress in top band = %d, want 100", got)
	}
}

func TestXPToNextLevel(t *testing.T) {
	if got := XPToNextLevel(0); got != 100 {
		t.Errorf("xp to next at 0 = %d, want 100", got)
	}
	if got := XPToNextLevel(99); got != 1 {
		t.Errorf("xp to next at 99 = %d, want 1", got)
	}
	if got := XPToNextLevel(200_000); got != 0 {
		t.Errorf("top band should need 0 more, got %d", got)
	}
}

func TestCalculateXPComponents(t *testing.T) {
	got := CalculateXP(XPInputs{
		TotalEntries:  12,
		LongestStreak: 8,
		Unlocked: []domain.AchievementDef{
			{Rarity: domain.RarityCommon},
			{Rarity: domain.RarityLegendary},
		},
		GoalsReached:  1,
		GoalsExceeded: 1,
		UniqueMetrics: 3,
		ActiveWeeks:   5,
	})

	if got.Entries != 120 {
		t.Errorf("entries XP = %d, want 120", got.Entries)
	}
	if got.Streaks != 75 {
		t.Errorf("streak XP = %d, want 75 (only the 7-day tier pays)", got.Streaks)
	}
	if got.Achievements != 1050 {
		t.Errorf("achievement XP = %d, want 1050", got.Achievements)
	}
	if got.Goals != 300 {
		t.Errorf("goal XP = %d, want 300", got.Goals)
	}
	if got.Variety != 60 {
		t.Errorf("variety XP = %d, want 60", got.Variety)
	}
	if got.Consistency != 75 {
		t.Errorf("consistency XP = %d, want 75", got.Consistency)
	}
	if got.Total != 120+75+1050+300+60+75 {
		t.Errorf("total XP = %d", got.Total)
	}
}

func TestStreakBonusSingleTier(t *testing.T) {
	// Only the highest reached threshold pays out, never the sum.
	cases := []struct {
		streak int
		want   int
	}{
		{0, 0}, {2, 0}, {3, 25}, {7, 75}, {14, 150},
		{30, 400}, {60, 1000}, {100, 2500}, {250, 2500},
	}
	for _, c := range cases {
		got := CalculateXP(XPInputs{LongestStreak: c.streak})
		if got.Streaks != c.want {
			t.Errorf("streak %d: bonus = %d, want %d", c.streak, got.Streaks, c.want)
		}
	}
}

func TestCalculateXPUsesBestStreak(t *testing.T) {
	// The current streak can outrank a shorter historical record.
	got := CalculateXP(XPInputs{LongestStreak: 5, CurrentStreak: 14})
	if got.Streaks != 150 {
		t.Errorf("streak XP = %d, want 150", got.Streaks)
	}
}

func TestCalculateXPMonotone(t *testing.T) {
	base := XPInputs{TotalEntries: 20, LongestStreak: 5, UniqueMetrics: 2, ActiveWeeks: 4}
	before := CalculateXP(base).Total

	grown := base
	grown.TotalEntries++
	grown.ActiveWeeks++
	grown.Unlocked = []domain.AchievementDef{{Rarity: domain.RarityCommon}}
	after := CalculateXP(grown).Total

	if after <= before {
		t.Errorf("XP should grow with accomplishments: %d -> %d", before, after)
	}
}

func TestPlayerStatsFor(t *testing.T) {
	got := PlayerStatsFor(XPInputs{TotalEntries: 30}) // 300 XP
	if got.XP.Total != 300 {
		t.Fatalf("total = %d, want 300", got.XP.Total)
	}
	if got.Level.Level != 3 {
		t.Errorf("level = %d, want 3", got.Level.Level)
	}
	if got.XPToNextLevel != 200 {
		t.Errorf("xp to next = %d, want 200", got.XPToNextLevel)
	}
	// Band 3 spans 250..499 (range 250): 50 XP in is 20%.
	if got.Progress != 20 {
		t.Errorf("progress = %d, want 20", got.Progress)
	}
}

func TestFormatXP(t *testing.T) {
	if got := FormatXP(950); got != "950" {
		t.Errorf("FormatXP(950) = %s", got)
	}
	if got := FormatXP(12500); got != "12.5k" {
		t.Errorf("FormatXP(12500) = %s", got)
	}
}
