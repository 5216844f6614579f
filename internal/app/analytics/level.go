package analytics

import (
	"fmt"
	"math"

	"github.com/recap-crew/recap/internal/domain"
)

// XP rewards per source. Streak bonuses are single-tier: only the highest
// reached threshold pays out.
const (
	xpPerEntry = 10

	xpStreak3   = 25
	xpStreak7   = 75
	xpStreak14  = 150
	xpStreak30  = 400
	xpStreak60  = 1000
	xpStreak100 = 2500

	xpGoalReached  = 200
	xpGoalExceeded = 100

	xpPerUniqueMetric = 20
	xpPerActiveWeek   = 15
)

// levels is the fixed 15-band ladder. MaxXP -1 marks the unbounded top.
var levels = []domain.Level{
	{Level: 1, Name: "Beginner", Emoji: "🌱", MinXP: 0, MaxXP: 99},
	{Level: 2, Name: "Starter", Emoji: "🌿", MinXP: 100, MaxXP: 249},
	{Level: 3, Name: "Rookie", Emoji: "🌳", MinXP: 250, MaxXP: 499},
	{Level: 4, Name: "Regular", Emoji: "⭐", MinXP: 500, MaxXP: 999},
	{Level: 5, Name: "Committed", Emoji: "🌟", MinXP: 1000, MaxXP: 1749},
	{Level: 6, Name: "Dedicated", Emoji: "💫", MinXP: 1750, MaxXP: 2749},
	{Level: 7, Name: "Achiever", Emoji: "🏅", MinXP: 2750, MaxXP: 3999},
	{Level: 8, Name: "Champion", Emoji: "🏆", MinXP: 4000, MaxXP: 5499},
	{Level: 9, Name: "Master", Emoji: "👑", MinXP: 5500, MaxXP: 7499},
	{Level: 10, Name: "Legend", Emoji: "🔥", MinXP: 7500, MaxXP: 9999},
	{Level: 11, Name: "Mythic", Emoji: "⚡", MinXP: 10000, MaxXP: 14999},
	{Level: 12, Name: "Immortal", Emoji: "💎", MinXP: 15000, MaxXP: 24999},
	{Level: 13, Name: "Transcendent", Emoji: "🌈", MinXP: 25000, MaxXP: 49999},
	{Level: 14, Name: "Celestial", Emoji: "✨", MinXP: 50000, MaxXP: 99999},
	{Level: 15, Name: "Godlike", Emoji: "🌟", MinXP: 100000, MaxXP: -1},
}

// Levels returns the full ladder in ascending order.
func Levels() []domain.Level {
	out := make([]domain.Level, len(levels))
	copy(out, levels)
	return out
}

// LevelForXP returns the band containing xp. Negative xp maps to level 1.
func LevelForXP(xp int) domain.Level {
	for i := len(levels) - 1; i >= 0; i-- {
		if xp >= levels[i].MinXP {
			return levels[i]
		}
	}
	return levels[0]
}

// LevelProgress returns the 0-100 percentage through the current band.
// The unbounded top band is always 100.
func LevelProgress(xp int) int {
	lvl := LevelForXP(xp)
	if lvl.Unbounded() {
		return 100
	}
	span := lvl.MaxXP - lvl.MinXP + 1
	pct := int(math.Round(float64(xp-lvl.MinXP) * 100 / float64(span)))
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	return pct
}

// XPToNextLevel returns how much XP is missing to leave the current band,
// or 0 at the top.
func XPToNextLevel(xp int) int {
	lvl := LevelForXP(xp)
	if lvl.Unbounded() {
		return 0
	}
	return lvl.MaxXP - xp + 1
}

// XPInputs are the per-person facts the XP formula consumes.
type XPInputs struct {
	TotalEntries  int
	LongestStreak int
	CurrentStreak int
	Unlocked      []domain.AchievementDef
	GoalsReached  int
	GoalsExceeded int
	UniqueMetrics int
	ActiveWeeks   int
}

// CalculateXP computes the six-component XP breakdown. Every component is
// monotone in its inputs, so adding entries or unlocks never lowers XP.
func CalculateXP(in XPInputs) domain.XPBreakdown {
	b := domain.XPBreakdown{
		Entries:     in.TotalEntries * xpPerEntry,
		Goals:       in.GoalsReached*xpGoalReached + in.GoalsExceeded*xpGoalExceeded,
		Variety:     in.UniqueMetrics * xpPerUniqueMetric,
		Consistency: in.ActiveWeeks * xpPerActiveWeek,
	}

	streak := in.LongestStreak
	if in.CurrentStreak > streak {
		streak = in.CurrentStreak
	}
	switch {
	case streak >= 100:
		b.Streaks = xpStreak100
	case streak >= 60:
		b.Streaks = xpStreak60
	case streak >= 30:
		b.Streaks = xpStreak30
	case streak >= 14:
		b.Streaks = xpStreak14
	case streak >= 7:
		b.Streaks = xpStreak7
	case streak >= 3:
		b.Streaks = xpStreak3
	}

	for _, def := range in.Unlocked {
		b.Achievements += def.Rarity.XPBonus()
	}

	b.Total = b.Entries + b.Streaks + b.Achievements + b.Goals + b.Variety + b.Consistency
	return b
}

// PlayerStatsFor bundles the breakdown with level placement.
func PlayerStatsFor(in XPInputs) domain.PlayerStats {
	xp := CalculateXP(in)
	return domain.PlayerStats{
		XP:            xp,
		Level:         LevelForXP(xp.Total),
		Progress:      LevelProgress(xp.Total),
		XPToNextLevel: XPToNextLevel(xp.Total),
	}
}

// FormatXP renders an XP total compactly, e.g. 12500 as "12.5k".
func FormatXP(xp int) string {
	if xp >= 1000 {
		return fmt.Sprintf("%.1fk", float64(xp)/1000)
	}
	return fmt.Sprintf("%d", xp)
}
