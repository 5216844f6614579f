package domain

// Rarity is the closed set of achievement tiers.
type Rarity string

const (
	RarityCommon    Rarity = "common"
	RarityRare      Rarity = "rare"
	RarityEpic      Rarity = "epic"
	RarityLegendary Rarity = "legendary"
)

// XPBonus returns the one-time XP awarded for unlocking an achievement
// of this rarity. Unknown values fall back to the common bonus.
func (r Rarity) XPBonus() int {
	switch r {
	case RarityRare:
		return 150
	case RarityEpic:
		return 400
	case RarityLegendary:
		return 1000
	default:
		return 50
	}
}

// AchievementDef is one static catalog entry. Keys are stable — they are
// what gets persisted in unlock records.
type AchievementDef struct {
	Key         string `json:"key"`
	Name        string `json:"name"`
	Emoji       string `json:"emoji"`
	Description string `json:"description"`
	Rarity      Rarity `json:"rarity"`
}

// UnlockedAchievement records when a person earned an achievement.
// Unlocks are append-only and never revoked.
type UnlockedAchievement struct {
	Key        string `json:"key"`
	UnlockedAt string `json:"unlocked_at"`
}

// Achievements is the full catalog in definition order. The rule engine
// emits newly-unlocked keys in this order.
func Achievements() []AchievementDef {
	return []AchievementDef{
		// ── Entry milestones ───────────────────────────────────────────
		{Key: "first_entry", Name: "First Steps", Emoji: "👣", Description: "Log your first entry", Rarity: RarityCommon},
		{Key: "entries_10", Name: "Getting Started", Emoji: "🌱", Description: "Log 10 entries", Rarity: RarityCommon},
		{Key: "entries_25", Name: "Quarter Century", Emoji: "🎯", Description: "Log 25 entries", Rarity: RarityCommon},
		{Key: "entries_50", Name: "Half Century", Emoji: "⭐", Description: "Log 50 entries", Rarity: RarityRare},
		{Key: "entries_100", Name: "Century Club", Emoji: "💯", Description: "Log 100 entries", Rarity: RarityEpic},
		{Key: "entries_200", Name: "Double Century", Emoji: "🏆", Description: "Log 200 entries", Rarity: RarityLegendary},

		// ── Daily streaks ──────────────────────────────────────────────
		{Key: "streak_3d", Name: "Hat Trick", Emoji: "🎩", Description: "3-day streak", Rarity: RarityCommon},
		{Key: "streak_7d", Name: "Week Warrior", Emoji: "⚔️", Description: "7-day streak", Rarity: RarityRare},
		{Key: "streak_14d", Name: "Fortnight Fighter", Emoji: "🛡️", Description: "14-day streak", Rarity: RarityEpic},
		{Key: "streak_30d", Name: "Month Master", Emoji: "👑", Description: "30-day streak", Rarity: RarityLegendary},

		// ── Weekly streaks ─────────────────────────────────────────────
		{Key: "weekly_4", Name: "Monthly Regular", Emoji: "📅", Description: "4 consecutive weeks", Rarity: RarityCommon},
		{Key: "weekly_8", Name: "Two Month Streak", Emoji: "🔥", Description: "8 consecutive weeks", Rarity: RarityRare},
		{Key: "weekly_12", Name: "Quarter Champion", Emoji: "🏅", Description: "12 consecutive weeks", Rarity: RarityEpic},

		// ── Calendar patterns ──────────────────────────────────────────
		{Key: "early_bird", Name: "Early Bird", Emoji: "🐦", Description: "Log entries in January", Rarity: RarityCommon},
		{Key: "consistency_king", Name: "Consistency King", Emoji: "🤴", Description: "Log entries every month", Rarity: RarityLegendary},
		{Key: "weekend_warrior", Name: "Weekend Warrior", Emoji: "🦸", Description: "Most entries on weekends", Rarity: RarityRare},

		// ── Goals & variety ────────────────────────────────────────────
		{Key: "goal_crusher", Name: "Goal Crusher", Emoji: "💪", Description: "Exceed a goal by 50%", Rarity: RarityEpic},
		{Key: "perfectionist", Name: "Perfectionist", Emoji: "✨", Description: "Hit a goal exactly", Rarity: RarityRare},
		{Key: "all_rounder", Name: "All Rounder", Emoji: "🎭", Description: "Log entries for all metrics", Rarity: RarityCommon},
	}
}

// AchievementByKey looks up a catalog definition. The second return is
// false for unknown keys.
func AchievementByKey(key string) (AchievementDef, bool) {
	for _, def := range Achievements() {
		if def.Key == key {
			return def, true
		}
	}
	return AchievementDef{}, false
}
