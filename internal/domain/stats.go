package domain

// Derived view models. Everything in this file is recomputed on read —
// nothing is persisted, so there is no staleness to manage.

// ─── Streaks ────────────────────────────────────────────────────────────────

// StreakData is the full streak snapshot for one (person, metric) pair.
// Zero values are meaningful: a person with no entries gets an all-zero
// snapshot, never a missing record.
type StreakData struct {
	PersonID    int64  `json:"person_id"`
	PersonName  string `json:"person_name"`
	PersonEmoji string `json:"person_emoji"`

	CurrentDailyStreak      int    `json:"current_daily_streak"`
	LongestDailyStreak      int    `json:"longest_daily_streak"`
	LongestDailyStreakStart string `json:"longest_daily_streak_start,omitempty"`
	LongestDailyStreakEnd   string `json:"longest_daily_streak_end,omitempty"`

	CurrentWeeklyStreak      int    `json:"current_weekly_streak"`
	LongestWeeklyStreak      int    `json:"longest_weekly_streak"`
	LongestWeeklyStreakStart string `json:"longest_weekly_streak_start,omitempty"`
	LongestWeeklyStreakEnd   string `json:"longest_weekly_streak_end,omitempty"`

	CurrentMonthlyStreak int `json:"current_monthly_streak"`
	LongestMonthlyStreak int `json:"longest_monthly_streak"`

	TotalEntries      int     `json:"total_entries"`
	BusiestDay        string  `json:"busiest_day,omitempty"`
	BusiestMonth      string  `json:"busiest_month,omitempty"`
	FirstEntry        string  `json:"first_entry,omitempty"`
	LastEntry         string  `json:"last_entry,omitempty"`
	EntriesPerWeekAvg float64 `json:"entries_per_week_avg"`
}

// ─── XP / Leveling ──────────────────────────────────────────────────────────

// Level is one band of the leveling ladder. MaxXP < 0 marks the
// unbounded top band.
type Level struct {
	Level int    `json:"level"`
	Name  string `json:"name"`
	Emoji string `json:"emoji"`
	MinXP int    `json:"min_xp"`
	MaxXP int    `json:"max_xp"`
}

// Unbounded reports whether this is the top band.
func (l Level) Unbounded() bool { return l.MaxXP < 0 }

// XPBreakdown splits total XP into its six independent components.
type XPBreakdown struct {
	Entries      int `json:"entries"`
	Streaks      int `json:"streaks"`
	Achievements int `json:"achievements"`
	Goals        int `json:"goals"`
	Variety      int `json:"variety"`
	Consistency  int `json:"consistency"`
	Total        int `json:"total"`
}

// PlayerStats is the full gamification snapshot for a person.
type PlayerStats struct {
	XP            XPBreakdown `json:"xp"`
	Level         Level       `json:"level"`
	Progress      int         `json:"progress"` // 0-100 toward next level
	XPToNextLevel int         `json:"xp_to_next_level"`
}

// ─── Recap ──────────────────────────────────────────────────────────────────

// Award is one narrative prize on the recap page.
type Award struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Emoji       string `json:"emoji"`
	PersonName  string `json:"person_name"`
	PersonEmoji string `json:"person_emoji"`
	Description string `json:"description"`
	Value       string `json:"value,omitempty"`
}

// TriviaCategory labels the theme of a trivia question.
type TriviaCategory string

const (
	TriviaPerson  TriviaCategory = "person"
	TriviaMetric  TriviaCategory = "metric"
	TriviaStreak  TriviaCategory = "streak"
	TriviaGeneral TriviaCategory = "general"
	TriviaTravel  TriviaCategory = "travel"
)

// TriviaQuestion is one fact/answer pair for the recap quiz.
type TriviaQuestion struct {
	ID       string         `json:"id"`
	Question string         `json:"question"`
	Answer   string         `json:"answer"`
	Hint     string         `json:"hint,omitempty"`
	Category TriviaCategory `json:"category"`
}

// TeaserCategory labels the kind of shareable teaser.
type TeaserCategory string

const (
	TeaserStreak    TeaserCategory = "streak"
	TeaserMilestone TeaserCategory = "milestone"
	TeaserMovement  TeaserCategory = "movement"
	TeaserMystery   TeaserCategory = "mystery"
	TeaserAggregate TeaserCategory = "aggregate"
	TeaserChallenge TeaserCategory = "challenge"
)

// Teaser is a spoiler-free shareable message about season progress.
type Teaser struct {
	Emoji    string         `json:"emoji"`
	Category TeaserCategory `json:"category"`
	Message  string         `json:"message"`
	CopyText string         `json:"copy_text"`
}

// ─── Enhanced Stats ─────────────────────────────────────────────────────────

// DailyStatRow is a per-day per-person entry count.
type DailyStatRow struct {
	Date       string `json:"date"`
	PersonID   int64  `json:"person_id"`
	PersonName string `json:"person_name"`
	Count      int    `json:"count"`
}

// WeeklyStatRow buckets entry counts by week key.
type WeeklyStatRow struct {
	Week     string `json:"week"`
	PersonID int64  `json:"person_id"`
	MetricID int64  `json:"metric_id"`
	Count    int    `json:"count"`
}

// DayOfWeekStat is one bar of the weekday histogram. All seven days are
// always present, zero-filled.
type DayOfWeekStat struct {
	Day        string `json:"day"`
	DayIndex   int    `json:"day_index"` // 0 = Sunday
	Count      int    `json:"count"`
	Percentage int    `json:"percentage"`
}

// PersonalBest is one record for the personal-records card: best day,
// best week, best month, or longest gap between entries.
type PersonalBest struct {
	Type    string `json:"type"`
	Value   int    `json:"value"`
	Date    string `json:"date,omitempty"`
	Details string `json:"details,omitempty"`
}

// ConsistencyScore measures how regularly a person logs, as the share of
// elapsed weeks with at least one entry.
type ConsistencyScore struct {
	PersonID              int64  `json:"person_id"`
	PersonName            string `json:"person_name"`
	PersonEmoji           string `json:"person_emoji"`
	TotalWeeks            int    `json:"total_weeks"`
	ActiveWeeks           int    `json:"active_weeks"`
	ConsistencyPercentage int    `json:"consistency_percentage"`
	WeeksWithFourPlus     int    `json:"weeks_with_4plus"`
	LongestGapDays        int    `json:"longest_gap_days"`
}

// CumulativePoint is one point of the running-total-vs-expected-pace chart.
type CumulativePoint struct {
	Date        string `json:"date"`
	PersonID    int64  `json:"person_id"`
	PersonName  string `json:"person_name"`
	PersonEmoji string `json:"person_emoji"`
	Cumulative  int    `json:"cumulative"`
	Expected    int    `json:"expected"`
}

// StreakWarning flags a live daily streak that dies unless its owner logs
// an entry today.
type StreakWarning struct {
	PersonID      int64  `json:"person_id"`
	PersonName    string `json:"person_name"`
	PersonEmoji   string `json:"person_emoji"`
	MetricName    string `json:"metric_name"`
	MetricEmoji   string `json:"metric_emoji"`
	CurrentStreak int    `json:"current_streak"`
	LastEntry     string `json:"last_entry"`
	DaysSince     int    `json:"days_since"`
}

// SportTotal aggregates sport-tagged entries by tag.
type SportTotal struct {
	Tag        string `json:"tag"`
	Emoji      string `json:"emoji"`
	Total      int    `json:"total"`
	Percentage int    `json:"percentage"`
}

// SportProgressionRow is a per-tag monthly count with a running total.
type SportProgressionRow struct {
	Tag        string `json:"tag"`
	Month      string `json:"month"`
	Count      int    `json:"count"`
	Cumulative int    `json:"cumulative"`
}
