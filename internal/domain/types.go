// Package domain holds the plain data types shared across Resolution Recap.
// Storage rows, the achievement catalog, derived view models, and sentinel
// errors live here — no infrastructure dependencies.
package domain

// Role is the access level granted by a shared PIN.
type Role string

const (
	RoleTracker Role = "tracker"
	RoleAdmin   Role = "admin"
)

// Season is a year-scoped partition of entries. Exactly one season is
// active at a time; all analytics are computed within a season.
type Season struct {
	ID        int64  `json:"id"`
	Year      int    `json:"year"`
	Name      string `json:"name"`
	IsActive  bool   `json:"is_active"`
	CreatedAt string `json:"created_at"`
}

// Person is a participant. Name and active flag are editable by admins;
// the emoji is a unique display glyph.
type Person struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Emoji     string `json:"emoji"`
	IsActive  bool   `json:"is_active"`
	CreatedAt string `json:"created_at"`
}

// Metric is a trackable activity category, e.g. "Sporting".
type Metric struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Emoji     string `json:"emoji"`
	IsActive  bool   `json:"is_active"`
	CreatedAt string `json:"created_at"`
}

// Entry is one logged occurrence of a metric by a person on a date.
// Dates are day-granular "YYYY-MM-DD" strings. A non-empty DeletedAt
// marks a soft-deleted entry, excluded from all analytics.
type Entry struct {
	ID        int64  `json:"id"`
	SeasonID  int64  `json:"season_id"`
	PersonID  int64  `json:"person_id"`
	MetricID  int64  `json:"metric_id"`
	EntryDate string `json:"entry_date"`
	Notes     string `json:"notes,omitempty"`
	Tags      string `json:"tags,omitempty"`
	DeletedAt string `json:"deleted_at,omitempty"`
	CreatedAt string `json:"created_at"`
}

// EntryWithNames joins an entry with display names for the presentation layer.
type EntryWithNames struct {
	Entry
	PersonName  string `json:"person_name"`
	PersonEmoji string `json:"person_emoji"`
	MetricName  string `json:"metric_name"`
}

// AuditAction enumerates the mutations recorded in the append-only audit log.
type AuditAction string

const (
	AuditCreate   AuditAction = "create"
	AuditUpdate   AuditAction = "update"
	AuditDelete   AuditAction = "delete"
	AuditUndelete AuditAction = "undelete"
)

// EntryAudit is one row of the write-once audit trail.
type EntryAudit struct {
	ID          int64       `json:"id"`
	EntryID     int64       `json:"entry_id"`
	Action      AuditAction `json:"action"`
	OldValues   string      `json:"old_values,omitempty"`
	NewValues   string      `json:"new_values,omitempty"`
	PerformedBy Role        `json:"performed_by"`
	PerformedAt string      `json:"performed_at"`
}

// Goal is an integer target count, unique per (season, person, metric).
type Goal struct {
	ID        int64  `json:"id"`
	SeasonID  int64  `json:"season_id"`
	PersonID  int64  `json:"person_id"`
	MetricID  int64  `json:"metric_id"`
	Target    int    `json:"target"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// GoalWithNames joins a goal with display names.
type GoalWithNames struct {
	Goal
	PersonName  string `json:"person_name"`
	PersonEmoji string `json:"person_emoji"`
	MetricName  string `json:"metric_name"`
	MetricEmoji string `json:"metric_emoji"`
}

// GoalProgress is a goal with its current entry count.
type GoalProgress struct {
	PersonID   int64  `json:"person_id"`
	MetricID   int64  `json:"metric_id"`
	Target     int    `json:"target"`
	Current    int    `json:"current"`
	PersonName string `json:"person_name"`
	MetricName string `json:"metric_name"`
}

// CountryVisit records one country visited by a person in a season.
type CountryVisit struct {
	ID          int64  `json:"id"`
	SeasonID    int64  `json:"season_id"`
	PersonID    int64  `json:"person_id"`
	CountryCode string `json:"country_code"`
	CountryName string `json:"country_name"`
	VisitedAt   string `json:"visited_at"`
}

// CountryStats aggregates a person's visited countries.
type CountryStats struct {
	PersonID     int64    `json:"person_id"`
	PersonName   string   `json:"person_name"`
	PersonEmoji  string   `json:"person_emoji"`
	CountryCount int      `json:"country_count"`
	Countries    []string `json:"countries"`
}

// StatRow is one cell of the season leaderboard: entry count for a
// (person, metric) pair. Inactive people and metrics are excluded, but
// zero-count pairs are present.
type StatRow struct {
	PersonID    int64  `json:"person_id"`
	PersonName  string `json:"person_name"`
	PersonEmoji string `json:"person_emoji"`
	MetricID    int64  `json:"metric_id"`
	MetricName  string `json:"metric_name"`
	Count       int    `json:"count"`
}

// MonthlyStatRow is a per-month rollup of entry counts.
type MonthlyStatRow struct {
	Month       string `json:"month"` // "YYYY-MM"
	PersonID    int64  `json:"person_id"`
	PersonName  string `json:"person_name"`
	PersonEmoji string `json:"person_emoji"`
	MetricID    int64  `json:"metric_id"`
	MetricName  string `json:"metric_name"`
	Count       int    `json:"count"`
}
