package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/recap-crew/recap/internal/domain"
)

// ─── Export / Import ────────────────────────────────────────────────────────

// ExportData is a full database dump. PIN values are deliberately absent:
// settings carry only their key and timestamp.
type ExportData struct {
	Seasons      []domain.Season       `json:"seasons"`
	People       []domain.Person       `json:"people"`
	Metrics      []domain.Metric       `json:"metrics"`
	Entries      []domain.Entry        `json:"entries"`
	EntryAudit   []domain.EntryAudit   `json:"entry_audit"`
	Goals        []domain.Goal         `json:"goals"`
	Achievements []AchievementRow      `json:"achievements"`
	Countries    []domain.CountryVisit `json:"countries_visited"`
	Settings     []SettingMeta         `json:"settings"`
	ExportedAt   string                `json:"exported_at"`
}

// AchievementRow is the raw unlock record as stored.
type AchievementRow struct {
	ID         int64  `json:"id"`
	SeasonID   int64  `json:"season_id"`
	PersonID   int64  `json:"person_id"`
	Key        string `json:"achievement_key"`
	UnlockedAt string `json:"unlocked_at"`
}

// SettingMeta is a settings row without its value.
type SettingMeta struct {
	Key       string `json:"key"`
	UpdatedAt string `json:"updated_at"`
}

// ImportSummary reports what an import did. Row-level failures land in
// Errors without aborting the rest of the batch.
type ImportSummary struct {
	Imported map[string]int `json:"imported"`
	Errors   []string       `json:"errors"`
}

// ExportAll dumps every table, soft-deleted entries included.
func (d *DB) ExportAll() (*ExportData, error) {
	out := &ExportData{ExportedAt: time.Now().UTC().Format(time.RFC3339)}

	var err error
	if out.Seasons, err = d.AllSeasons(); err != nil {
		return nil, fmt.Errorf("export seasons: %w", err)
	}
	if out.People, err = d.AllPeople(); err != nil {
		return nil, fmt.Errorf("export people: %w", err)
	}
	if out.Metrics, err = d.AllMetrics(); err != nil {
		return nil, fmt.Errorf("export metrics: %w", err)
	}
	if out.Entries, err = d.allEntries(); err != nil {
		return nil, fmt.Errorf("export entries: %w", err)
	}
	if out.EntryAudit, err = d.allAudit(); err != nil {
		return nil, fmt.Errorf("export audit: %w", err)
	}
	if out.Goals, err = d.allGoals(); err != nil {
		return nil, fmt.Errorf("export goals: %w", err)
	}
	if out.Achievements, err = d.allAchievements(); err != nil {
		return nil, fmt.Errorf("export achievements: %w", err)
	}
	if out.Countries, err = d.allCountries(); err != nil {
		return nil, fmt.Errorf("export countries: %w", err)
	}
	if out.Settings, err = d.settingsMeta(); err != nil {
		return nil, fmt.Errorf("export settings: %w", err)
	}
	return out, nil
}

// ImportAll loads a dump. In "merge" mode incoming rows overwrite rows with
// the same id and leave the rest alone; "replace" clears all data first.
// The whole import runs in one transaction, but individual bad rows are
// collected into the summary rather than aborting it.
func (d *DB) ImportAll(data *ExportData, mode string) (*ImportSummary, error) {
	if mode != "merge" && mode != "replace" {
		return nil, domain.ErrImportMode
	}

	tx, err := d.db.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if mode == "replace" {
		// Reverse dependency order so foreign keys stay happy.
		for _, table := range []string{
			"entry_audit", "entries", "goals", "achievements",
			"countries_visited", "metrics", "people", "seasons",
		} {
			if _, err := tx.Exec("DELETE FROM " + table); err != nil {
				return nil, fmt.Errorf("clear %s: %w", table, err)
			}
		}
	}

	summary := &ImportSummary{Imported: make(map[string]int)}
	record := func(table string, label string, err error) {
		if err != nil {
			summary.Errors = append(summary.Errors, fmt.Sprintf("%s %s: %v", table, label, err))
			return
		}
		summary.Imported[table]++
	}

	for _, s := range data.Seasons {
		_, err := tx.Exec(
			`INSERT OR REPLACE INTO seasons (id, year, name, is_active, created_at) VALUES (?, ?, ?, ?, ?)`,
			s.ID, s.Year, s.Name, s.IsActive, s.CreatedAt)
		record("seasons", fmt.Sprint(s.Year), err)
	}
	for _, p := range data.People {
		_, err := tx.Exec(
			`INSERT OR REPLACE INTO people (id, name, emoji, is_active, created_at) VALUES (?, ?, ?, ?, ?)`,
			p.ID, p.Name, p.Emoji, p.IsActive, p.CreatedAt)
		record("people", p.Name, err)
	}
	for _, m := range data.Metrics {
		_, err := tx.Exec(
			`INSERT OR REPLACE INTO metrics (id, name, emoji, is_active, created_at) VALUES (?, ?, ?, ?, ?)`,
			m.ID, m.Name, m.Emoji, m.IsActive, m.CreatedAt)
		record("metrics", m.Name, err)
	}
	for _, e := range data.Entries {
		_, err := tx.Exec(
			`INSERT OR REPLACE INTO entries (id, season_id, person_id, metric_id, entry_date, notes, tags, deleted_at, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			e.ID, e.SeasonID, e.PersonID, e.MetricID, e.EntryDate,
			nullStr(e.Notes), nullStr(e.Tags), nullStr(e.DeletedAt), e.CreatedAt)
		record("entries", fmt.Sprint(e.ID), err)
	}
	for _, a := range data.EntryAudit {
		_, err := tx.Exec(
			`INSERT OR REPLACE INTO entry_audit (id, entry_id, action, old_values, new_values, performed_by, performed_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			a.ID, a.EntryID, string(a.Action), nullStr(a.OldValues), nullStr(a.NewValues),
			string(a.PerformedBy), a.PerformedAt)
		record("entry_audit", fmt.Sprint(a.ID), err)
	}
	for _, g := range data.Goals {
		_, err := tx.Exec(
			`INSERT OR REPLACE INTO goals (id, season_id, person_id, metric_id, target, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			g.ID, g.SeasonID, g.PersonID, g.MetricID, g.Target, g.CreatedAt, g.UpdatedAt)
		record("goals", fmt.Sprint(g.ID), err)
	}
	for _, a := range data.Achievements {
		_, err := tx.Exec(
			`INSERT OR REPLACE INTO achievements (id, season_id, person_id, achievement_key, unlocked_at)
			 VALUES (?, ?, ?, ?, ?)`,
			a.ID, a.SeasonID, a.PersonID, a.Key, a.UnlockedAt)
		record("achievements", a.Key, err)
	}
	for _, c := range data.Countries {
		_, err := tx.Exec(
			`INSERT OR REPLACE INTO countries_visited (id, season_id, person_id, country_code, country_name, visited_at)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			c.ID, c.SeasonID, c.PersonID, c.CountryCode, c.CountryName, c.VisitedAt)
		record("countries_visited", c.CountryCode, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return summary, nil
}

func (d *DB) allEntries() ([]domain.Entry, error) {
	rows, err := d.db.Query(
		`SELECT id, season_id, person_id, metric_id, entry_date, notes, tags, deleted_at, created_at
		 FROM entries ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *e)
	}
	return entries, rows.Err()
}

func (d *DB) allAudit() ([]domain.EntryAudit, error) {
	rows, err := d.db.Query(
		`SELECT id, entry_id, action, old_values, new_values, performed_by, performed_at
		 FROM entry_audit ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectAudits(rows)
}

func (d *DB) allGoals() ([]domain.Goal, error) {
	rows, err := d.db.Query(
		`SELECT id, season_id, person_id, metric_id, target, created_at, updated_at
		 FROM goals ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var goals []domain.Goal
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, err
		}
		goals = append(goals, *g)
	}
	return goals, rows.Err()
}

func (d *DB) allAchievements() ([]AchievementRow, error) {
	rows, err := d.db.Query(
		`SELECT id, season_id, person_id, achievement_key, unlocked_at
		 FROM achievements ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var unlocks []AchievementRow
	for rows.Next() {
		var a AchievementRow
		if err := rows.Scan(&a.ID, &a.SeasonID, &a.PersonID, &a.Key, &a.UnlockedAt); err != nil {
			return nil, err
		}
		unlocks = append(unlocks, a)
	}
	return unlocks, rows.Err()
}

func (d *DB) allCountries() ([]domain.CountryVisit, error) {
	rows, err := d.db.Query(
		`SELECT id, season_id, person_id, country_code, country_name, visited_at
		 FROM countries_visited ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectCountryVisits(rows)
}

func (d *DB) settingsMeta() ([]SettingMeta, error) {
	rows, err := d.db.Query(`SELECT key, updated_at FROM settings ORDER BY key`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var metas []SettingMeta
	for rows.Next() {
		var m SettingMeta
		var updatedAt sql.NullString
		if err := rows.Scan(&m.Key, &updatedAt); err != nil {
			return nil, err
		}
		m.UpdatedAt = strOrEmpty(updatedAt)
		metas = append(metas, m)
	}
	return metas, rows.Err()
}
