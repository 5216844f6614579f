package sqlite

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/recap-crew/recap/internal/domain"
)

// ─── Entry Repository ───────────────────────────────────────────────────────

const entryWithNamesSelect = `
	SELECT e.id, e.season_id, e.person_id, e.metric_id, e.entry_date,
	       e.notes, e.tags, e.deleted_at, e.created_at,
	       p.name, p.emoji, m.name
	FROM entries e
	JOIN people p ON e.person_id = p.id
	JOIN metrics m ON e.metric_id = m.id`

// EntriesForSeason returns a season's entries, newest first. Soft-deleted
// rows are excluded unless includeDeleted is set (the admin trash view).
func (d *DB) EntriesForSeason(seasonID int64, includeDeleted bool) ([]domain.EntryWithNames, error) {
	filter := ` WHERE e.season_id = ? AND e.deleted_at IS NULL`
	if includeDeleted {
		filter = ` WHERE e.season_id = ?`
	}
	return d.queryEntries(
		entryWithNamesSelect+filter+` ORDER BY e.entry_date DESC, e.created_at DESC`,
		seasonID)
}

// RecentEntries returns the latest logged entries by creation time.
func (d *DB) RecentEntries(seasonID int64, limit int) ([]domain.EntryWithNames, error) {
	return d.queryEntries(
		entryWithNamesSelect+` WHERE e.season_id = ? AND e.deleted_at IS NULL
		 ORDER BY e.created_at DESC LIMIT ?`,
		seasonID, limit)
}

// EntriesInRange returns non-deleted entries between two day keys, inclusive.
func (d *DB) EntriesInRange(seasonID int64, startDate, endDate string) ([]domain.EntryWithNames, error) {
	return d.queryEntries(
		entryWithNamesSelect+` WHERE e.season_id = ? AND e.entry_date >= ? AND e.entry_date <= ?
		 AND e.deleted_at IS NULL ORDER BY e.entry_date DESC, e.created_at DESC`,
		seasonID, startDate, endDate)
}

// EntriesForDate returns one day's entries.
func (d *DB) EntriesForDate(seasonID int64, date string) ([]domain.EntryWithNames, error) {
	return d.queryEntries(
		entryWithNamesSelect+` WHERE e.season_id = ? AND e.entry_date = ? AND e.deleted_at IS NULL
		 ORDER BY e.created_at DESC`,
		seasonID, date)
}

// EntriesForPersonLimited returns a person's most recent entries.
func (d *DB) EntriesForPersonLimited(seasonID, personID int64, limit int) ([]domain.EntryWithNames, error) {
	return d.queryEntries(
		entryWithNamesSelect+` WHERE e.season_id = ? AND e.person_id = ? AND e.deleted_at IS NULL
		 ORDER BY e.entry_date DESC, e.created_at DESC LIMIT ?`,
		seasonID, personID, limit)
}

// PersonEntries returns a person's non-deleted entries ordered by date
// ascending, the shape the analytics core expects. Satisfies the
// achievement engine's store interface.
func (d *DB) PersonEntries(seasonID, personID int64) ([]domain.Entry, error) {
	rows, err := d.db.Query(
		`SELECT id, season_id, person_id, metric_id, entry_date, notes, tags, deleted_at, created_at
		 FROM entries
		 WHERE season_id = ? AND person_id = ? AND deleted_at IS NULL
		 ORDER BY entry_date, id`,
		seasonID, personID)
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

// CheckDuplicate returns an existing live entry for the same
// (person, metric, date), or nil if the slot is free.
func (d *DB) CheckDuplicate(seasonID, personID, metricID int64, entryDate string) (*domain.EntryWithNames, error) {
	matches, err := d.queryEntries(
		entryWithNamesSelect+` WHERE e.season_id = ? AND e.person_id = ? AND e.metric_id = ?
		 AND e.entry_date = ? AND e.deleted_at IS NULL LIMIT 1`,
		seasonID, personID, metricID, entryDate)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, nil
	}
	return &matches[0], nil
}

// CreateEntry inserts an entry and logs the creation to the audit trail.
func (d *DB) CreateEntry(seasonID, personID, metricID int64, entryDate, notes, tags string, by domain.Role) (*domain.Entry, error) {
	res, err := d.db.Exec(
		`INSERT INTO entries (season_id, person_id, metric_id, entry_date, notes, tags)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		seasonID, personID, metricID, entryDate, nullStr(notes), nullStr(tags))
	if err != nil {
		return nil, fmt.Errorf("insert entry: %w", err)
	}
	id, _ := res.LastInsertId()

	entry, err := d.entryByID(id)
	if err != nil {
		return nil, err
	}
	d.logAudit(id, domain.AuditCreate, by, nil, map[string]any{
		"season_id": seasonID, "person_id": personID, "metric_id": metricID,
		"entry_date": entryDate, "notes": notes, "tags": tags,
	})
	return entry, nil
}

// UpdateEntry reassigns person, metric, and date, recording old and new
// values in the audit trail.
func (d *DB) UpdateEntry(id, personID, metricID int64, entryDate string, by domain.Role) error {
	old, err := d.entryByID(id)
	if err != nil {
		return err
	}
	if _, err := d.db.Exec(
		`UPDATE entries SET person_id = ?, metric_id = ?, entry_date = ? WHERE id = ?`,
		personID, metricID, entryDate, id); err != nil {
		return fmt.Errorf("update entry: %w", err)
	}
	d.logAudit(id, domain.AuditUpdate, by,
		map[string]any{"person_id": old.PersonID, "metric_id": old.MetricID, "entry_date": old.EntryDate},
		map[string]any{"person_id": personID, "metric_id": metricID, "entry_date": entryDate})
	return nil
}

// SoftDeleteEntry marks an entry deleted without destroying it.
func (d *DB) SoftDeleteEntry(id int64, by domain.Role) error {
	old, err := d.entryByID(id)
	if err != nil {
		return err
	}
	if _, err := d.db.Exec(
		`UPDATE entries SET deleted_at = datetime('now') WHERE id = ?`, id); err != nil {
		return fmt.Errorf("soft delete entry: %w", err)
	}
	d.logAudit(id, domain.AuditDelete, by, map[string]any{
		"person_id": old.PersonID, "metric_id": old.MetricID,
		"entry_date": old.EntryDate, "notes": old.Notes,
	}, nil)
	return nil
}

// SoftDeleteEntries soft-deletes a batch, stopping at the first failure.
func (d *DB) SoftDeleteEntries(ids []int64, by domain.Role) error {
	for _, id := range ids {
		if err := d.SoftDeleteEntry(id, by); err != nil {
			return err
		}
	}
	return nil
}

// UndeleteEntry restores a soft-deleted entry.
func (d *DB) UndeleteEntry(id int64, by domain.Role) error {
	old, err := d.entryByID(id)
	if err != nil {
		return err
	}
	if _, err := d.db.Exec(
		`UPDATE entries SET deleted_at = NULL WHERE id = ?`, id); err != nil {
		return fmt.Errorf("undelete entry: %w", err)
	}
	d.logAudit(id, domain.AuditUndelete, by, nil, map[string]any{
		"person_id": old.PersonID, "metric_id": old.MetricID,
		"entry_date": old.EntryDate, "notes": old.Notes,
	})
	return nil
}

// UndeleteEntries restores a batch.
func (d *DB) UndeleteEntries(ids []int64, by domain.Role) error {
	for _, id := range ids {
		if err := d.UndeleteEntry(id, by); err != nil {
			return err
		}
	}
	return nil
}

// EntryAuditLog returns the audit history of one entry, newest first.
func (d *DB) EntryAuditLog(entryID int64) ([]domain.EntryAudit, error) {
	rows, err := d.db.Query(
		`SELECT id, entry_id, action, old_values, new_values, performed_by, performed_at
		 FROM entry_audit WHERE entry_id = ? ORDER BY performed_at DESC, id DESC`,
		entryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectAudits(rows)
}

// AllAuditLogs returns the most recent audit rows across all entries,
// for the admin view.
func (d *DB) AllAuditLogs(limit int) ([]domain.EntryAudit, error) {
	rows, err := d.db.Query(
		`SELECT ea.id, ea.entry_id, ea.action, ea.old_values, ea.new_values, ea.performed_by, ea.performed_at
		 FROM entry_audit ea
		 ORDER BY ea.performed_at DESC, ea.id DESC
		 LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectAudits(rows)
}

func (d *DB) entryByID(id int64) (*domain.Entry, error) {
	row := d.db.QueryRow(
		`SELECT id, season_id, person_id, metric_id, entry_date, notes, tags, deleted_at, created_at
		 FROM entries WHERE id = ?`, id)
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrEntryNotFound
	}
	return e, err
}

// logAudit appends to the audit trail. Audit failures are deliberately
// swallowed: an audit hiccup must never fail the user-facing write.
func (d *DB) logAudit(entryID int64, action domain.AuditAction, by domain.Role, oldValues, newValues map[string]any) {
	marshal := func(v map[string]any) sql.NullString {
		if v == nil {
			return sql.NullString{}
		}
		b, err := json.Marshal(v)
		if err != nil {
			return sql.NullString{}
		}
		return sql.NullString{String: string(b), Valid: true}
	}
	d.db.Exec(
		`INSERT INTO entry_audit (entry_id, action, old_values, new_values, performed_by)
		 VALUES (?, ?, ?, ?, ?)`,
		entryID, string(action), marshal(oldValues), marshal(newValues), string(by))
}

func (d *DB) queryEntries(query string, args ...any) ([]domain.EntryWithNames, error) {
	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.EntryWithNames
	for rows.Next() {
		var e domain.EntryWithNames
		var notes, tags, deletedAt sql.NullString
		if err := rows.Scan(
			&e.ID, &e.SeasonID, &e.PersonID, &e.MetricID, &e.EntryDate,
			&notes, &tags, &deletedAt, &e.CreatedAt,
			&e.PersonName, &e.PersonEmoji, &e.MetricName); err != nil {
			return nil, err
		}
		e.Notes = strOrEmpty(notes)
		e.Tags = strOrEmpty(tags)
		e.DeletedAt = strOrEmpty(deletedAt)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func scanEntry(s scanner) (*domain.Entry, error) {
	var e domain.Entry
	var notes, tags, deletedAt sql.NullString
	if err := s.Scan(&e.ID, &e.SeasonID, &e.PersonID, &e.MetricID, &e.EntryDate,
		&notes, &tags, &deletedAt, &e.CreatedAt); err != nil {
		return nil, err
	}
	e.Notes = strOrEmpty(notes)
	e.Tags = strOrEmpty(tags)
	e.DeletedAt = strOrEmpty(deletedAt)
	return &e, nil
}

func collectAudits(rows *sql.Rows) ([]domain.EntryAudit, error) {
	var audits []domain.EntryAudit
	for rows.Next() {
		var a domain.EntryAudit
		var action, by string
		var oldV, newV sql.NullString
		if err := rows.Scan(&a.ID, &a.EntryID, &action, &oldV, &newV, &by, &a.PerformedAt); err != nil {
			return nil, err
		}
		a.Action = domain.AuditAction(action)
		a.PerformedBy = domain.Role(by)
		a.OldValues = strOrEmpty(oldV)
		a.NewValues = strOrEmpty(newV)
		audits = append(audits, a)
	}
	return audits, rows.Err()
}
