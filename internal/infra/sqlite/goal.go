package sqlite

import (
	"database/sql"
	"errors"

	"github.com/recap-crew/recap/internal/domain"
)

// ─── Goals Repository ───────────────────────────────────────────────────────

// GoalsForSeason returns all goals with display names attached.
func (d *DB) GoalsForSeason(seasonID int64) ([]domain.GoalWithNames, error) {
	rows, err := d.db.Query(
		`SELECT g.id, g.season_id, g.person_id, g.metric_id, g.target, g.created_at, g.updated_at,
		        p.name, p.emoji, m.name, m.emoji
		 FROM goals g
		 JOIN people p ON g.person_id = p.id
		 JOIN metrics m ON g.metric_id = m.id
		 WHERE g.season_id = ?
		 ORDER BY p.name, m.name`, seasonID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var goals []domain.GoalWithNames
	for rows.Next() {
		var g domain.GoalWithNames
		if err := rows.Scan(
			&g.ID, &g.SeasonID, &g.PersonID, &g.MetricID, &g.Target, &g.CreatedAt, &g.UpdatedAt,
			&g.PersonName, &g.PersonEmoji, &g.MetricName, &g.MetricEmoji); err != nil {
			return nil, err
		}
		goals = append(goals, g)
	}
	return goals, rows.Err()
}

// Goal fetches one goal by its natural key.
func (d *DB) Goal(seasonID, personID, metricID int64) (*domain.Goal, error) {
	row := d.db.QueryRow(
		`SELECT id, season_id, person_id, metric_id, target, created_at, updated_at
		 FROM goals WHERE season_id = ? AND person_id = ? AND metric_id = ?`,
		seasonID, personID, metricID)
	g, err := scanGoal(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrGoalNotFound
	}
	return g, err
}

// PersonGoals returns one person's goals for the season. Satisfies the
// achievement engine's store interface.
func (d *DB) PersonGoals(seasonID, personID int64) ([]domain.Goal, error) {
	rows, err := d.db.Query(
		`SELECT id, season_id, person_id, metric_id, target, created_at, updated_at
		 FROM goals WHERE season_id = ? AND person_id = ?`,
		seasonID, personID)
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

// SetGoal upserts the target for a (season, person, metric) key.
func (d *DB) SetGoal(seasonID, personID, metricID int64, target int) (*domain.Goal, error) {
	if _, err := d.db.Exec(
		`INSERT INTO goals (season_id, person_id, metric_id, target)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(season_id, person_id, metric_id)
		 DO UPDATE SET target = excluded.target, updated_at = datetime('now')`,
		seasonID, personID, metricID, target); err != nil {
		return nil, err
	}
	return d.Goal(seasonID, personID, metricID)
}

// DeleteGoal removes a goal. Removing a missing goal is a no-op.
func (d *DB) DeleteGoal(seasonID, personID, metricID int64) error {
	_, err := d.db.Exec(
		`DELETE FROM goals WHERE season_id = ? AND person_id = ? AND metric_id = ?`,
		seasonID, personID, metricID)
	return err
}

// GoalsWithProgress joins goals with their live entry counts.
func (d *DB) GoalsWithProgress(seasonID int64) ([]domain.GoalProgress, error) {
	rows, err := d.db.Query(
		`SELECT g.person_id, g.metric_id, g.target, p.name, m.name, COUNT(e.id)
		 FROM goals g
		 JOIN people p ON g.person_id = p.id
		 JOIN metrics m ON g.metric_id = m.id
		 LEFT JOIN entries e ON e.person_id = g.person_id AND e.metric_id = g.metric_id
		   AND e.season_id = g.season_id AND e.deleted_at IS NULL
		 WHERE g.season_id = ?
		 GROUP BY g.person_id, g.metric_id
		 ORDER BY p.name, m.name`, seasonID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var progress []domain.GoalProgress
	for rows.Next() {
		var gp domain.GoalProgress
		if err := rows.Scan(&gp.PersonID, &gp.MetricID, &gp.Target, &gp.PersonName, &gp.MetricName, &gp.Current); err != nil {
			return nil, err
		}
		progress = append(progress, gp)
	}
	return progress, rows.Err()
}

func scanGoal(s scanner) (*domain.Goal, error) {
	var g domain.Goal
	if err := s.Scan(&g.ID, &g.SeasonID, &g.PersonID, &g.MetricID, &g.Target, &g.CreatedAt, &g.UpdatedAt); err != nil {
		return nil, err
	}
	return &g, nil
}
