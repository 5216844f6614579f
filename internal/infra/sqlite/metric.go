package sqlite

import (
	"database/sql"
	"errors"

	"github.com/recap-crew/recap/internal/domain"
)

// ─── Metrics Repository ─────────────────────────────────────────────────────

var metricEmojiPool = []string{
	"🏃", "🎂", "📚", "💪", "🎮", "🍕", "🎬", "🎵", "✈️", "🛒",
	"🏋️", "🧘", "🚴", "⛷️", "🏊", "🎯", "🎳", "🎲", "🃏", "♟️",
	"📝", "💻", "📱", "🎨", "📷", "🎤", "🎹", "🥁", "🎻", "🎸",
	"🍳", "🍰", "🍺", "☕", "🍷", "🥗", "🍔", "🌮", "🍣", "🍜",
	"🚗", "🚲", "🏠", "🌳", "🌊", "⛰️", "🏕️", "🎡", "🎢", "🎪",
}

// ActiveMetrics returns active metrics ordered by name. Also satisfies
// the analytics achievement store.
func (d *DB) ActiveMetrics() ([]domain.Metric, error) {
	return d.queryMetrics(`SELECT id, name, emoji, is_active, created_at FROM metrics WHERE is_active = 1 ORDER BY name`)
}

// AllMetrics returns every metric ordered by name.
func (d *DB) AllMetrics() ([]domain.Metric, error) {
	return d.queryMetrics(`SELECT id, name, emoji, is_active, created_at FROM metrics ORDER BY name`)
}

// CreateMetric inserts a metric, auto-assigning an unused emoji when none
// is given.
func (d *DB) CreateMetric(name, emoji string) (*domain.Metric, error) {
	if emoji == "" || emoji == "📊" {
		next, err := d.nextUnusedEmoji(`SELECT emoji FROM metrics`, metricEmojiPool)
		if err != nil {
			return nil, err
		}
		emoji = next
	}
	res, err := d.db.Exec(`INSERT INTO metrics (name, emoji) VALUES (?, ?)`, name, emoji)
	if err != nil {
		return nil, err
	}
	id, _ := res.LastInsertId()
	return d.metricByID(id)
}

// UpdateMetric renames a metric and toggles the active flag.
func (d *DB) UpdateMetric(id int64, name string, isActive bool, emoji string) error {
	if _, err := d.metricByID(id); err != nil {
		return err
	}
	active := 0
	if isActive {
		active = 1
	}
	if emoji != "" {
		_, err := d.db.Exec(
			`UPDATE metrics SET name = ?, is_active = ?, emoji = ? WHERE id = ?`,
			name, active, emoji, id)
		return err
	}
	_, err := d.db.Exec(
		`UPDATE metrics SET name = ?, is_active = ? WHERE id = ?`, name, active, id)
	return err
}

func (d *DB) metricByID(id int64) (*domain.Metric, error) {
	row := d.db.QueryRow(
		`SELECT id, name, emoji, is_active, created_at FROM metrics WHERE id = ?`, id)
	m, err := scanMetric(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrMetricNotFound
	}
	return m, err
}

func (d *DB) queryMetrics(query string) ([]domain.Metric, error) {
	rows, err := d.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var metrics []domain.Metric
	for rows.Next() {
		m, err := scanMetric(rows)
		if err != nil {
			return nil, err
		}
		metrics = append(metrics, *m)
	}
	return metrics, rows.Err()
}

func scanMetric(s scanner) (*domain.Metric, error) {
	var m domain.Metric
	var active int
	if err := s.Scan(&m.ID, &m.Name, &m.Emoji, &active, &m.CreatedAt); err != nil {
		return nil, err
	}
	m.IsActive = active == 1
	return &m, nil
}
