package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/recap-crew/recap/internal/domain"
)

// ─── Season Repository ──────────────────────────────────────────────────────

// ActiveSeason returns the single active season.
func (d *DB) ActiveSeason() (*domain.Season, error) {
	row := d.db.QueryRow(
		`SELECT id, year, name, is_active, created_at FROM seasons WHERE is_active = 1`)
	s, err := scanSeason(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNoActiveSeason
	}
	return s, err
}

// AllSeasons returns every season, newest year first.
func (d *DB) AllSeasons() ([]domain.Season, error) {
	rows, err := d.db.Query(
		`SELECT id, year, name, is_active, created_at FROM seasons ORDER BY year DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var seasons []domain.Season
	for rows.Next() {
		s, err := scanSeason(rows)
		if err != nil {
			return nil, err
		}
		seasons = append(seasons, *s)
	}
	return seasons, rows.Err()
}

// CreateSeason inserts a season for a year. Years are unique.
func (d *DB) CreateSeason(year int, name string) (*domain.Season, error) {
	res, err := d.db.Exec(`INSERT INTO seasons (year, name) VALUES (?, ?)`, year, name)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE") {
			return nil, domain.ErrSeasonExists
		}
		return nil, fmt.Errorf("insert season: %w", err)
	}
	id, _ := res.LastInsertId()
	return d.seasonByID(id)
}

// SetActiveSeason flips the active flag to the given season.
func (d *DB) SetActiveSeason(id int64) error {
	if _, err := d.seasonByID(id); err != nil {
		return err
	}
	if _, err := d.db.Exec(`UPDATE seasons SET is_active = 0`); err != nil {
		return err
	}
	_, err := d.db.Exec(`UPDATE seasons SET is_active = 1 WHERE id = ?`, id)
	return err
}

func (d *DB) seasonByID(id int64) (*domain.Season, error) {
	row := d.db.QueryRow(
		`SELECT id, year, name, is_active, created_at FROM seasons WHERE id = ?`, id)
	s, err := scanSeason(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrSeasonNotFound
	}
	return s, err
}

func scanSeason(s scanner) (*domain.Season, error) {
	var season domain.Season
	var active int
	if err := s.Scan(&season.ID, &season.Year, &season.Name, &active, &season.CreatedAt); err != nil {
		return nil, err
	}
	season.IsActive = active == 1
	return &season, nil
}
