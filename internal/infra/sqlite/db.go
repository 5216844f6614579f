// Package sqlite provides SQLite-based persistent storage for Resolution
// Recap. Uses WAL mode for concurrent reads and crash-safe writes.
package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver (no CGO required)
)

// DB wraps a SQLite connection with WAL mode and migrations.
type DB struct {
	db *sql.DB
}

// Open creates or opens the SQLite database at dir/recap.db.
// Enables WAL mode, foreign keys, and 5-second busy timeout.
func Open(dir string) (*DB, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	dbPath := filepath.Join(dir, "recap.db")
	dsn := dbPath + "?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	// Connection pool settings for SQLite
	db.SetMaxOpenConns(1) // SQLite is single-writer
	db.SetMaxIdleConns(1)

	d := &DB{db: db}
	if err := d.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return d, nil
}

// Close cleanly shuts down the database.
func (d *DB) Close() error {
	return d.db.Close()
}

// Ping checks database connectivity.
func (d *DB) Ping() error {
	return d.db.Ping()
}

// TableCounts returns the row count of every user table, for the admin
// debug view.
func (d *DB) TableCounts() (map[string]int, error) {
	rows, err := d.db.Query(
		`SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		tables = append(tables, name)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	counts := make(map[string]int, len(tables))
	for _, table := range tables {
		var n int
		if err := d.db.QueryRow(`SELECT COUNT(*) FROM "` + table + `"`).Scan(&n); err != nil {
			return nil, fmt.Errorf("count %s: %w", table, err)
		}
		counts[table] = n
	}
	return counts, nil
}

// migrate runs idempotent schema migrations.
func (d *DB) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS seasons (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			year       INTEGER NOT NULL UNIQUE,
			name       TEXT NOT NULL,
			is_active  INTEGER NOT NULL DEFAULT 0,
			created_at TEXT NOT NULL DEFAULT (datetime('now'))
		)`,

		`CREATE TABLE IF NOT EXISTS people (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			name       TEXT NOT NULL,
			emoji      TEXT NOT NULL DEFAULT '👤',
			is_active  INTEGER NOT NULL DEFAULT 1,
			created_at TEXT NOT NULL DEFAULT (datetime('now'))
		)`,

		`CREATE TABLE IF NOT EXISTS metrics (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			name       TEXT NOT NULL,
			emoji      TEXT NOT NULL DEFAULT '📊',
			is_active  INTEGER NOT NULL DEFAULT 1,
			created_at TEXT NOT NULL DEFAULT (datetime('now'))
		)`,

		`CREATE TABLE IF NOT EXISTS entries (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			season_id  INTEGER NOT NULL,
			person_id  INTEGER NOT NULL,
			metric_id  INTEGER NOT NULL,
			entry_date TEXT NOT NULL,
			notes      TEXT,
			tags       TEXT,
			deleted_at TEXT DEFAULT NULL,
			created_at TEXT NOT NULL DEFAULT (datetime('now')),
			FOREIGN KEY (season_id) REFERENCES seasons(id),
			FOREIGN KEY (person_id) REFERENCES people(id),
			FOREIGN KEY (metric_id) REFERENCES metrics(id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_entries_season ON entries(season_id)`,
		`CREATE INDEX IF NOT EXISTS idx_entries_person ON entries(person_id)`,
		`CREATE INDEX IF NOT EXISTS idx_entries_metric ON entries(metric_id)`,
		`CREATE INDEX IF NOT EXISTS idx_entries_date ON entries(entry_date)`,
		`CREATE INDEX IF NOT EXISTS idx_entries_deleted ON entries(deleted_at)`,

		// Append-only audit trail. Rows are never updated or deleted.
		`CREATE TABLE IF NOT EXISTS entry_audit (
			id           INTEGER PRIMARY KEY AUTOINCREMENT,
			entry_id     INTEGER NOT NULL,
			action       TEXT NOT NULL CHECK (action IN ('create', 'update', 'delete', 'undelete')),
			old_values   TEXT,
			new_values   TEXT,
			performed_by TEXT NOT NULL CHECK (performed_by IN ('tracker', 'admin')),
			performed_at TEXT NOT NULL DEFAULT (datetime('now')),
			FOREIGN KEY (entry_id) REFERENCES entries(id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_entry_audit_entry ON entry_audit(entry_id)`,

		// Settings KV, holds the PINs among other things.
		`CREATE TABLE IF NOT EXISTS settings (
			key        TEXT PRIMARY KEY,
			value      TEXT NOT NULL,
			updated_at TEXT NOT NULL DEFAULT (datetime('now'))
		)`,

		`CREATE TABLE IF NOT EXISTS goals (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			season_id  INTEGER NOT NULL,
			person_id  INTEGER NOT NULL,
			metric_id  INTEGER NOT NULL,
			target     INTEGER NOT NULL,
			created_at TEXT NOT NULL DEFAULT (datetime('now')),
			updated_at TEXT NOT NULL DEFAULT (datetime('now')),
			FOREIGN KEY (season_id) REFERENCES seasons(id),
			FOREIGN KEY (person_id) REFERENCES people(id),
			FOREIGN KEY (metric_id) REFERENCES metrics(id),
			UNIQUE(season_id, person_id, metric_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_goals_season ON goals(season_id)`,

		`CREATE TABLE IF NOT EXISTS achievements (
			id              INTEGER PRIMARY KEY AUTOINCREMENT,
			season_id       INTEGER NOT NULL,
			person_id       INTEGER NOT NULL,
			achievement_key TEXT NOT NULL,
			unlocked_at     TEXT NOT NULL DEFAULT (datetime('now')),
			FOREIGN KEY (season_id) REFERENCES seasons(id),
			FOREIGN KEY (person_id) REFERENCES people(id),
			UNIQUE(season_id, person_id, achievement_key)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_achievements_person ON achievements(person_id)`,

		`CREATE TABLE IF NOT EXISTS countries_visited (
			id           INTEGER PRIMARY KEY AUTOINCREMENT,
			season_id    INTEGER NOT NULL,
			person_id    INTEGER NOT NULL,
			country_code TEXT NOT NULL,
			country_name TEXT NOT NULL,
			visited_at   TEXT NOT NULL DEFAULT (datetime('now')),
			FOREIGN KEY (season_id) REFERENCES seasons(id),
			FOREIGN KEY (person_id) REFERENCES people(id),
			UNIQUE(season_id, person_id, country_code)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_countries_visited_person ON countries_visited(person_id)`,
		`CREATE INDEX IF NOT EXISTS idx_countries_visited_season ON countries_visited(season_id)`,
	}

	for _, m := range migrations {
		if _, err := d.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\nSQL: %s", err, m)
		}
	}
	return nil
}

// SeedDefaults populates an empty database: one active season, a starter
// roster, two metrics, and PINs (only if provided and not already set).
// Idempotent — existing rows are left alone.
func (d *DB) SeedDefaults(year int, trackerPIN, adminPIN string) error {
	var seasons int
	if err := d.db.QueryRow(`SELECT COUNT(*) FROM seasons`).Scan(&seasons); err != nil {
		return fmt.Errorf("count seasons: %w", err)
	}
	if seasons == 0 {
		if _, err := d.db.Exec(
			`INSERT INTO seasons (year, name, is_active) VALUES (?, ?, 1)`,
			year, fmt.Sprintf("Season %d", year),
		); err != nil {
			return fmt.Errorf("seed season: %w", err)
		}
	}

	var people int
	if err := d.db.QueryRow(`SELECT COUNT(*) FROM people`).Scan(&people); err != nil {
		return fmt.Errorf("count people: %w", err)
	}
	if people == 0 {
		friends := [][2]string{
			{"Cas", "🎯"}, {"Joris", "🦁"}, {"Eva", "🌸"},
			{"Rik", "🎸"}, {"Liz", "✨"}, {"Bastiaan", "🚀"},
		}
		for _, f := range friends {
			if _, err := d.db.Exec(`INSERT INTO people (name, emoji) VALUES (?, ?)`, f[0], f[1]); err != nil {
				return fmt.Errorf("seed person %s: %w", f[0], err)
			}
		}
	}

	var metrics int
	if err := d.db.QueryRow(`SELECT COUNT(*) FROM metrics`).Scan(&metrics); err != nil {
		return fmt.Errorf("count metrics: %w", err)
	}
	if metrics == 0 {
		seed := [][2]string{{"Sporting", "🏃"}, {"Cakes Eaten", "🎂"}}
		for _, m := range seed {
			if _, err := d.db.Exec(`INSERT INTO metrics (name, emoji) VALUES (?, ?)`, m[0], m[1]); err != nil {
				return fmt.Errorf("seed metric %s: %w", m[0], err)
			}
		}
	}

	for key, pin := range map[string]string{"tracker_pin": trackerPIN, "admin_pin": adminPIN} {
		if pin == "" {
			continue
		}
		existing, err := d.GetSetting(key)
		if err != nil {
			return err
		}
		if existing == "" {
			if err := d.SetSetting(key, pin); err != nil {
				return err
			}
		}
	}

	return nil
}

// ─── Helpers ────────────────────────────────────────────────────────────────

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// nullStr converts an empty string to NULL for optional text columns.
func nullStr(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// strOrEmpty unwraps an optional text column.
func strOrEmpty(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}
