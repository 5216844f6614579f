package sqlite

import (
	"database/sql"
	"errors"

	"github.com/recap-crew/recap/internal/domain"
)

// ─── People Repository ──────────────────────────────────────────────────────

// personEmojiPool is the rotation for auto-assigned person glyphs.
var personEmojiPool = []string{
	"🎯", "🦁", "🌸", "🎸", "✨", "🚀", "🌟", "🎨", "🦋", "🌈",
	"🔥", "💎", "🎭", "🎪", "🎬", "🎤", "🎵", "🏆", "⚡", "🌺",
	"🦊", "🐼", "🦄", "🐉", "🦅", "🐬", "🦎", "🦜", "🐙", "🦩",
	"🍀", "🌻", "🌴", "🍄", "🌵", "🍁", "🌊", "❄️", "🌙", "☀️",
	"🎲", "🎰", "🎳", "🎱", "🏀", "⚽", "🎾", "🏐", "🎿", "🏄",
}

// ActivePeople returns active participants ordered by name.
func (d *DB) ActivePeople() ([]domain.Person, error) {
	return d.queryPeople(`SELECT id, name, emoji, is_active, created_at FROM people WHERE is_active = 1 ORDER BY name`)
}

// AllPeople returns every participant ordered by name.
func (d *DB) AllPeople() ([]domain.Person, error) {
	return d.queryPeople(`SELECT id, name, emoji, is_active, created_at FROM people ORDER BY name`)
}

// CreatePerson inserts a participant. An empty or default emoji gets the
// next unused glyph from the pool so everyone stays distinguishable.
func (d *DB) CreatePerson(name, emoji string) (*domain.Person, error) {
	if emoji == "" || emoji == "👤" {
		next, err := d.nextUnusedEmoji(`SELECT emoji FROM people`, personEmojiPool)
		if err != nil {
			return nil, err
		}
		emoji = next
	}
	res, err := d.db.Exec(`INSERT INTO people (name, emoji) VALUES (?, ?)`, name, emoji)
	if err != nil {
		return nil, err
	}
	id, _ := res.LastInsertId()
	return d.personByID(id)
}

// UpdatePerson renames a participant and toggles the active flag. A
// non-empty emoji replaces the current one.
func (d *DB) UpdatePerson(id int64, name string, isActive bool, emoji string) error {
	if _, err := d.personByID(id); err != nil {
		return err
	}
	active := 0
	if isActive {
		active = 1
	}
	if emoji != "" {
		_, err := d.db.Exec(
			`UPDATE people SET name = ?, is_active = ?, emoji = ? WHERE id = ?`,
			name, active, emoji, id)
		return err
	}
	_, err := d.db.Exec(
		`UPDATE people SET name = ?, is_active = ? WHERE id = ?`, name, active, id)
	return err
}

// Person fetches one participant by ID.
func (d *DB) Person(id int64) (*domain.Person, error) {
	return d.personByID(id)
}

func (d *DB) personByID(id int64) (*domain.Person, error) {
	row := d.db.QueryRow(
		`SELECT id, name, emoji, is_active, created_at FROM people WHERE id = ?`, id)
	p, err := scanPerson(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrPersonNotFound
	}
	return p, err
}

func (d *DB) queryPeople(query string) ([]domain.Person, error) {
	rows, err := d.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var people []domain.Person
	for rows.Next() {
		p, err := scanPerson(rows)
		if err != nil {
			return nil, err
		}
		people = append(people, *p)
	}
	return people, rows.Err()
}

// nextUnusedEmoji walks a pool and returns the first glyph not already
// taken by the given table. Falls back to the last pool entry when the
// whole pool is exhausted.
func (d *DB) nextUnusedEmoji(usedQuery string, pool []string) (string, error) {
	rows, err := d.db.Query(usedQuery)
	if err != nil {
		return "", err
	}
	defer rows.Close()

	used := make(map[string]bool)
	for rows.Next() {
		var e string
		if err := rows.Scan(&e); err != nil {
			return "", err
		}
		used[e] = true
	}
	if err := rows.Err(); err != nil {
		return "", err
	}
	for _, e := range pool {
		if !used[e] {
			return e, nil
		}
	}
	return pool[len(pool)-1], nil
}

func scanPerson(s scanner) (*domain.Person, error) {
	var p domain.Person
	var active int
	if err := s.Scan(&p.ID, &p.Name, &p.Emoji, &active, &p.CreatedAt); err != nil {
		return nil, err
	}
	p.IsActive = active == 1
	return &p, nil
}
