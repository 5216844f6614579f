package sqlite

import (
	"database/sql"
	"sort"
	"strings"

	"github.com/recap-crew/recap/internal/domain"
)

// ─── Countries Repository ───────────────────────────────────────────────────

// CountriesForSeason returns every country visit in a season, grouped by
// person name then country.
func (d *DB) CountriesForSeason(seasonID int64) ([]domain.CountryVisit, error) {
	rows, err := d.db.Query(
		`SELECT cv.id, cv.season_id, cv.person_id, cv.country_code, cv.country_name, cv.visited_at
		 FROM countries_visited cv
		 JOIN people p ON cv.person_id = p.id
		 WHERE cv.season_id = ?
		 ORDER BY p.name, cv.country_name`, seasonID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectCountryVisits(rows)
}

// CountriesForPerson returns one person's visits ordered by country name.
func (d *DB) CountriesForPerson(seasonID, personID int64) ([]domain.CountryVisit, error) {
	rows, err := d.db.Query(
		`SELECT id, season_id, person_id, country_code, country_name, visited_at
		 FROM countries_visited
		 WHERE season_id = ? AND person_id = ?
		 ORDER BY country_name`, seasonID, personID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectCountryVisits(rows)
}

// AddCountryVisit records a visit. Codes are normalized to upper case and
// re-adding the same country is a no-op.
func (d *DB) AddCountryVisit(seasonID, personID int64, code, name string) (*domain.CountryVisit, error) {
	code = strings.ToUpper(code)
	if _, err := d.db.Exec(
		`INSERT OR IGNORE INTO countries_visited (season_id, person_id, country_code, country_name)
		 VALUES (?, ?, ?, ?)`,
		seasonID, personID, code, name); err != nil {
		return nil, err
	}
	row := d.db.QueryRow(
		`SELECT id, season_id, person_id, country_code, country_name, visited_at
		 FROM countries_visited
		 WHERE season_id = ? AND person_id = ? AND country_code = ?`,
		seasonID, personID, code)
	var v domain.CountryVisit
	if err := row.Scan(&v.ID, &v.SeasonID, &v.PersonID, &v.CountryCode, &v.CountryName, &v.VisitedAt); err != nil {
		return nil, err
	}
	return &v, nil
}

// RemoveCountryVisit deletes a visit record.
func (d *DB) RemoveCountryVisit(seasonID, personID int64, code string) error {
	_, err := d.db.Exec(
		`DELETE FROM countries_visited WHERE season_id = ? AND person_id = ? AND country_code = ?`,
		seasonID, personID, strings.ToUpper(code))
	return err
}

// CountriesStats aggregates visits per person, most-traveled first. The
// recap generator depends on that descending order.
func (d *DB) CountriesStats(seasonID int64) ([]domain.CountryStats, error) {
	rows, err := d.db.Query(
		`SELECT cv.person_id, p.name, p.emoji, cv.country_name
		 FROM countries_visited cv
		 JOIN people p ON cv.person_id = p.id
		 WHERE cv.season_id = ?
		 ORDER BY p.name, cv.country_name`, seasonID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var order []int64
	grouped := make(map[int64]*domain.CountryStats)
	for rows.Next() {
		var personID int64
		var name, emoji, country string
		if err := rows.Scan(&personID, &name, &emoji, &country); err != nil {
			return nil, err
		}
		cs, ok := grouped[personID]
		if !ok {
			cs = &domain.CountryStats{PersonID: personID, PersonName: name, PersonEmoji: emoji}
			grouped[personID] = cs
			order = append(order, personID)
		}
		cs.Countries = append(cs.Countries, country)
		cs.CountryCount++
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	stats := make([]domain.CountryStats, 0, len(order))
	for _, id := range order {
		stats = append(stats, *grouped[id])
	}
	sort.SliceStable(stats, func(i, j int) bool { return stats[i].CountryCount > stats[j].CountryCount })
	return stats, nil
}

func collectCountryVisits(rows *sql.Rows) ([]domain.CountryVisit, error) {
	var visits []domain.CountryVisit
	for rows.Next() {
		var v domain.CountryVisit
		if err := rows.Scan(&v.ID, &v.SeasonID, &v.PersonID, &v.CountryCode, &v.CountryName, &v.VisitedAt); err != nil {
			return nil, err
		}
		visits = append(visits, v)
	}
	return visits, rows.Err()
}
