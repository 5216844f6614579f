package sqlite

import "github.com/recap-crew/recap/internal/domain"

// ─── Achievements Repository ────────────────────────────────────────────────
// Together with PersonEntries, ActiveMetrics, and PersonGoals this
// satisfies the analytics achievement engine's store interface.

// UnlockedKeys returns the set of achievement keys a person has earned.
func (d *DB) UnlockedKeys(seasonID, personID int64) (map[string]bool, error) {
	rows, err := d.db.Query(
		`SELECT achievement_key FROM achievements WHERE season_id = ? AND person_id = ?`,
		seasonID, personID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	keys := make(map[string]bool)
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		keys[k] = true
	}
	return keys, rows.Err()
}

// Unlock persists an earned key. INSERT OR IGNORE makes repeat unlocks a
// no-op, which the rule engine relies on.
func (d *DB) Unlock(seasonID, personID int64, key string) error {
	_, err := d.db.Exec(
		`INSERT OR IGNORE INTO achievements (season_id, person_id, achievement_key)
		 VALUES (?, ?, ?)`,
		seasonID, personID, key)
	return err
}

// PersonAchievements returns a person's unlocks, newest first.
func (d *DB) PersonAchievements(seasonID, personID int64) ([]domain.UnlockedAchievement, error) {
	rows, err := d.db.Query(
		`SELECT achievement_key, unlocked_at
		 FROM achievements
		 WHERE season_id = ? AND person_id = ?
		 ORDER BY unlocked_at DESC`,
		seasonID, personID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var unlocked []domain.UnlockedAchievement
	for rows.Next() {
		var u domain.UnlockedAchievement
		if err := rows.Scan(&u.Key, &u.UnlockedAt); err != nil {
			return nil, err
		}
		unlocked = append(unlocked, u)
	}
	return unlocked, rows.Err()
}
