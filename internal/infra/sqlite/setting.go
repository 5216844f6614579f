package sqlite

import (
	"database/sql"
	"errors"

	"github.com/recap-crew/recap/internal/domain"
)

// ─── Settings / PINs ────────────────────────────────────────────────────────

// GetSetting returns a settings value, or "" when the key is unset.
func (d *DB) GetSetting(key string) (string, error) {
	var value string
	err := d.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return value, err
}

// SetSetting upserts a settings value.
func (d *DB) SetSetting(key, value string) error {
	_, err := d.db.Exec(
		`INSERT INTO settings (key, value, updated_at)
		 VALUES (?, ?, datetime('now'))
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = datetime('now')`,
		key, value)
	return err
}

// ValidatePIN maps a shared PIN to its role. Unknown PINs (including the
// empty string against unset PINs) return ErrInvalidPIN.
func (d *DB) ValidatePIN(pin string) (domain.Role, error) {
	if pin == "" {
		return "", domain.ErrInvalidPIN
	}
	trackerPIN, err := d.GetSetting("tracker_pin")
	if err != nil {
		return "", err
	}
	adminPIN, err := d.GetSetting("admin_pin")
	if err != nil {
		return "", err
	}
	switch pin {
	case trackerPIN:
		return domain.RoleTracker, nil
	case adminPIN:
		return domain.RoleAdmin, nil
	}
	return "", domain.ErrInvalidPIN
}

// ChangeTrackerPIN updates the tracker PIN. Minimum 4 characters, and it
// may not collide with the admin PIN.
func (d *DB) ChangeTrackerPIN(newPIN string) error {
	if len(newPIN) < 4 {
		return domain.ErrPINTooShort
	}
	adminPIN, err := d.GetSetting("admin_pin")
	if err != nil {
		return err
	}
	if newPIN == adminPIN {
		return domain.ErrPINConflict
	}
	return d.SetSetting("tracker_pin", newPIN)
}

// ChangeAdminPIN updates the admin PIN under the same rules.
func (d *DB) ChangeAdminPIN(newPIN string) error {
	if len(newPIN) < 4 {
		return domain.ErrPINTooShort
	}
	trackerPIN, err := d.GetSetting("tracker_pin")
	if err != nil {
		return err
	}
	if newPIN == trackerPIN {
		return domain.ErrPINConflict
	}
	return d.SetSetting("admin_pin", newPIN)
}
