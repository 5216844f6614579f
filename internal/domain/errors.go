package domain

import "errors"

// ─── Sentinel Errors ────────────────────────────────────────────────────────
// Domain errors are pure — no infrastructure dependency. The analytics core
// never raises for empty data; these cover storage lookups and admin ops.

var (
	// Season errors
	ErrNoActiveSeason = errors.New("no active season")
	ErrSeasonNotFound = errors.New("season not found")
	ErrSeasonExists   = errors.New("a season for that year already exists")

	// Reference errors
	ErrPersonNotFound = errors.New("person not found")
	ErrMetricNotFound = errors.New("metric not found")
	ErrEntryNotFound  = errors.New("entry not found")
	ErrGoalNotFound   = errors.New("goal not found")

	// PIN errors
	ErrInvalidPIN  = errors.New("invalid PIN")
	ErrPINTooShort = errors.New("PIN must be at least 4 characters")
	ErrPINConflict = errors.New("tracker and admin PINs must differ")

	// Import errors
	ErrImportMode = errors.New(`import mode must be "merge" or "replace"`)
)
