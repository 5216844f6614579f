package daemon

import (
	"testing"
)

func TestNewWithConfig_SeedsFirstBoot(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("TRACKER_PIN", "1234")
	t.Setenv("ADMIN_PIN", "9999")

	cfg := DefaultConfig()
	cfg.Data.Dir = dir
	cfg.Season.Year = 2025

	d, err := NewWithConfig(cfg)
	if err != nil {
		t.Fatalf("NewWithConfig: %v", err)
	}
	defer d.Close()

	season, err := d.DB.ActiveSeason()
	if err != nil {
		t.Fatalf("ActiveSeason: %v", err)
	}
	if season.Year != 2025 {
		t.Errorf("season year = %d, want 2025", season.Year)
	}
	role, err := d.DB.ValidatePIN("1234")
	if err != nil {
		t.Fatalf("ValidatePIN: %v", err)
	}
	if string(role) != "tracker" {
		t.Errorf("role = %s, want tracker", role)
	}
	if d.Server == nil || d.Health == nil {
		t.Error("daemon should wire the API server and health checker")
	}
}

func TestNewWithConfig_Reopen(t *testing.T) {
	dir := t.TempDir()
	cfg := DefaultConfig()
	cfg.Data.Dir = dir
	cfg.Season.Year = 2025

	d, err := NewWithConfig(cfg)
	if err != nil {
		t.Fatalf("NewWithConfig: %v", err)
	}
	d.Close()

	// Second boot reuses the existing database without reseeding.
	d2, err := NewWithConfig(cfg)
	if err != nil {
		t.Fatalf("NewWithConfig (reopen): %v", err)
	}
	defer d2.Close()

	seasons, err := d2.DB.AllSeasons()
	if err != nil {
		t.Fatalf("AllSeasons: %v", err)
	}
	if len(seasons) != 1 {
		t.Errorf("seasons = %d, want 1", len(seasons))
	}
}
