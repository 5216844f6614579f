package health

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/recap-crew/recap/internal/infra/sqlite"
)

func newTestDB(t *testing.T) (*sqlite.DB, string) {
	t.Helper()
	dir := t.TempDir()
	db, err := sqlite.Open(dir)
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, dir
}

// ─── Checker Tests ──────────────────────────────────────────────────────────

func TestChecker_RunAllHealthy(t *testing.T) {
	db, dir := newTestDB(t)
	if err := db.SeedDefaults(2025, "", ""); err != nil {
		t.Fatalf("SeedDefaults: %v", err)
	}

	c := NewChecker(db, dir)
	c.runAll(context.Background())

	statuses := c.Statuses()
	if len(statuses) != 3 {
		t.Fatalf("Statuses() = %d, want 3", len(statuses))
	}
	for _, s := range statuses {
		if !s.Healthy {
			t.Errorf("check %q should be healthy, got error: %s", s.Name, s.Error)
		}
	}
	if !c.IsHealthy() {
		t.Error("IsHealthy() should be true when all checks pass")
	}
}

func TestChecker_IsHealthy_BeforeRun(t *testing.T) {
	db, dir := newTestDB(t)
	c := NewChecker(db, dir)

	// No statuses yet, vacuously healthy.
	if !c.IsHealthy() {
		t.Error("IsHealthy() should be true before first run")
	}
}

func TestChecker_NoActiveSeason(t *testing.T) {
	db, dir := newTestDB(t)

	c := NewChecker(db, dir)
	c.runAll(context.Background())

	for _, s := range c.Statuses() {
		if s.Name == "active_season" {
			if s.Healthy {
				t.Error("active_season should fail on an unseeded database")
			}
			if s.Error == "" {
				t.Error("error message should be populated")
			}
		}
	}
	if c.IsHealthy() {
		t.Error("IsHealthy() should be false with a failing check")
	}
}

func TestChecker_DataDirIsFile(t *testing.T) {
	db, _ := newTestDB(t)
	if err := db.SeedDefaults(2025, "", ""); err != nil {
		t.Fatalf("SeedDefaults: %v", err)
	}

	notADir := filepath.Join(t.TempDir(), "data")
	os.WriteFile(notADir, []byte("not a dir"), 0644)

	c := NewChecker(db, notADir)
	c.runAll(context.Background())

	for _, s := range c.Statuses() {
		if s.Name == "data_dir" && s.Healthy {
			t.Error("data_dir should fail when the path is a file")
		}
	}
}

func TestChecker_CustomCheck(t *testing.T) {
	c := &Checker{
		checks: []Check{
			{Name: "always_pass", CheckFn: func(ctx context.Context) error { return nil }},
			{Name: "always_fail", CheckFn: func(ctx context.Context) error { return os.ErrPermission }},
		},
	}

	c.runAll(context.Background())

	statuses := c.Statuses()
	if len(statuses) != 2 {
		t.Fatalf("statuses = %d, want 2", len(statuses))
	}
	if !statuses[0].Healthy {
		t.Error("always_pass check should be healthy")
	}
	if statuses[1].Healthy || statuses[1].Error == "" {
		t.Error("always_fail check should be unhealthy with an error message")
	}
}

func TestChecker_StatusesCopy(t *testing.T) {
	db, dir := newTestDB(t)
	c := NewChecker(db, dir)
	c.runAll(context.Background())

	s1 := c.Statuses()
	s2 := c.Statuses()

	if len(s1) > 0 {
		s1[0].Healthy = false
		s1[0].Error = "mutated"
		if s2[0].Error == "mutated" {
			t.Error("Statuses() should return a copy, not a reference")
		}
	}
}
