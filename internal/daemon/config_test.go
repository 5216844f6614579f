package daemon

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Server.Host != "127.0.0.1" {
		t.Errorf("Server.Host = %q, want %q", cfg.Server.Host, "127.0.0.1")
	}
	if cfg.Server.Port != 8090 {
		t.Errorf("Server.Port = %d, want %d", cfg.Server.Port, 8090)
	}
	if cfg.Telemetry.Prometheus {
		t.Error("Telemetry.Prometheus should default to off")
	}
}

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	t.Setenv("RECAP_HOME", t.TempDir())

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Server.Port != DefaultConfig().Server.Port {
		t.Errorf("Server.Port = %d, want default", cfg.Server.Port)
	}
}

func TestLoadConfig_ReadsFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("RECAP_HOME", dir)

	content := "[server]\nhost = \"0.0.0.0\"\nport = 9000\n\n[telemetry]\nprometheus = true\n"
	if err := os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Server.Host != "0.0.0.0" || cfg.Server.Port != 9000 {
		t.Errorf("server = %s:%d, want 0.0.0.0:9000", cfg.Server.Host, cfg.Server.Port)
	}
	if !cfg.Telemetry.Prometheus {
		t.Error("Telemetry.Prometheus should be on")
	}
	// Sections absent from the file keep their defaults.
	if cfg.Data.Dir != dir {
		t.Errorf("Data.Dir = %q, want %q", cfg.Data.Dir, dir)
	}
}

func TestSaveConfig_RoundTrip(t *testing.T) {
	t.Setenv("RECAP_HOME", t.TempDir())

	cfg := DefaultConfig()
	cfg.Server.Port = 7777
	if err := SaveConfig(cfg); err != nil {
		t.Fatalf("SaveConfig: %v", err)
	}

	loaded, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if loaded.Server.Port != 7777 {
		t.Errorf("Server.Port = %d, want 7777", loaded.Server.Port)
	}
}
