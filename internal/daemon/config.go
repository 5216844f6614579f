// Package daemon manages the Resolution Recap server lifecycle and
// configuration.
package daemon

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config holds all server configuration.
type Config struct {
	Server    ServerConfig    `toml:"server"`
	Data      DataConfig      `toml:"data"`
	Season    SeasonConfig    `toml:"season"`
	Telemetry TelemetryConfig `toml:"telemetry"`
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// DataConfig controls where the SQLite database lives.
type DataConfig struct {
	Dir string `toml:"dir"`
}

// SeasonConfig seeds the initial season on first boot.
type SeasonConfig struct {
	Year int `toml:"year"`
}

// TelemetryConfig controls the Prometheus endpoint.
type TelemetryConfig struct {
	Prometheus bool `toml:"prometheus"`
}

// DefaultConfig returns the configuration used when no config file exists.
func DefaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Host: "127.0.0.1",
			Port: 8090,
		},
		Data: DataConfig{
			Dir: recapHome(),
		},
		Season: SeasonConfig{
			Year: 0, // 0 means the current year at seed time
		},
		Telemetry: TelemetryConfig{
			Prometheus: false,
		},
	}
}

// LoadConfig reads config from $RECAP_HOME/config.toml, falling back to
// defaults when the file is missing.
func LoadConfig() (Config, error) {
	cfg := DefaultConfig()
	path := filepath.Join(recapHome(), "config.toml")

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// SaveConfig writes the config to $RECAP_HOME/config.toml.
func SaveConfig(cfg Config) error {
	path := filepath.Join(recapHome(), "config.toml")
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}

func recapHome() string {
	if env := os.Getenv("RECAP_HOME"); env != "" {
		return env
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".recap")
}

// RecapHome is exported for use by other packages.
func RecapHome() string {
	return recapHome()
}
