package daemon

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/recap-crew/recap/internal/api"
	"github.com/recap-crew/recap/internal/health"
	"github.com/recap-crew/recap/internal/infra/sqlite"
)

// Daemon is the Resolution Recap runtime. It wires storage, the API
// server, and the health checker together.
type Daemon struct {
	Config Config
	DB     *sqlite.DB
	Server *api.Server
	Health *health.Checker

	cancel context.CancelFunc
}

// New loads configuration and initializes a Daemon.
func New() (*Daemon, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return NewWithConfig(cfg)
}

// NewWithConfig initializes a Daemon with the given configuration. First
// boot seeds the season, the friend roster, and PINs taken from the
// TRACKER_PIN and ADMIN_PIN environment variables.
func NewWithConfig(cfg Config) (*Daemon, error) {
	dataDir := cfg.Data.Dir
	if dataDir == "" {
		dataDir = recapHome()
	}
	db, err := sqlite.Open(dataDir)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	year := cfg.Season.Year
	if year == 0 {
		year = time.Now().Year()
	}
	if err := db.SeedDefaults(year, os.Getenv("TRACKER_PIN"), os.Getenv("ADMIN_PIN")); err != nil {
		db.Close()
		return nil, fmt.Errorf("seed defaults: %w", err)
	}

	srv := api.NewServer(db, nil)
	if cfg.Telemetry.Prometheus {
		srv.EnableMetrics()
	}

	return &Daemon{
		Config: cfg,
		DB:     db,
		Server: srv,
		Health: health.NewChecker(db, dataDir),
	}, nil
}

// Serve starts the HTTP server and blocks until shutdown.
func (d *Daemon) Serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	d.cancel = cancel

	go d.Health.Run(ctx)

	addr := fmt.Sprintf("%s:%d", d.Config.Server.Host, d.Config.Server.Port)
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      d.Server.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  2 * time.Minute,
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case <-sigCh:
		case <-ctx.Done():
		}

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		_ = httpServer.Shutdown(shutdownCtx)
		_ = d.DB.Close()
	}()

	fmt.Printf("Resolution Recap serving on http://%s\n", addr)
	if d.Config.Telemetry.Prometheus {
		fmt.Printf("  Metrics: http://%s/metrics\n", addr)
	}

	if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Close shuts down all daemon resources.
func (d *Daemon) Close() {
	if d.cancel != nil {
		d.cancel()
	}
	if d.DB != nil {
		_ = d.DB.Close()
	}
}
