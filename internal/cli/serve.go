package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/recap-crew/recap/internal/daemon"
)

func init() {
	serveCmd.Flags().StringVar(&serveHost, "host", "", "Host to listen on (overrides config)")
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides config)")
	serveCmd.Flags().BoolVar(&serveMetrics, "metrics", false, "Expose Prometheus /metrics (overrides config)")
	rootCmd.AddCommand(serveCmd)
}

var (
	serveHost    string
	servePort    int
	serveMetrics bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the Resolution Recap API server",
	Long:  `Start the HTTP API server. First boot seeds the season, roster, and PINs from the TRACKER_PIN and ADMIN_PIN environment variables.`,
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := daemon.LoadConfig()
	if err != nil {
		return err
	}
	if serveHost != "" {
		cfg.Server.Host = serveHost
	}
	if servePort > 0 {
		cfg.Server.Port = servePort
	}
	if serveMetrics {
		cfg.Telemetry.Prometheus = true
	}

	d, err := daemon.NewWithConfig(cfg)
	if err != nil {
		return err
	}
	return d.Serve(context.Background())
}
