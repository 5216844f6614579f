package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/recap-crew/recap/internal/daemon"
	"github.com/recap-crew/recap/internal/infra/sqlite"
)

func init() {
	seedCmd.Flags().IntVar(&seedYear, "year", 0, "Season year (defaults to the current year)")
	rootCmd.AddCommand(seedCmd)
}

var seedYear int

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with the default season, roster, and metrics",
	Long:  `Create the initial season, the friend roster, and the starter metrics. PINs come from the TRACKER_PIN and ADMIN_PIN environment variables. Safe to run repeatedly; existing data is never overwritten.`,
	RunE:  runSeed,
}

func runSeed(cmd *cobra.Command, args []string) error {
	cfg, err := daemon.LoadConfig()
	if err != nil {
		return err
	}
	dataDir := cfg.Data.Dir
	if dataDir == "" {
		dataDir = daemon.RecapHome()
	}

	db, err := sqlite.Open(dataDir)
	if err != nil {
		return err
	}
	defer db.Close()

	year := seedYear
	if year == 0 {
		year = cfg.Season.Year
	}
	if year == 0 {
		year = time.Now().Year()
	}

	if err := db.SeedDefaults(year, os.Getenv("TRACKER_PIN"), os.Getenv("ADMIN_PIN")); err != nil {
		return err
	}

	season, err := db.ActiveSeason()
	if err != nil {
		return err
	}
	people, err := db.ActivePeople()
	if err != nil {
		return err
	}
	fmt.Printf("Seeded %s with %d people\n", season.Name, len(people))
	return nil
}
