package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/recap-crew/recap/internal/daemon"
	"github.com/recap-crew/recap/internal/infra/sqlite"
)

func init() {
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "Write to a file instead of stdout")
	importCmd.Flags().StringVar(&importMode, "mode", "merge", `Import mode: "merge" or "replace"`)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
}

var (
	exportOut  string
	importMode string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the full database as JSON",
	Long:  `Dump every season, person, metric, entry, goal, achievement, and country visit as JSON. PIN values are never exported.`,
	RunE:  runExport,
}

func runExport(cmd *cobra.Command, args []string) error {
	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	data, err := db.ExportAll()
	if err != nil {
		return err
	}

	out := os.Stdout
	if exportOut != "" {
		f, err := os.Create(exportOut)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		return err
	}
	if exportOut != "" {
		fmt.Printf("Exported to %s\n", exportOut)
	}
	return nil
}

var importCmd = &cobra.Command{
	Use:   "import FILE",
	Short: "Import a JSON export into the database",
	Args:  cobra.ExactArgs(1),
	RunE:  runImport,
}

func runImport(cmd *cobra.Command, args []string) error {
	raw, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	var data sqlite.ExportData
	if err := json.Unmarshal(raw, &data); err != nil {
		return fmt.Errorf("parse export file: %w", err)
	}

	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	summary, err := db.ImportAll(&data, importMode)
	if err != nil {
		return err
	}

	for table, n := range summary.Imported {
		fmt.Printf("  %-18s %d\n", table, n)
	}
	if len(summary.Errors) > 0 {
		fmt.Printf("Skipped %d rows:\n", len(summary.Errors))
		for _, e := range summary.Errors {
			fmt.Println("  " + e)
		}
	}
	return nil
}

// openDB resolves the data directory from config and opens the database.
func openDB() (*sqlite.DB, error) {
	cfg, err := daemon.LoadConfig()
	if err != nil {
		return nil, err
	}
	dataDir := cfg.Data.Dir
	if dataDir == "" {
		dataDir = daemon.RecapHome()
	}
	return sqlite.Open(dataDir)
}
