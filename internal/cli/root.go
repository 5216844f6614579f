// Package cli implements the Resolution Recap command-line interface
// using Cobra.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "recap",
	Short: "Resolution Recap — track habits with friends, reveal the year",
	Long: `Resolution Recap is a shared habit tracker for a group of friends.
Everyone logs daily activity entries through the year; the server keeps
streaks, achievements, XP, and leaderboards, and builds the year-end
recap with awards and trivia.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command. Called from main.go.
func Execute(version string) {
	rootCmd.Version = version

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
