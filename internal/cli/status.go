package cli

import (
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/recap-crew/recap/internal/app/analytics"
)

func init() {
	rootCmd.AddCommand(statusCmd)
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the active season's leaderboard",
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	season, err := db.ActiveSeason()
	if err != nil {
		return err
	}
	stats, err := db.SeasonStats(season.ID)
	if err != nil {
		return err
	}

	totals := make(map[string]int)
	var names []string
	for _, row := range stats {
		if _, seen := totals[row.PersonName]; !seen {
			names = append(names, row.PersonName)
		}
		totals[row.PersonName] += row.Count
	}
	// Stable sort keeps the original name order on ties.
	sort.SliceStable(names, func(i, j int) bool { return totals[names[i]] > totals[names[j]] })

	scores := make([]int, len(names))
	for i, name := range names {
		scores[i] = totals[name]
	}
	ranks := analytics.Ranks(scores)

	fmt.Printf("%s\n\n", season.Name)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "RANK\tNAME\tENTRIES")
	for i, name := range names {
		fmt.Fprintf(w, "%s\t%s\t%d\n", analytics.RankDisplay(ranks[i]), name, totals[name])
	}
	return w.Flush()
}
