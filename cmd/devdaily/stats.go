package main

import (
	"fmt"

	"github.com/hempun10/devdaily-sub001/internal"
	"github.com/spf13/cobra"
)

func NewStatsCmd(uc *internal.StatsUseCase) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show journal statistics",
		Args:  cobra.NoArgs,
		RunE:  makeStatsRunner(uc),
	}

	return cmd
}

func makeStatsRunner(uc *internal.StatsUseCase) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")

		stats, err := uc.Execute(cmd.Context())
		if err != nil {
			return fmt.Errorf("stats: %w", err)
		}

		if asJSON {
			return writeJSON(cmd, stats)
		}

		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "snapshots: %d\n", stats.TotalSnapshots)
		fmt.Fprintf(w, "days:      %d\n", stats.DistinctDates)
		fmt.Fprintf(w, "projects:  %d\n", stats.DistinctProjects)
		if stats.OldestDate != "" {
			fmt.Fprintf(w, "range:     %s to %s\n", stats.OldestDate, stats.NewestDate)
		}
		fmt.Fprintf(w, "size:      %.1f KiB\n", float64(stats.TotalSizeBytes)/1024)
		return nil
	}
}
