package main

import (
	"fmt"

	"github.com/hempun10/devdaily-sub001/internal"
	"github.com/spf13/cobra"
)

func NewPruneCmd(uc *internal.PruneUseCase) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete old journal records",
		Long:  `Delete every record older than the retention window. Records exactly at the boundary are kept.`,
		Args:  cobra.NoArgs,
		RunE:  makePruneRunner(uc),
	}

	cmd.Flags().Int("max-age", 0, "Retention window in days (0 uses the configured retention)")

	return cmd
}

func makePruneRunner(uc *internal.PruneUseCase) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")
		maxAge, _ := cmd.Flags().GetInt("max-age")

		out, err := uc.Execute(cmd.Context(), internal.PruneInput{MaxAgeDays: maxAge})
		if err != nil {
			return fmt.Errorf("prune: %w", err)
		}

		if asJSON {
			return writeJSON(cmd, out)
		}

		if out.Removed == 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "Nothing older than %d days.\n", out.MaxAgeDays)
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Removed %d snapshots older than %d days.\n", out.Removed, out.MaxAgeDays)
		return nil
	}
}
