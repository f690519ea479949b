package main

import (
	"fmt"

	"github.com/hempun10/devdaily-sub001/internal"
	"github.com/spf13/cobra"
)

func NewSnapCmd(uc *internal.SnapUseCase) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snap",
		Short: "Capture a snapshot of today's work",
		Long:  `Capture the current repository state (commits, branches, diff, PRs, tickets) into today's journal record. Repeated snaps on the same day merge.`,
		Args:  cobra.NoArgs,
		RunE:  makeSnapRunner(uc),
	}

	cmd.Flags().String("date", "", "Journal date (YYYY-MM-DD, defaults to today)")
	cmd.Flags().Bool("light", false, "Fast local-only capture, skips branch scan, diff stats and remote sources")
	cmd.Flags().Bool("no-prs", false, "Skip the pull request lookup")
	cmd.Flags().Bool("no-tickets", false, "Skip the issue tracker lookup")
	cmd.Flags().StringP("note", "m", "", "Free-form note to attach")
	cmd.Flags().StringSliceP("tag", "t", nil, "Tag to attach (repeatable)")

	return cmd
}

func makeSnapRunner(uc *internal.SnapUseCase) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		project, _ := cmd.Flags().GetString("project")
		asJSON, _ := cmd.Flags().GetBool("json")
		date, _ := cmd.Flags().GetString("date")
		light, _ := cmd.Flags().GetBool("light")
		noPRs, _ := cmd.Flags().GetBool("no-prs")
		noTickets, _ := cmd.Flags().GetBool("no-tickets")
		note, _ := cmd.Flags().GetString("note")
		tags, _ := cmd.Flags().GetStringSlice("tag")

		out, err := uc.Execute(cmd.Context(), internal.SnapInput{
			Date:        date,
			Project:     project,
			Light:       light,
			SkipPRs:     noPRs,
			SkipTickets: noTickets,
			Notes:       note,
			Tags:        tags,
		})
		if err != nil {
			return fmt.Errorf("snap: %w", err)
		}

		if asJSON {
			return writeJSON(cmd, out)
		}

		printWarnings(cmd, out.Warnings)

		headline := "Captured"
		if out.Merged {
			headline = "Updated"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s for %s (%dms)\n",
			headline, out.Snapshot.Date, out.Snapshot.ProjectID, out.DurationMs)
		renderSnapshot(cmd.OutOrStdout(), out.Snapshot)
		return nil
	}
}
