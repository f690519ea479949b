package main

import (
	"fmt"
	"strings"

	"github.com/hempun10/devdaily-sub001/internal"
	"github.com/spf13/cobra"
)

func NewListCmd(uc *internal.ListUseCase) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List recent journal records",
		Long:    `List journal records in a date window, newest last. Defaults to the past week across all projects.`,
		Args:    cobra.NoArgs,
		RunE:    makeListRunner(uc),
	}

	cmd.Flags().IntP("days", "n", 0, "Window size in days (default 7)")
	cmd.Flags().String("from", "", "Window start (YYYY-MM-DD)")
	cmd.Flags().String("to", "", "Window end (YYYY-MM-DD)")

	return cmd
}

func makeListRunner(uc *internal.ListUseCase) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		project, _ := cmd.Flags().GetString("project")
		asJSON, _ := cmd.Flags().GetBool("json")
		days, _ := cmd.Flags().GetInt("days")
		from, _ := cmd.Flags().GetString("from")
		to, _ := cmd.Flags().GetString("to")

		out, err := uc.Execute(cmd.Context(), internal.ListInput{
			Project: project,
			From:    from,
			To:      to,
			Days:    days,
		})
		if err != nil {
			return fmt.Errorf("list: %w", err)
		}

		if asJSON {
			return writeJSON(cmd, out)
		}

		printWarnings(cmd, out.Warnings)
		for _, s := range out.Snapshots {
			fmt.Fprintln(cmd.OutOrStdout(), summaryLine(s))
		}
		return nil
	}
}

func summaryLine(s *internal.WorkSnapshot) string {
	line := fmt.Sprintf("%s  %-20s %2d commits", s.Date, s.ProjectID, len(s.TodayCommits))
	if n := len(s.PullRequests); n > 0 {
		line += fmt.Sprintf(", %d PRs", n)
	}
	if s.Notes != "" {
		line += ", notes"
	}
	if len(s.Tags) > 0 {
		line += "  [" + strings.Join(s.Tags, " ") + "]"
	}
	return line
}
