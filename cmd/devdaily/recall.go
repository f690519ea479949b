package main

import (
	"fmt"
	"strings"

	"github.com/hempun10/devdaily-sub001/internal"
	"github.com/spf13/cobra"
)

func NewRecallCmd(uc *internal.RecallUseCase, historyUC *internal.FileHistoryUseCase) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recall [query...]",
		Short: "Search the journal",
		Long:  `Rank past journal records against a text query, tags or a file path. Answers "when did I last work on X?".`,
		Args:  cobra.ArbitraryArgs,
		RunE:  makeRecallRunner(uc, historyUC),
	}

	cmd.Flags().StringSliceP("tag", "t", nil, "Require a tag (repeatable)")
	cmd.Flags().String("file", "", "Find days a file was touched instead of text search")
	cmd.Flags().IntP("days", "n", 0, "Search window in days (default 90)")
	cmd.Flags().Int("limit", 0, "Maximum results")
	cmd.Flags().String("from", "", "Window start (YYYY-MM-DD)")
	cmd.Flags().String("to", "", "Window end (YYYY-MM-DD)")

	return cmd
}

func makeRecallRunner(uc *internal.RecallUseCase, historyUC *internal.FileHistoryUseCase) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		project, _ := cmd.Flags().GetString("project")
		asJSON, _ := cmd.Flags().GetBool("json")
		tags, _ := cmd.Flags().GetStringSlice("tag")
		file, _ := cmd.Flags().GetString("file")
		days, _ := cmd.Flags().GetInt("days")
		limit, _ := cmd.Flags().GetInt("limit")
		from, _ := cmd.Flags().GetString("from")
		to, _ := cmd.Flags().GetString("to")

		if file != "" {
			return runFileHistory(cmd, historyUC, file, project, days, asJSON)
		}

		out, err := uc.Execute(cmd.Context(), internal.RecallInput{
			Query:   strings.Join(args, " "),
			Project: project,
			From:    from,
			To:      to,
			Tags:    tags,
			Days:    days,
			Limit:   limit,
		})
		if err != nil {
			return fmt.Errorf("recall: %w", err)
		}

		if asJSON {
			return writeJSON(cmd, out)
		}

		if out.Help != nil {
			renderRecallHelp(cmd, out.Help)
			return nil
		}

		printWarnings(cmd, out.Warnings)
		if len(out.Results) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No matches.")
			return nil
		}
		for _, r := range out.Results {
			fmt.Fprintf(cmd.OutOrStdout(), "%s  %s  (score %d)\n",
				r.Snapshot.Date, r.Snapshot.ProjectID, r.Score)
			for _, reason := range r.MatchReasons {
				fmt.Fprintf(cmd.OutOrStdout(), "    %s\n", reason)
			}
		}
		return nil
	}
}

func runFileHistory(cmd *cobra.Command, uc *internal.FileHistoryUseCase, file, project string, days int, asJSON bool) error {
	out, err := uc.Execute(cmd.Context(), internal.FileHistoryInput{
		File:    file,
		Project: project,
		Days:    days,
	})
	if err != nil {
		return fmt.Errorf("file history: %w", err)
	}

	if asJSON {
		return writeJSON(cmd, out)
	}

	printWarnings(cmd, out.Warnings)
	if len(out.Entries) == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "No recorded work on %s.\n", file)
		return nil
	}
	for _, e := range out.Entries {
		fmt.Fprintf(cmd.OutOrStdout(), "%s  %s\n", e.Date, e.ProjectID)
		for _, c := range e.Commits {
			fmt.Fprintf(cmd.OutOrStdout(), "    %s %s\n", c.ShortHash, c.Message)
		}
	}
	return nil
}

func renderRecallHelp(cmd *cobra.Command, help *internal.RecallHelp) {
	fmt.Fprintln(cmd.OutOrStdout(), help.Usage)
	if help.Stats == nil || help.Stats.TotalSnapshots == 0 {
		return
	}
	fmt.Fprintf(cmd.OutOrStdout(), "\nJournal: %d snapshots across %d projects (%s to %s)\n",
		help.Stats.TotalSnapshots, help.Stats.DistinctProjects,
		help.Stats.OldestDate, help.Stats.NewestDate)
}
