package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/hempun10/devdaily-sub001/internal"
	"github.com/spf13/cobra"
)

func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printWarnings(cmd *cobra.Command, warnings []string) {
	for _, w := range warnings {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", w)
	}
}

func renderSnapshot(w io.Writer, s *internal.WorkSnapshot) {
	fmt.Fprintf(w, "%s  %s\n", s.Date, s.ProjectID)

	if s.CurrentBranch != "" {
		fmt.Fprintf(w, "  branch: %s", s.CurrentBranch)
		if n := len(s.ActiveBranches); n > 1 {
			fmt.Fprintf(w, " (%d active)", n)
		}
		fmt.Fprintln(w)
	}

	if len(s.TodayCommits) > 0 {
		fmt.Fprintf(w, "  commits: %d\n", len(s.TodayCommits))
		for _, c := range s.TodayCommits {
			fmt.Fprintf(w, "    %s %s\n", c.ShortHash, c.Message)
		}
	}

	for _, pr := range s.PullRequests {
		fmt.Fprintf(w, "  pr: #%d %s (%s)\n", pr.Number, pr.Title, pr.State)
	}
	for _, tk := range s.Tickets {
		line := tk.ID
		if tk.Title != "" {
			line += "  " + tk.Title
		}
		if tk.Status != "" {
			line += " [" + tk.Status + "]"
		}
		fmt.Fprintf(w, "  ticket: %s\n", line)
	}

	if s.DiffStats != nil {
		fmt.Fprintf(w, "  diff: %d files, +%d -%d\n",
			s.DiffStats.FilesChanged, s.DiffStats.Insertions, s.DiffStats.Deletions)
	}
	if len(s.TopChangedFiles) > 0 {
		parts := make([]string, 0, len(s.TopChangedFiles))
		for _, f := range s.TopChangedFiles {
			parts = append(parts, fmt.Sprintf("%s (%d)", f.Path, f.Frequency))
		}
		fmt.Fprintf(w, "  files: %s\n", strings.Join(parts, ", "))
	}

	if s.Notes != "" {
		fmt.Fprintf(w, "  notes: %s\n", strings.ReplaceAll(s.Notes, "\n", "\n         "))
	}
	if len(s.Tags) > 0 {
		fmt.Fprintf(w, "  tags: %s\n", strings.Join(s.Tags, ", "))
	}
}
