package main

import (
	"fmt"

	"github.com/hempun10/devdaily-sub001/internal"
	"github.com/spf13/cobra"
)

func NewProjectsCmd(uc *internal.ProjectsUseCase) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "projects",
		Short: "List journaled projects",
		Args:  cobra.NoArgs,
		RunE:  makeProjectsRunner(uc),
	}

	return cmd
}

func makeProjectsRunner(uc *internal.ProjectsUseCase) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")

		projects, err := uc.Execute(cmd.Context())
		if err != nil {
			return fmt.Errorf("projects: %w", err)
		}

		if asJSON {
			return writeJSON(cmd, projects)
		}

		for _, p := range projects {
			fmt.Fprintf(cmd.OutOrStdout(), "%-24s %3d snapshots, last %s\n",
				p.ProjectID, p.SnapshotCount, p.LastSnapshotDate)
		}
		return nil
	}
}
