package main

import (
	"fmt"

	"github.com/hempun10/devdaily-sub001/internal"
	"github.com/spf13/cobra"
)

func NewShowCmd(uc *internal.ShowUseCase) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show [date]",
		Short: "Show a journal record",
		Long:  `Show the stored record for a date (today when omitted) and project.`,
		Args:  cobra.MaximumNArgs(1),
		RunE:  makeShowRunner(uc),
	}

	return cmd
}

func makeShowRunner(uc *internal.ShowUseCase) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		date := ""
		if len(args) > 0 {
			date = args[0]
		}
		project, _ := cmd.Flags().GetString("project")
		asJSON, _ := cmd.Flags().GetBool("json")

		snap, err := uc.Execute(cmd.Context(), internal.ShowInput{
			Date:    date,
			Project: project,
		})
		if err != nil {
			return fmt.Errorf("show: %w", err)
		}

		if asJSON {
			return writeJSON(cmd, snap)
		}

		renderSnapshot(cmd.OutOrStdout(), snap)
		return nil
	}
}
