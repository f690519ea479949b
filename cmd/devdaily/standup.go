package main

import (
	"fmt"

	"github.com/hempun10/devdaily-sub001/internal"
	"github.com/spf13/cobra"
)

func NewStandupCmd(uc *internal.StandupUseCase) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "standup",
		Short: "Build a standup digest from the journal",
		Long:  `Summarize the last business day and today across all projects, ready to paste into standup.`,
		Args:  cobra.NoArgs,
		RunE:  makeStandupRunner(uc),
	}

	cmd.Flags().Bool("post", false, "Post the digest to the configured Slack webhook")

	return cmd
}

func makeStandupRunner(uc *internal.StandupUseCase) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")
		post, _ := cmd.Flags().GetBool("post")

		out, err := uc.Execute(cmd.Context(), internal.StandupInput{Post: post})
		if err != nil {
			return fmt.Errorf("standup: %w", err)
		}

		if asJSON {
			return writeJSON(cmd, out)
		}

		printWarnings(cmd, out.Digest.Warnings)
		fmt.Fprintln(cmd.OutOrStdout(), out.Digest.Render())
		if out.Posted {
			fmt.Fprintln(cmd.OutOrStdout(), "Posted to Slack.")
		}
		return nil
	}
}
