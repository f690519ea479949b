package main

import (
	"fmt"

	"github.com/hempun10/devdaily-sub001/internal"
	"github.com/spf13/cobra"
)

func NewInstallCmd(uc *internal.InstallHookUseCase) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "install",
		Short: "Install the post-commit hook",
		Long:  `Install a post-commit hook in the current repository that captures a light snapshot after every commit.`,
		Args:  cobra.NoArgs,
		RunE:  makeInstallRunner(uc),
	}

	return cmd
}

func makeInstallRunner(uc *internal.InstallHookUseCase) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		out, err := uc.Execute(cmd.Context(), internal.InstallHookInput{})
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Installed post-commit hook at %s\n", out.Path)
		return nil
	}
}
