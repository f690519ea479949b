package main

import (
	"fmt"

	"github.com/hempun10/devdaily-sub001/internal"
	"github.com/spf13/cobra"
)

func NewUninstallCmd(uc *internal.UninstallHookUseCase) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "uninstall",
		Short: "Remove the devdaily post-commit hook",
		Long:  `Remove the post-commit hook from the current repository. Hooks not written by devdaily are left alone.`,
		Args:  cobra.NoArgs,
		RunE:  makeUninstallRunner(uc),
	}

	return cmd
}

func makeUninstallRunner(uc *internal.UninstallHookUseCase) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		out, err := uc.Execute(cmd.Context(), internal.InstallHookInput{})
		if err != nil {
			return err
		}

		if !out.Removed {
			fmt.Fprintln(cmd.OutOrStdout(), "No devdaily hook installed.")
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Removed post-commit hook at %s\n", out.Path)
		return nil
	}
}
