package main

import (
	"fmt"

	"github.com/hempun10/devdaily-sub001/internal"
	"github.com/spf13/cobra"
)

func NewHookCmd(uc *internal.HookSnapshotUseCase) *cobra.Command {
	hookCmd := &cobra.Command{
		Use:    "hook",
		Short:  "Git hook entry points (internal)",
		Hidden: true,
	}

	runCmd := &cobra.Command{
		Use:   "run [hook-type]",
		Short: "Capture a light snapshot from a git hook",
		Args:  cobra.ExactArgs(1),
		RunE:  makeHookRunRunner(uc),
	}

	hookCmd.AddCommand(runCmd)
	return hookCmd
}

func makeHookRunRunner(uc *internal.HookSnapshotUseCase) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		hookType := args[0]
		if hookType != internal.PostCommitHook {
			return fmt.Errorf("unsupported hook type: %s", hookType)
		}

		// A failed capture must never break the commit that triggered it.
		if err := uc.Execute(cmd.Context(), internal.HookInput{HookType: hookType}); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "devdaily hook: %v\n", err)
		}
		return nil
	}
}
