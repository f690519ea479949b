package main

import (
	"fmt"

	"github.com/hempun10/devdaily-sub001/internal"
	"github.com/spf13/cobra"
)

func NewRootCmd(version string, uc *internal.UseCases) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "devdaily",
		Short:         "A work journal that keeps itself",
		Long:          `Captures daily snapshots of your repositories (commits, branches, PRs, tickets) and answers "when did I last work on X?".`,
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
		Run: func(cmd *cobra.Command, _ []string) {
			_ = cmd.Help()
		},
	}

	addPersistentFlags(rootCmd)
	setHelpWithExternals(rootCmd)

	if uc != nil {
		addSubcommands(rootCmd, uc)
	}

	return rootCmd
}

func addPersistentFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringP("project", "p", "", "Project ID (defaults to the current repository)")
	cmd.PersistentFlags().Bool("json", false, "Output in JSON format")
}

func addSubcommands(root *cobra.Command, uc *internal.UseCases) {
	root.AddCommand(
		NewSnapCmd(uc.Snap),
		NewShowCmd(uc.Show),
		NewListCmd(uc.List),
		NewRecallCmd(uc.Recall, uc.FileHistory),
		NewProjectsCmd(uc.Projects),
		NewStatsCmd(uc.Stats),
		NewPruneCmd(uc.Prune),
		NewStandupCmd(uc.Standup),
		NewWatchCmd(uc.Snap),
		NewHookCmd(uc.Hook),
		NewInstallCmd(uc.InstallHook),
		NewUninstallCmd(uc.UninstallHook),
	)
}

func setHelpWithExternals(cmd *cobra.Command) {
	defaultHelp := cmd.HelpFunc()

	cmd.SetHelpFunc(func(c *cobra.Command, args []string) {
		defaultHelp(c, args)
		printExternalCommands(c)
	})
}

func printExternalCommands(cmd *cobra.Command) {
	externals := listExternalCommands()
	if len(externals) == 0 {
		return
	}

	fmt.Fprintln(cmd.OutOrStdout(), "\nExternal commands (devdaily-*):")
	for _, name := range externals {
		fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", name)
	}
}
