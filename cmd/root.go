// Package cmd implements the focus command line.
package cmd

import (
	"github.com/grovetools/focus/cli"
	"github.com/spf13/cobra"
)

// NewRootCmd assembles the focus command tree.
func NewRootCmd() *cobra.Command {
	rootCmd := cli.NewStandardCommand(
		"focus",
		"Task-bound focus sessions with site blocking",
	)

	rootCmd.AddCommand(NewTaskCmd())
	rootCmd.AddCommand(NewSettingsCmd())
	rootCmd.AddCommand(NewStartCmd())
	rootCmd.AddCommand(NewEndCmd())
	rootCmd.AddCommand(NewWatchCmd())
	rootCmd.AddCommand(NewStatusCmd())
	rootCmd.AddCommand(NewCheckCmd())
	rootCmd.AddCommand(NewDaemonCmd())
	rootCmd.AddCommand(NewConfigCmd())
	rootCmd.AddCommand(NewVersionCmd())

	cli.ApplyStyledHelpRecursive(rootCmd)
	return rootCmd
}
