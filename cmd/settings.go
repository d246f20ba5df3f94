package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/grovetools/focus/cli"
	"github.com/spf13/cobra"
)

// NewSettingsCmd returns the settings command with subcommands.
func NewSettingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change blocked sites and theme",
	}

	cmd.AddCommand(newSettingsShowCmd())
	cmd.AddCommand(newSettingsSitesCmd())
	cmd.AddCommand(newSettingsThemeCmd())

	return cmd
}

func newSettingsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the current settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(cmd)
			if err != nil {
				return err
			}
			defer e.Close()

			s := e.settings.Load()
			if cli.GetOptions(cmd).JSONOutput {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(s)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Theme: %s\n", s.Theme)
			fmt.Fprintln(cmd.OutOrStdout(), "Blocked sites:")
			if len(s.BlockedSites) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "  (none)")
			}
			for _, site := range s.BlockedSites {
				fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", site)
			}
			return nil
		},
	}
}

func newSettingsSitesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sites [site...]",
		Short: "Replace the blocked-site list",
		Long: `Replace the blocked-site list. Sites may be given as separate arguments or
comma-separated. Entries are trimmed and lowercased; blanks are dropped.
The list is snapshotted when a focus session starts, so a running session
keeps blocking the sites it started with.

Examples:
  focus settings sites facebook.com youtube.com
  focus settings sites "reddit.com, news.ycombinator.com"
  # Clear the list
  focus settings sites`,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(cmd)
			if err != nil {
				return err
			}
			defer e.Close()

			var sites []string
			for _, arg := range args {
				sites = append(sites, strings.Split(arg, ",")...)
			}

			s := e.settings.Load()
			s.BlockedSites = sites
			saved, err := e.settings.Save(s)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Blocking %d site(s)\n", len(saved.BlockedSites))
			return nil
		},
	}
}

func newSettingsThemeCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "theme <light|dark|auto>",
		Short:     "Set the color theme",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"light", "dark", "auto"},
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(cmd)
			if err != nil {
				return err
			}
			defer e.Close()

			s := e.settings.Load()
			s.Theme = args[0]
			if _, err := e.settings.Save(s); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Theme set to %s\n", args[0])
			return nil
		},
	}
}
