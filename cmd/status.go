package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/grovetools/focus/cli"
	"github.com/grovetools/focus/pkg/daemon"
	"github.com/spf13/cobra"
)

// NewStatusCmd returns the status command. An unreachable daemon reports
// focus mode as off.
func NewStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Report whether focus mode is on",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cli.LoadConfig(cmd)
			if err != nil {
				return err
			}

			client := daemon.NewAt(cfg.Daemon.Socket)
			defer client.Close()

			status, err := client.GetFocusState(cmd.Context())
			if err != nil {
				cli.GetLogger(cmd).WithError(err).Debug("Status query failed")
				status.Active = false
			}

			if cli.GetOptions(cmd).JSONOutput {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(status)
			}
			if status.Active {
				fmt.Fprintln(cmd.OutOrStdout(), "Focus mode is on")
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), "Focus mode is off")
			}
			return nil
		},
	}
}

// NewCheckCmd returns the check command.
func NewCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check <url>",
		Short: "Check whether the daemon would block a URL",
		Long: `Ask the running daemon whether a top-level navigation to a URL would be
blocked by the installed rules. A URL without a scheme is treated as https.

Examples:
  focus check https://www.youtube.com/watch
  focus check news.ycombinator.com
  # Show every installed rule
  focus check --rules`,
		Args: cobra.RangeArgs(0, 1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cli.LoadConfig(cmd)
			if err != nil {
				return err
			}
			client, err := daemon.MustConnect(cfg.Daemon.Socket)
			if err != nil {
				return err
			}
			defer client.Close()

			out := cmd.OutOrStdout()
			jsonOutput := cli.GetOptions(cmd).JSONOutput

			if listRules, _ := cmd.Flags().GetBool("rules"); listRules {
				snap, err := client.Rules(cmd.Context())
				if err != nil {
					return err
				}
				if jsonOutput {
					return json.NewEncoder(out).Encode(snap)
				}
				fmt.Fprintf(out, "Focus active: %t (%d rule(s))\n", snap.Active, len(snap.Rules))
				for _, r := range snap.Rules {
					fmt.Fprintf(out, "  %3d  %s\n", r.ID, r.Condition.URLFilter)
				}
				return nil
			}

			if len(args) == 0 {
				return cmd.Usage()
			}
			d, err := client.Check(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if jsonOutput {
				return json.NewEncoder(out).Encode(d)
			}
			if d.Blocked {
				fmt.Fprintf(out, "Blocked: %s (rule %d)\n", d.URL, d.RuleID)
			} else {
				fmt.Fprintf(out, "Allowed: %s\n", d.URL)
			}
			return nil
		},
	}
	cmd.Flags().Bool("rules", false, "List the installed rules instead")
	return cmd
}
