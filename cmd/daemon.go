package cmd

import (
	"context"
	"fmt"
	"io"
	stdlog "log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/grovetools/focus/cli"
	"github.com/grovetools/focus/internal/daemon/pidfile"
	"github.com/grovetools/focus/internal/daemon/server"
	"github.com/grovetools/focus/internal/daemon/store"
	"github.com/grovetools/focus/internal/daemon/translator"
	"github.com/grovetools/focus/logging"
	"github.com/grovetools/focus/pkg/logging/logutil"
	"github.com/grovetools/focus/pkg/paths"
	"github.com/hpcloud/tail"
	"github.com/spf13/cobra"
)

// daemonComponent names the daemon's logger and log files.
const daemonComponent = "focusd"

// NewDaemonCmd returns the daemon command with subcommands.
func NewDaemonCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "daemon",
		Short: "Run and control the focus daemon",
		Long:  "The daemon holds the network block rules and enforces them while a focus session is active.",
	}

	cmd.AddCommand(newDaemonStartCmd())
	cmd.AddCommand(newDaemonStopCmd())
	cmd.AddCommand(newDaemonStatusCmd())
	cmd.AddCommand(newDaemonLogsCmd())

	return cmd
}

func newDaemonStartCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the daemon",
		Long:  "Start the focus daemon in foreground mode.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cli.LoadConfig(cmd)
			if err != nil {
				return err
			}
			logger := logging.NewLogger(daemonComponent)
			pidPath := paths.PidFilePath()
			sockPath := cfg.Daemon.Socket

			// 1. Acquire Lock
			if err := pidfile.Acquire(pidPath); err != nil {
				return err
			}
			defer func() {
				if err := pidfile.Release(pidPath); err != nil {
					logger.Errorf("Failed to release pidfile: %v", err)
				}
			}()

			// 2. Rule table and translator. Rules start empty on every run.
			rules := store.New()
			tr := translator.New(rules, logger)

			// 3. Server
			srv := server.New(logger, tr, rules)

			// 4. Handle Signals
			stop := make(chan os.Signal, 1)
			signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
			defer signal.Stop(stop)

			go func() {
				<-stop
				logger.Info("Received stop signal")

				shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer shutdownCancel()

				if err := srv.Shutdown(shutdownCtx); err != nil {
					logger.Errorf("Server shutdown error: %v", err)
				}
			}()

			// 5. Start Server (Blocking)
			logger.WithField("pid", os.Getpid()).Info("Starting daemon")
			printRulesHint(cmd.OutOrStdout())
			if err := srv.ListenAndServe(sockPath); err != nil {
				return fmt.Errorf("server error: %w", err)
			}
			_ = os.Remove(sockPath)
			return nil
		},
	}
}

// printRulesHint tells the user that a fresh daemon blocks nothing until a
// client sends the current focus state again.
func printRulesHint(w io.Writer) {
	fmt.Fprintln(w, "No sites are blocked until the focus state is re-sent.")
	fmt.Fprintln(w, "Run 'focus watch' or 'focus start <task-id>' to apply blocking rules.")
}

func newDaemonStopCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop the running daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			pidPath := paths.PidFilePath()

			running, pid, err := pidfile.IsRunning(pidPath)
			if err != nil {
				return fmt.Errorf("error checking status: %w", err)
			}

			if !running {
				fmt.Fprintln(cmd.OutOrStdout(), "Daemon is not running")
				return nil
			}

			process, err := os.FindProcess(pid)
			if err != nil {
				return fmt.Errorf("failed to find process %d: %w", pid, err)
			}

			if err := process.Signal(syscall.SIGTERM); err != nil {
				return fmt.Errorf("failed to send stop signal: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Sent SIGTERM to process %d\n", pid)
			return nil
		},
	}
}

func newDaemonStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check daemon status",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cli.LoadConfig(cmd)
			if err != nil {
				return err
			}
			running, pid, err := pidfile.IsRunning(paths.PidFilePath())
			if err != nil {
				return fmt.Errorf("error: %w", err)
			}

			if running {
				fmt.Fprintf(cmd.OutOrStdout(), "Running (PID: %d)\nSocket: %s\n", pid, cfg.Daemon.Socket)
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), "Stopped")
				os.Exit(1) // Return non-zero for stopped state (useful for scripts)
			}
			return nil
		},
	}
}

func newDaemonLogsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show the daemon log",
		Long: `Print the daemon log: the file set under logging.file.path, or the most
recent dated file in the state log directory.

Examples:
  focus daemon logs
  # Keep printing new lines
  focus daemon logs -f`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cli.LoadConfig(cmd)
			if err != nil {
				return err
			}
			path, err := logutil.FindLogFile(cfg, daemonComponent)
			if err != nil {
				return err
			}
			follow, _ := cmd.Flags().GetBool("follow")
			return tailLog(cmd.Context(), cmd.OutOrStdout(), path, follow)
		},
	}
	cmd.Flags().BoolP("follow", "f", false, "Follow log output")
	return cmd
}

// tailLog copies the lines of path to out. With follow it keeps reading
// until ctx is cancelled.
func tailLog(ctx context.Context, out io.Writer, path string, follow bool) error {
	t, err := tail.TailFile(path, tail.Config{
		Follow:    follow,
		ReOpen:    follow,
		MustExist: true,
		Logger:    stdlog.New(io.Discard, "", 0), // Suppress tail library debug output
	})
	if err != nil {
		return err
	}
	defer t.Cleanup()

	for {
		select {
		case line, ok := <-t.Lines:
			if !ok {
				return nil
			}
			if line.Err != nil {
				continue
			}
			fmt.Fprintln(out, line.Text)
		case <-ctx.Done():
			return t.Stop()
		}
	}
}
