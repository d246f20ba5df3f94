package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/grovetools/focus/pkg/daemon"
	"github.com/grovetools/focus/pkg/focus"
	"github.com/grovetools/focus/pkg/models"
	"github.com/grovetools/focus/pkg/tasks"
	"github.com/grovetools/focus/state"
	"github.com/grovetools/focus/tui"
	"github.com/grovetools/focus/tui/focusview"
	"github.com/grovetools/focus/tui/theme"
	"github.com/spf13/cobra"
)

// newManager builds a session manager over e that notifies the daemon on
// the configured socket. Close the notifier after the manager.
func newManager(e *env, view focus.View) (*focus.Manager, *daemon.WSNotifier) {
	notifier := daemon.NewWSNotifier(e.socket(), e.logger)
	mgr := focus.NewManager(focus.Options{
		Store:        e.store,
		Tasks:        e.tasks,
		Settings:     e.settings,
		Notifier:     notifier,
		View:         view,
		Logger:       e.logger,
		TickInterval: e.cfg.TickDuration(),
	})
	return mgr, notifier
}

// warnOffline tells the user that blocking is not enforced right now.
func warnOffline(cmd *cobra.Command, e *env) {
	if !daemon.Reachable(e.socket()) {
		fmt.Fprintln(cmd.ErrOrStderr(), "Warning: the focus daemon is not running; sites are not blocked. Start it with 'focus daemon start'.")
	}
}

// NewStartCmd returns the start command.
func NewStartCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "start <task-id>",
		Short: "Start a focus session on a task",
		Long: `Start a focus session on a task. The blocked-site list is snapshotted, the
session is saved and the daemon is told to block those sites. An unknown
task ID does nothing.

Examples:
  focus start 3f2a...
  # Keep the elapsed time on screen until Ctrl-C
  focus start 3f2a... --follow`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(cmd)
			if err != nil {
				return err
			}
			defer e.Close()

			follow, _ := cmd.Flags().GetBool("follow")
			mgr, notifier := newManager(e, focus.NewWriterView(cmd.OutOrStdout(), follow))
			defer notifier.Close()
			defer mgr.Close()

			warnOffline(cmd, e)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := mgr.StartFocus(ctx, args[0]); err != nil {
				return err
			}
			if !mgr.Session().Active {
				fmt.Fprintf(cmd.OutOrStdout(), "No task with ID %s; nothing started\n", args[0])
				return nil
			}
			if follow {
				<-ctx.Done()
				fmt.Fprintln(cmd.OutOrStdout())
			}
			return nil
		},
	}
	cmd.Flags().BoolP("follow", "f", false, "Keep showing elapsed time until interrupted")
	return cmd
}

// NewEndCmd returns the end command.
func NewEndCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "end",
		Short: "End the focus session",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(cmd)
			if err != nil {
				return err
			}
			defer e.Close()

			mgr, notifier := newManager(e, focus.NewWriterView(cmd.OutOrStdout(), false))
			defer notifier.Close()
			defer mgr.Close()

			return mgr.EndFocus(cmd.Context())
		},
	}
}

// NewWatchCmd returns the interactive focus view.
func NewWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Open the interactive focus view",
		Long: `Open the interactive focus view. A saved session is resumed with its
saved start time. Sessions started or ended by other focus commands show
up here as they happen.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			tui.InitializeTUI()

			e, err := openEnv(cmd)
			if err != nil {
				return err
			}
			defer e.Close()

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			var mgr *focus.Manager
			model := focusview.New(focusview.Config{
				Theme:      theme.ForSettings(e.settings.Load()),
				LoadTasks:  func() []models.Task { return loadActive(e) },
				StartFocus: func(id string) error { return mgr.StartFocus(ctx, id) },
				EndFocus:   func() error { return mgr.EndFocus(ctx) },
				Restore: func() error {
					_, err := mgr.RestoreOnLoad(ctx)
					return err
				},
			})
			p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

			var notifier *daemon.WSNotifier
			mgr, notifier = newManager(e, focusview.NewProgramView(p))
			defer notifier.Close()
			defer mgr.Close()

			if e.cfg.Storage.Backend == state.BackendFile {
				w, err := state.NewWatcher(e.cfg.Storage.Path, 0, func() {
					if err := mgr.Reload(ctx); err != nil {
						e.logger.WithError(err).Debug("Reload after store change failed")
					}
				}, e.logger)
				if err != nil {
					e.logger.WithError(err).Warn("Store watcher unavailable; changes from other commands will not show")
				} else {
					go w.Run(ctx)
				}
			}

			_, err = p.Run()
			return err
		},
	}
}

// loadActive returns the tasks that can be focused on.
func loadActive(e *env) []models.Task {
	list, err := e.tasks.List(tasks.FilterActive)
	if err != nil {
		e.logger.WithError(err).Warn("Failed to load tasks")
		return nil
	}
	return list
}
