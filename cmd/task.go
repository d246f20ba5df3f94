package cmd

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/grovetools/focus/cli"
	"github.com/grovetools/focus/logging"
	"github.com/grovetools/focus/pkg/models"
	"github.com/grovetools/focus/pkg/tasks"
	"github.com/grovetools/focus/tui/theme"
	"github.com/spf13/cobra"
)

// NewTaskCmd returns the task command with subcommands.
func NewTaskCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "task",
		Short: "Manage the task list",
		Long: `Add, list, complete and remove tasks. Focus sessions are started on a task by ID.

Examples:
  focus task add "Write report" --due 2026-10-20 --tag Work --priority red
  focus task list --filter active
  focus task done 3f2a...`,
	}

	cmd.AddCommand(newTaskAddCmd())
	cmd.AddCommand(newTaskListCmd())
	cmd.AddCommand(newTaskDoneCmd())
	cmd.AddCommand(newTaskRmCmd())
	cmd.AddCommand(newTaskClearCmd())

	return cmd
}

func newTaskAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <text>",
		Short: "Add a task",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(cmd)
			if err != nil {
				return err
			}
			defer e.Close()

			due, _ := cmd.Flags().GetString("due")
			tag, _ := cmd.Flags().GetString("tag")
			priority, _ := cmd.Flags().GetString("priority")

			task, err := e.tasks.Add(strings.Join(args, " "), due, tag, priority)
			if err != nil {
				return err
			}
			e.logger.WithField("task_id", task.ID).Debug("Task added")

			if cli.GetOptions(cmd).JSONOutput {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(task)
			}
			pretty := logging.NewPrettyLogger().WithWriter(cmd.OutOrStdout())
			pretty.Success("Task added")
			pretty.Field("id", task.ID)
			return nil
		},
	}
	cmd.Flags().String("due", "", "Due date (YYYY-MM-DD)")
	cmd.Flags().String("tag", models.DefaultTaskTag, "Tag: Personal, Work or Misc")
	cmd.Flags().String("priority", models.DefaultTaskPriority, "Priority: red, yellow or green")
	return cmd
}

func newTaskListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(cmd)
			if err != nil {
				return err
			}
			defer e.Close()

			filter, _ := cmd.Flags().GetString("filter")
			list, err := e.tasks.List(tasks.Filter(filter))
			if err != nil {
				return err
			}

			if cli.GetOptions(cmd).JSONOutput {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(list)
			}
			if len(list) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No tasks")
				return nil
			}

			t := theme.ForSettings(e.settings.Load())
			now := time.Now()
			for _, task := range list {
				check := "[ ]"
				text := task.Text
				if task.Done {
					check = "[x]"
					text = t.Done.Render(text)
				}
				line := fmt.Sprintf("%s %s  %s", check, t.Muted.Render(task.ID), text)
				if style, ok := t.Priority[task.Priority]; ok {
					line += " " + style.Render("●")
				}
				if task.Tag != "" {
					line += " " + t.Muted.Render("#"+task.Tag)
				}
				if due := tasks.FormatDueDate(task.DueDate, now); due != "" {
					line += " " + t.Muted.Render(due)
				}
				fmt.Fprintln(cmd.OutOrStdout(), line)
			}
			return nil
		},
	}
	cmd.Flags().String("filter", string(tasks.FilterAll), "Filter: all, active or completed")
	return cmd
}

func newTaskDoneCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "done <task-id>",
		Short: "Toggle a task's done flag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(cmd)
			if err != nil {
				return err
			}
			defer e.Close()

			task, err := e.tasks.Toggle(args[0])
			if err != nil {
				return err
			}
			state := "not done"
			if task.Done {
				state = "done"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Marked %q as %s\n", task.Text, state)
			return nil
		},
	}
}

func newTaskRmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <task-id>",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(cmd)
			if err != nil {
				return err
			}
			defer e.Close()

			if err := e.tasks.Delete(args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Task deleted")
			return nil
		},
	}
}

func newTaskClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove completed tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(cmd)
			if err != nil {
				return err
			}
			defer e.Close()

			n, err := e.tasks.ClearCompleted()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d completed task(s)\n", n)
			return nil
		},
	}
}
