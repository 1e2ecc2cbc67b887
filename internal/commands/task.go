package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"lexify/internal/core"
	"lexify/internal/state"
)

func newTaskCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "task",
		Short: "Manage tasks",
	}
	cmd.AddCommand(
		newTaskAddCommand(app),
		newTaskListCommand(app),
		newTaskDoneCommand(app),
		newTaskRemoveCommand(app),
	)
	return cmd
}

func newTaskAddCommand(app *App) *cobra.Command {
	var description, date string

	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Add a task to a day (today by default)",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			day, err := app.Backend.Calendar.Parse(date)
			if err != nil {
				return err
			}
			model := state.NewDayModel(app.deps(), day)
			err = await(func(done func(error)) error {
				return model.AddTask(ctx, strings.Join(args, " "), description, done)
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Task added for %s\n", model.Range().Key())
			return nil
		},
	}

	cmd.Flags().StringVarP(&description, "desc", "d", "", "task description")
	cmd.Flags().StringVar(&date, "date", "", "day of the task (YYYY-MM-DD [HH:MM], default now)")
	return cmd
}

func newTaskListCommand(app *App) *cobra.Command {
	var rng rangeFlags
	var all bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the tasks of a day or a span of days",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			b := app.Backend
			if all {
				tasks, err := b.Tasks.All(ctx)
				if err != nil {
					return err
				}
				renderTasks(cmd.OutOrStdout(), tasks, true)
				return nil
			}
			r, err := rng.resolve(b.Calendar)
			if err != nil {
				return err
			}
			tasks, err := b.Tasks.TasksIn(ctx, r)
			if err != nil {
				return err
			}
			renderTasks(cmd.OutOrStdout(), tasks, rng.from != "" || rng.to != "")
			return nil
		},
	}

	rng.register(cmd)
	cmd.Flags().BoolVar(&all, "all", false, "list every task")
	return cmd
}

func newTaskDoneCommand(app *App) *cobra.Command {
	var undo bool

	cmd := &cobra.Command{
		Use:   "done <id>",
		Short: "Mark a task as completed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			b := app.Backend
			task, err := b.Tasks.Get(ctx, id)
			if err != nil {
				return err
			}
			if b.Calendar.IsPast(task.Date) {
				return core.ErrPastDay
			}
			if _, err := b.Tasks.SetCompleted(ctx, id, !undo); err != nil {
				return err
			}
			status := "completed"
			if undo {
				status = "open"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Task #%d marked %s\n", id, status)
			return nil
		},
	}

	cmd.Flags().BoolVar(&undo, "undo", false, "mark the task as not completed")
	return cmd
}

func newTaskRemoveCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete a task",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			task, err := app.Backend.Tasks.Get(ctx, id)
			if err != nil {
				return err
			}
			model := state.NewDayModel(app.deps(), task.Date)
			err = await(func(done func(error)) error {
				return model.DeleteTask(ctx, task, done)
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Task #%d deleted\n", id)
			return nil
		},
	}
}
