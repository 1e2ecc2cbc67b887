package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"lexify/internal/calendar"
)

func newCalendarCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "calendar",
		Short: "Show the six-week calendar with daily income",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			b := app.Backend
			grid, err := calendar.NewGenerator(b.Calendar, b.Ledger, 0).Generate(cmd.Context())
			if err != nil {
				return fmt.Errorf("generate calendar: %w", err)
			}
			renderGrid(cmd.OutOrStdout(), grid, b.Calendar.Labels())
			return nil
		},
	}
}

func newTodayCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "today",
		Short: "Show today's tasks and income totals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			b := app.Backend
			out := cmd.OutOrStdout()

			tasks, err := b.Tasks.Today(ctx)
			if err != nil {
				return err
			}
			today, err := b.Ledger.TodayIncome(ctx)
			if err != nil {
				return err
			}
			week, err := b.Ledger.WeekToDateIncome(ctx)
			if err != nil {
				return err
			}

			fmt.Fprintf(out, "%s\n", b.Calendar.Now().Format("Monday, 2006-01-02"))
			renderTasks(out, tasks, false)
			fmt.Fprintf(out, "Income today: %d\n", today.Whole())
			fmt.Fprintf(out, "Income this week: %d\n", week.Whole())
			return nil
		},
	}
}
