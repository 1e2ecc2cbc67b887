package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"lexify/internal/calendar"
	"lexify/internal/state"
)

func newWatchCommand(app *App) *cobra.Command {
	var once bool
	var day string

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Print the overview and reprint it whenever data changes",
		Long: `Watch keeps the overview (calendar, today's tasks and income) live and
reprints it after every change made through this process, until interrupted.
With --day it watches a single day instead.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			if day != "" {
				t, err := app.Backend.Calendar.Parse(day)
				if err != nil {
					return err
				}
				return watchDay(ctx, cancel, cmd.OutOrStdout(), state.NewDayModel(app.deps(), t), once)
			}
			return watchHome(ctx, cancel, cmd.OutOrStdout(), state.NewHomeModel(app.deps(), 0), app.Backend.Calendar.Labels(), once)
		},
	}

	cmd.Flags().BoolVar(&once, "once", false, "print the first complete view and exit")
	cmd.Flags().StringVar(&day, "day", "", "watch a single day (YYYY-MM-DD)")
	return cmd
}

// Subscriptions are taken before Start and their primed initial values
// drained, so every received value comes from a load. The last observable a
// model sets in one refresh serves as the signal for that refresh.
func watchHome(ctx context.Context, cancel context.CancelFunc, w io.Writer, m *state.HomeModel, labels calendar.Labels, once bool) error {
	incomes, stopIncomes := m.WeekIncome.Subscribe()
	defer stopIncomes()
	tasks, stopTasks := m.TodayTasks.Subscribe()
	defer stopTasks()
	failures, stopFailures := m.IncomeError.Subscribe()
	defer stopFailures()
	<-incomes
	taskState := <-tasks
	<-failures

	stopped := m.Start(ctx)
	defer func() {
		cancel()
		<-stopped
	}()

	incomeLoaded := false
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-incomes:
			incomeLoaded = true
		case msg := <-failures:
			if msg == "" {
				continue
			}
			incomeLoaded = true
		case taskState = <-tasks:
		}
		if !incomeLoaded || taskState.Kind == state.Loading {
			continue
		}
		renderGrid(w, m.Grid.Get(), labels)
		renderTaskState(w, taskState)
		if msg := m.IncomeError.Get(); msg != "" {
			fmt.Fprintf(w, "Income unavailable: %s\n\n", msg)
		} else {
			fmt.Fprintf(w, "Income today: %d, this week: %d\n\n", m.TodayIncome.Get().Whole(), m.WeekIncome.Get().Whole())
		}
		if once {
			return nil
		}
	}
}

func watchDay(ctx context.Context, cancel context.CancelFunc, w io.Writer, m *state.DayModel, once bool) error {
	ledger, stopLedger := m.ExpenseTotal.Subscribe()
	defer stopLedger()
	tasks, stopTasks := m.Tasks.Subscribe()
	defer stopTasks()
	<-ledger
	taskState := <-tasks

	stopped := m.Start(ctx)
	defer func() {
		cancel()
		<-stopped
	}()

	ledgerLoaded := false
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ledger:
			ledgerLoaded = true
		case taskState = <-tasks:
		}
		if !ledgerLoaded || taskState.Kind == state.Loading {
			continue
		}
		header := m.Range().Key()
		if m.ReadOnly() {
			header += " (read-only)"
		}
		fmt.Fprintln(w, header)
		renderTaskState(w, taskState)
		renderIncomes(w, m.Incomes.Get())
		renderExpenses(w, m.Expenses.Get())
		fmt.Fprintf(w, "Income: %s  Expenses: %s\n\n", m.IncomeTotal.Get(), m.ExpenseTotal.Get())
		if once {
			return nil
		}
	}
}
