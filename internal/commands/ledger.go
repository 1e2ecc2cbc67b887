package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"lexify/internal/core"
	"lexify/internal/state"
)

func newIncomeCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "income",
		Short: "Manage income entries",
	}
	cmd.AddCommand(
		newIncomeAddCommand(app),
		newIncomeListCommand(app),
		newIncomeRemoveCommand(app),
	)
	return cmd
}

func newIncomeAddCommand(app *App) *cobra.Command {
	var note, date string

	cmd := &cobra.Command{
		Use:   "add <amount>",
		Short: "Record income on a day (today by default)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			day, err := app.Backend.Calendar.Parse(date)
			if err != nil {
				return err
			}
			model := state.NewDayModel(app.deps(), day)
			err = await(func(done func(error)) error {
				return model.AddIncome(ctx, args[0], note, done)
			})
			if err != nil {
				return err
			}
			total, err := app.Backend.Ledger.DailyIncome(ctx, day)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Income added, %s total %s\n", model.Range().Key(), total)
			return nil
		},
	}

	cmd.Flags().StringVarP(&note, "note", "n", "", "note")
	cmd.Flags().StringVar(&date, "date", "", "day of the income (YYYY-MM-DD [HH:MM], default now)")
	return cmd
}

func newIncomeListCommand(app *App) *cobra.Command {
	var rng rangeFlags

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List income of a day or a span of days",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			b := app.Backend
			r, err := rng.resolve(b.Calendar)
			if err != nil {
				return err
			}
			incomes, err := b.Ledger.IncomesIn(ctx, r)
			if err != nil {
				return err
			}
			total, err := b.Ledger.SumIncome(ctx, r)
			if err != nil {
				return err
			}
			renderIncomes(cmd.OutOrStdout(), incomes)
			fmt.Fprintf(cmd.OutOrStdout(), "Total: %s\n", total)
			return nil
		},
	}

	rng.register(cmd)
	return cmd
}

func newIncomeRemoveCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete an income entry",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			income, err := app.Backend.Ledger.GetIncome(ctx, id)
			if err != nil {
				return err
			}
			model := state.NewDayModel(app.deps(), income.Date)
			err = await(func(done func(error)) error {
				model.DeleteIncome(ctx, income, done)
				return nil
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Income #%d deleted\n", id)
			return nil
		},
	}
}

func newExpenseCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "expense",
		Short: "Manage expenses",
	}
	cmd.AddCommand(
		newExpenseAddCommand(app),
		newExpenseListCommand(app),
		newExpenseRemoveCommand(app),
		newExpenseSummaryCommand(app),
	)
	return cmd
}

func newExpenseAddCommand(app *App) *cobra.Command {
	var note, date string

	cmd := &cobra.Command{
		Use:   "add <amount> <category>",
		Short: "Record an expense on a day (today by default)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			day, err := app.Backend.Calendar.Parse(date)
			if err != nil {
				return err
			}
			model := state.NewDayModel(app.deps(), day)
			err = await(func(done func(error)) error {
				return model.AddExpense(ctx, args[0], args[1], note, done)
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Expense added for %s: %s\n", model.Range().Key(), core.ExpenseNote(args[1], note))
			return nil
		},
	}

	cmd.Flags().StringVarP(&note, "note", "n", "", "note")
	cmd.Flags().StringVar(&date, "date", "", "day of the expense (YYYY-MM-DD [HH:MM], default now)")
	return cmd
}

func newExpenseListCommand(app *App) *cobra.Command {
	var rng rangeFlags
	var category string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List expenses of a day, a span of days or a category",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			b := app.Backend
			out := cmd.OutOrStdout()

			if category != "" {
				expenses, err := b.Store.ListExpensesByCategory(ctx, category)
				if err != nil {
					return err
				}
				renderExpenses(out, expenses)
				return nil
			}

			r, err := rng.resolve(b.Calendar)
			if err != nil {
				return err
			}
			expenses, err := b.Ledger.ExpensesIn(ctx, r)
			if err != nil {
				return err
			}
			total, err := b.Ledger.SumExpenses(ctx, r)
			if err != nil {
				return err
			}
			renderExpenses(out, expenses)
			fmt.Fprintf(out, "Total: %s\n", total)
			return nil
		},
	}

	rng.register(cmd)
	cmd.Flags().StringVarP(&category, "category", "c", "", "list every expense of a category")
	return cmd
}

func newExpenseRemoveCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete an expense",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			expense, err := app.Backend.Ledger.GetExpense(ctx, id)
			if err != nil {
				return err
			}
			model := state.NewDayModel(app.deps(), expense.Date)
			err = await(func(done func(error)) error {
				model.DeleteExpense(ctx, expense, done)
				return nil
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Expense #%d deleted\n", id)
			return nil
		},
	}
}

func newExpenseSummaryCommand(app *App) *cobra.Command {
	var from, to string
	var categories bool

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Summarize income and expenses (this week by default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			b := app.Backend
			out := cmd.OutOrStdout()

			if categories {
				names, err := b.Ledger.Categories(ctx)
				if err != nil {
					return err
				}
				for _, name := range names {
					fmt.Fprintln(out, name)
				}
				return nil
			}

			r := b.Calendar.WeekToDate()
			if from != "" || to != "" {
				rf := rangeFlags{from: from, to: to}
				var err error
				if r, err = rf.resolve(b.Calendar); err != nil {
					return err
				}
			}
			summary, err := b.Ledger.Summary(ctx, r)
			if err != nil {
				return err
			}
			renderSummary(out, summary)
			return nil
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "first day (YYYY-MM-DD, default Monday of this week)")
	cmd.Flags().StringVar(&to, "to", "", "last day (YYYY-MM-DD, default today)")
	cmd.Flags().BoolVar(&categories, "categories", false, "only list the known categories")
	return cmd
}
