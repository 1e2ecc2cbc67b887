package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"lexify/internal/buildinfo"
)

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand(app *App) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "lexify",
		Short:   "Day-bucketed tasks, income and expenses",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", buildinfo.Version, buildinfo.Commit, buildinfo.Date),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return app.open(cmd.Context(), cmd.ErrOrStderr())
		},
	}

	rootCmd.AddCommand(
		newCalendarCommand(app),
		newTodayCommand(app),
		newTaskCommand(app),
		newIncomeCommand(app),
		newExpenseCommand(app),
		newImportCommand(app),
		newWatchCommand(app),
	)

	return rootCmd
}
