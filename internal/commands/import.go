package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"lexify/internal/importer"
)

func newImportCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.yaml|->",
		Short: "Import tasks, income and expenses from YAML",
		Long: `Import reads a YAML document of the form

  tasks:
    - title: Buy milk
      date: "2024-06-10 08:00"
  incomes:
    - amount: "150.00"
      note: shift
  expenses:
    - amount: "12,50"
      category: Food
      note: lunch

Dates are YYYY-MM-DD or YYYY-MM-DD HH:MM; a missing date means now.
Nothing is written unless the whole document is valid.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				data []byte
				err  error
			)
			if args[0] == "-" {
				data, err = io.ReadAll(cmd.InOrStdin())
			} else {
				data, err = os.ReadFile(args[0])
			}
			if err != nil {
				return fmt.Errorf("read input: %w", err)
			}

			b := app.Backend
			res, err := importer.New(b.Calendar, b.Tasks, b.Ledger, b.Logger).Import(cmd.Context(), data)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d tasks, %d incomes, %d expenses\n", res.Tasks, res.Incomes, res.Expenses)
			return nil
		},
	}
}
