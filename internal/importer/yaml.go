// Package importer loads tasks, incomes and expenses from a YAML document.
package importer

import (
	"context"
	"fmt"

	"gopkg.in/yaml.v3"

	"lexify/internal/calendar"
	"lexify/internal/core"
	"lexify/internal/log"
	"lexify/internal/services"
)

// YAMLTask represents a single task in the YAML input.
type YAMLTask struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description,omitempty"`
	Date        string `yaml:"date,omitempty"`
	Completed   bool   `yaml:"completed,omitempty"`
}

// YAMLIncome is one income entry. Amount accepts "12.34" and "12,34".
type YAMLIncome struct {
	Amount string `yaml:"amount"`
	Date   string `yaml:"date,omitempty"`
	Note   string `yaml:"note,omitempty"`
}

type YAMLExpense struct {
	Amount   string `yaml:"amount"`
	Date     string `yaml:"date,omitempty"`
	Category string `yaml:"category"`
	Note     string `yaml:"note,omitempty"`
}

// YAMLInput represents the root structure of the YAML input.
type YAMLInput struct {
	Tasks    []YAMLTask    `yaml:"tasks"`
	Incomes  []YAMLIncome  `yaml:"incomes"`
	Expenses []YAMLExpense `yaml:"expenses"`
}

// Result counts the imported records.
type Result struct {
	Tasks    int
	Incomes  int
	Expenses int
}

func (r Result) Total() int {
	return r.Tasks + r.Incomes + r.Expenses
}

type Importer struct {
	cal    *calendar.Calendar
	tasks  *services.TaskService
	ledger *services.LedgerService
	logger *log.Logger
}

func New(cal *calendar.Calendar, tasks *services.TaskService, ledger *services.LedgerService, logger *log.Logger) *Importer {
	if logger == nil {
		logger = log.Default()
	}
	return &Importer{cal: cal, tasks: tasks, ledger: ledger, logger: logger.WithComponent(log.ComponentImporter)}
}

// Import parses data and stores its records. The whole document is
// validated before anything is written; a missing date means now. Expenses
// are stored in a single transaction.
func (im *Importer) Import(ctx context.Context, data []byte) (Result, error) {
	var input YAMLInput
	if err := yaml.Unmarshal(data, &input); err != nil {
		return Result{}, fmt.Errorf("YAML parse error: %w", err)
	}
	if len(input.Tasks)+len(input.Incomes)+len(input.Expenses) == 0 {
		return Result{}, fmt.Errorf("no records found in YAML")
	}

	tasks, incomes, expenses, err := im.convert(input)
	if err != nil {
		return Result{}, err
	}

	var res Result
	for _, t := range tasks {
		if _, err := im.tasks.Add(ctx, t); err != nil {
			return res, fmt.Errorf("add task %q: %w", t.Title, err)
		}
		res.Tasks++
	}
	for _, i := range incomes {
		if _, err := im.ledger.AddIncome(ctx, i); err != nil {
			return res, fmt.Errorf("add income %s: %w", i.Amount, err)
		}
		res.Incomes++
	}
	if len(expenses) > 0 {
		stored, err := im.ledger.AddExpenses(ctx, expenses)
		if err != nil {
			return res, fmt.Errorf("add expenses: %w", err)
		}
		res.Expenses = len(stored)
	}

	im.logger.InfoContext(ctx, "Import completed",
		log.FieldOperation, log.OpImport,
		"tasks", res.Tasks,
		"incomes", res.Incomes,
		"expenses", res.Expenses)
	return res, nil
}

func (im *Importer) convert(input YAMLInput) ([]core.Task, []core.Income, []core.Expense, error) {
	tasks := make([]core.Task, 0, len(input.Tasks))
	for n, yt := range input.Tasks {
		date, err := im.cal.Parse(yt.Date)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("task %d: %w", n+1, err)
		}
		t := core.Task{Title: yt.Title, Description: yt.Description, Date: date, Completed: yt.Completed}
		if err := t.Validate(); err != nil {
			return nil, nil, nil, fmt.Errorf("task %d: %w", n+1, err)
		}
		tasks = append(tasks, t)
	}

	incomes := make([]core.Income, 0, len(input.Incomes))
	for n, yi := range input.Incomes {
		amount, err := core.ParseAmount(yi.Amount)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("income %d: %w", n+1, err)
		}
		date, err := im.cal.Parse(yi.Date)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("income %d: %w", n+1, err)
		}
		i := core.Income{Amount: amount, Date: date, Note: yi.Note}
		if err := i.Validate(); err != nil {
			return nil, nil, nil, fmt.Errorf("income %d: %w", n+1, err)
		}
		incomes = append(incomes, i)
	}

	expenses := make([]core.Expense, 0, len(input.Expenses))
	for n, ye := range input.Expenses {
		amount, err := core.ParseAmount(ye.Amount)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("expense %d: %w", n+1, err)
		}
		date, err := im.cal.Parse(ye.Date)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("expense %d: %w", n+1, err)
		}
		e := core.Expense{Amount: amount, Date: date, Category: ye.Category, Note: core.ExpenseNote(ye.Category, ye.Note)}
		if err := e.Validate(); err != nil {
			return nil, nil, nil, fmt.Errorf("expense %d: %w", n+1, err)
		}
		expenses = append(expenses, e)
	}
	return tasks, incomes, expenses, nil
}
