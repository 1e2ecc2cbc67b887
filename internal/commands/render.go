package commands

import (
	"fmt"
	"io"
	"strings"

	"lexify/internal/calendar"
	"lexify/internal/core"
	"lexify/internal/state"
)

const (
	timeLayout = "15:04"
	dayLayout  = "2006-01-02"
)

func renderTasks(w io.Writer, tasks []core.Task, withDay bool) {
	if len(tasks) == 0 {
		fmt.Fprintln(w, "No tasks.")
		return
	}
	for _, t := range tasks {
		mark := " "
		if t.Completed {
			mark = "x"
		}
		when := t.Date.Format(timeLayout)
		if withDay {
			when = t.Date.Format(dayLayout + " " + timeLayout)
		}
		line := fmt.Sprintf("#%d [%s] %s %s", t.ID, mark, when, t.Title)
		if t.Description != "" {
			line += " (" + t.Description + ")"
		}
		fmt.Fprintln(w, line)
	}
}

func renderTaskState(w io.Writer, s state.TaskState) {
	switch s.Kind {
	case state.Loading:
		fmt.Fprintln(w, "Loading tasks...")
	case state.Error:
		fmt.Fprintf(w, "Error: %s\n", s.Message)
		renderTasks(w, s.Tasks, false)
	default:
		renderTasks(w, s.Tasks, false)
	}
}

func renderIncomes(w io.Writer, incomes []core.Income) {
	if len(incomes) == 0 {
		fmt.Fprintln(w, "No income.")
		return
	}
	for _, i := range incomes {
		line := fmt.Sprintf("#%d %s %10s", i.ID, i.Date.Format(dayLayout+" "+timeLayout), i.Amount)
		if i.Note != "" {
			line += "  " + i.Note
		}
		fmt.Fprintln(w, line)
	}
}

func renderExpenses(w io.Writer, expenses []core.Expense) {
	if len(expenses) == 0 {
		fmt.Fprintln(w, "No expenses.")
		return
	}
	for _, e := range expenses {
		fmt.Fprintf(w, "#%d %s %10s  %s\n", e.ID, e.Date.Format(dayLayout+" "+timeLayout), e.Amount, e.Note)
	}
}

// renderGrid prints the grid one week per row: a line of day numbers, today
// in brackets, followed by a line of whole-unit daily income.
func renderGrid(w io.Writer, grid calendar.Grid, labels calendar.Labels) {
	var header strings.Builder
	for i := range 7 {
		// Columns start on Monday.
		fmt.Fprintf(&header, "%6s", labels[(i+1)%7])
	}
	fmt.Fprintln(w, header.String())

	for start := 0; start < len(grid.Days); start += 7 {
		end := min(start+7, len(grid.Days))
		var days, incomes strings.Builder
		for _, d := range grid.Days[start:end] {
			cell := fmt.Sprintf("%d", d.Day)
			if d.Today {
				cell = "[" + cell + "]"
			}
			fmt.Fprintf(&days, "%6s", cell)
			if d.Income.IsZero() {
				fmt.Fprintf(&incomes, "%6s", ".")
			} else {
				fmt.Fprintf(&incomes, "%6d", d.Income.Whole())
			}
		}
		fmt.Fprintln(w, days.String())
		fmt.Fprintln(w, incomes.String())
	}
}

func renderSummary(w io.Writer, s core.PeriodSummary) {
	fmt.Fprintf(w, "Period:   %s .. %s\n", s.From.Format(dayLayout), s.To.Format(dayLayout))
	fmt.Fprintf(w, "Income:   %10s\n", s.Income)
	fmt.Fprintf(w, "Expenses: %10s\n", s.Expenses)
	fmt.Fprintf(w, "Balance:  %10s\n", s.Balance())
	if len(s.ByCategory) == 0 {
		return
	}
	fmt.Fprintln(w, "By category:")
	for _, c := range s.ByCategory {
		fmt.Fprintf(w, "  %-20s %10s\n", c.Name, c.Amount)
	}
}
