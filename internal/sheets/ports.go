// Package sheets mirrors stored records into a spreadsheet-like target,
// one row per record, the record identifier in the first column.
package sheets

import (
	"context"
	"strconv"
	"time"

	"lexify/internal/core"
)

// Ports for outbound adapters.
type (
	// RecordMirror keeps one row per record identifier in a named sheet.
	RecordMirror interface {
		// Upsert writes row for id, replacing an existing row with the same id.
		Upsert(ctx context.Context, sheet string, id int64, row []string) error
		// Remove deletes the row for id; a missing row is not an error.
		Remove(ctx context.Context, sheet string, id int64) error
	}

	// RowReader returns the mirrored rows of a sheet keyed by identifier.
	RowReader interface {
		Rows(ctx context.Context, sheet string) (map[int64][]string, error)
	}
)

// Names maps record kinds to sheet names.
type Names struct {
	Tasks    string
	Incomes  string
	Expenses string
}

func DefaultNames() Names {
	return Names{Tasks: "Tasks", Incomes: "Income", Expenses: "Expenses"}
}

// For returns the sheet that holds records of kind.
func (n Names) For(kind core.RecordKind) (string, bool) {
	switch kind {
	case core.KindTask:
		return n.Tasks, n.Tasks != ""
	case core.KindIncome:
		return n.Incomes, n.Incomes != ""
	case core.KindExpense:
		return n.Expenses, n.Expenses != ""
	default:
		return "", false
	}
}

const rowTimeLayout = "2006-01-02 15:04"

// TaskRow renders id, date, title, description, done.
func TaskRow(t core.Task) []string {
	done := "no"
	if t.Completed {
		done = "yes"
	}
	return []string{strconv.FormatInt(t.ID, 10), t.Date.Format(rowTimeLayout), t.Title, t.Description, done}
}

// IncomeRow renders id, date, amount, note.
func IncomeRow(i core.Income) []string {
	return []string{strconv.FormatInt(i.ID, 10), i.Date.Format(rowTimeLayout), i.Amount.String(), i.Note}
}

// ExpenseRow renders id, date, amount, category, note.
func ExpenseRow(e core.Expense) []string {
	return []string{strconv.FormatInt(e.ID, 10), e.Date.Format(rowTimeLayout), e.Amount.String(), e.Category, e.Note}
}

// ParseRowTime reads the date column written by the row builders.
func ParseRowTime(s string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(rowTimeLayout, s, loc)
}
