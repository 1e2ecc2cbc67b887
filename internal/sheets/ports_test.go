package sheets

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lexify/internal/core"
)

func TestRows(t *testing.T) {
	date := time.Date(2024, 6, 10, 18, 5, 0, 0, time.UTC)

	assert.Equal(t, []string{"3", "2024-06-10 18:05", "Call bank", "", "yes"},
		TaskRow(core.Task{ID: 3, Title: "Call bank", Date: date, Completed: true}))
	assert.Equal(t, []string{"4", "2024-06-10 18:05", "150.00", "tips"},
		IncomeRow(core.Income{ID: 4, Amount: core.Money{Cents: 15000}, Date: date, Note: "tips"}))
	assert.Equal(t, []string{"5", "2024-06-10 18:05", "12.50", "Food", "Food: lunch"},
		ExpenseRow(core.Expense{ID: 5, Amount: core.Money{Cents: 1250}, Date: date, Category: "Food", Note: "Food: lunch"}))

	parsed, err := ParseRowTime("2024-06-10 18:05", time.UTC)
	require.NoError(t, err)
	assert.True(t, parsed.Equal(date))
}

func TestNamesFor(t *testing.T) {
	names := DefaultNames()
	sheet, ok := names.For(core.KindIncome)
	assert.True(t, ok)
	assert.Equal(t, "Income", sheet)

	names.Tasks = ""
	_, ok = names.For(core.KindTask)
	assert.False(t, ok)

	_, ok = names.For(core.RecordKind("note"))
	assert.False(t, ok)
}
