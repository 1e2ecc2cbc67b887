package storage

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lexify/internal/calendar"
	"lexify/internal/core"
)

func setupTestDB(t *testing.T) (*SQLiteRepository, string) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	repo, err := NewSQLiteRepository(dbPath, time.UTC)
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo, dbPath
}

func at(day, hour int) time.Time {
	return time.Date(2024, 6, day, hour, 0, 0, 0, time.UTC)
}

func dayOf(day int) calendar.Range {
	return calendar.New(time.UTC, calendar.LabelsEN, nil).DayRange(at(day, 12))
}

func TestDailyIncomeExample(t *testing.T) {
	repo, _ := setupTestDB(t)
	ctx := context.Background()

	for _, in := range []core.Income{
		{Amount: core.Money{Cents: 10000}, Date: at(10, 9)},
		{Amount: core.Money{Cents: 5000}, Date: at(10, 18)},
		{Amount: core.Money{Cents: 7000}, Date: at(11, 0)},
	} {
		_, err := repo.InsertIncome(ctx, in)
		require.NoError(t, err)
	}

	total, err := repo.SumIncome(ctx, dayOf(10))
	require.NoError(t, err)
	assert.Equal(t, int64(15000), total.Cents)
	assert.Equal(t, int64(150), total.Whole())

	total, err = repo.SumIncome(ctx, dayOf(12))
	require.NoError(t, err)
	assert.True(t, total.IsZero())
}

func TestRangeBoundaries(t *testing.T) {
	repo, _ := setupTestDB(t)
	ctx := context.Background()
	rng := dayOf(10)

	// Both ends are inclusive; next midnight belongs to the following day.
	for _, d := range []time.Time{rng.Start, rng.End, rng.End.Add(time.Millisecond)} {
		_, err := repo.InsertIncome(ctx, core.Income{Amount: core.Money{Cents: 100}, Date: d})
		require.NoError(t, err)
	}

	incomes, err := repo.ListIncomes(ctx, rng)
	require.NoError(t, err)
	assert.Len(t, incomes, 2)
}

func TestTaskCRUD(t *testing.T) {
	repo, _ := setupTestDB(t)
	ctx := context.Background()

	task, err := repo.InsertTask(ctx, core.Task{Title: "Buy milk", Date: at(10, 8)})
	require.NoError(t, err)
	require.NotZero(t, task.ID)

	got, err := repo.GetTask(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, "Buy milk", got.Title)
	assert.False(t, got.Completed)
	assert.True(t, got.Date.Equal(at(10, 8)))

	got.Completed = true
	require.NoError(t, repo.UpdateTask(ctx, got))

	got, err = repo.GetTask(ctx, task.ID)
	require.NoError(t, err)
	assert.True(t, got.Completed)

	require.NoError(t, repo.DeleteTask(ctx, got))
	_, err = repo.GetTask(ctx, task.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, repo.DeleteTaskByID(ctx, task.ID), ErrNotFound)
	assert.ErrorIs(t, repo.UpdateTask(ctx, core.Task{ID: 999, Title: "x", Date: at(10, 8)}), ErrNotFound)
}

func TestInsertReplacesExistingID(t *testing.T) {
	repo, _ := setupTestDB(t)
	ctx := context.Background()

	task, err := repo.InsertTask(ctx, core.Task{Title: "first", Date: at(10, 8)})
	require.NoError(t, err)

	replaced, err := repo.InsertTask(ctx, core.Task{ID: task.ID, Title: "second", Date: at(10, 9)})
	require.NoError(t, err)
	assert.Equal(t, task.ID, replaced.ID)

	all, err := repo.AllTasks(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "second", all[0].Title)
}

func TestListOrdering(t *testing.T) {
	repo, _ := setupTestDB(t)
	ctx := context.Background()

	a, err := repo.InsertTask(ctx, core.Task{Title: "a", Date: at(10, 8)})
	require.NoError(t, err)
	b, err := repo.InsertTask(ctx, core.Task{Title: "b", Date: at(10, 8)})
	require.NoError(t, err)
	c, err := repo.InsertTask(ctx, core.Task{Title: "c", Date: at(10, 20)})
	require.NoError(t, err)

	tasks, err := repo.ListTasks(ctx, dayOf(10))
	require.NoError(t, err)
	require.Len(t, tasks, 3)
	assert.Equal(t, []int64{c.ID, b.ID, a.ID}, []int64{tasks[0].ID, tasks[1].ID, tasks[2].ID})

	empty, err := repo.ListTasks(ctx, dayOf(11))
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestInsertDeleteRestoresAggregates(t *testing.T) {
	repo, _ := setupTestDB(t)
	ctx := context.Background()
	rng := dayOf(10)

	_, err := repo.InsertIncome(ctx, core.Income{Amount: core.Money{Cents: 2500}, Date: at(10, 9)})
	require.NoError(t, err)
	before, err := repo.SumIncome(ctx, rng)
	require.NoError(t, err)

	extra, err := repo.InsertIncome(ctx, core.Income{Amount: core.Money{Cents: 1234}, Date: at(10, 15)})
	require.NoError(t, err)
	require.NoError(t, repo.DeleteIncome(ctx, extra))

	after, err := repo.SumIncome(ctx, rng)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestNonPositiveAmountRejected(t *testing.T) {
	repo, _ := setupTestDB(t)
	ctx := context.Background()

	_, err := repo.InsertIncome(ctx, core.Income{Amount: core.Money{Cents: 0}, Date: at(10, 9)})
	assert.Error(t, err)

	_, err = repo.InsertExpense(ctx, core.Expense{Amount: core.Money{Cents: -5}, Date: at(10, 9), Category: "Food"})
	assert.Error(t, err)
}

func TestExpenseAggregates(t *testing.T) {
	repo, _ := setupTestDB(t)
	ctx := context.Background()

	stored, err := repo.InsertExpenses(ctx, []core.Expense{
		{Amount: core.Money{Cents: 1200}, Date: at(10, 9), Category: "Food", Note: "Food: lunch"},
		{Amount: core.Money{Cents: 800}, Date: at(10, 19), Category: "Food", Note: "Food"},
		{Amount: core.Money{Cents: 3000}, Date: at(10, 12), Category: "Transport", Note: "Transport"},
		{Amount: core.Money{Cents: 999}, Date: at(11, 12), Category: "Books", Note: "Books"},
	})
	require.NoError(t, err)
	require.Len(t, stored, 4)
	for _, e := range stored {
		assert.NotZero(t, e.ID)
	}

	total, err := repo.SumExpenses(ctx, dayOf(10))
	require.NoError(t, err)
	assert.Equal(t, int64(5000), total.Cents)

	byCat, err := repo.SumExpensesByCategory(ctx, dayOf(10))
	require.NoError(t, err)
	assert.Equal(t, []core.CategoryAmount{
		{Name: "Transport", Amount: core.Money{Cents: 3000}},
		{Name: "Food", Amount: core.Money{Cents: 2000}},
	}, byCat)

	categories, err := repo.ExpenseCategories(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Books", "Food", "Transport"}, categories)

	food, err := repo.ListExpensesByCategory(ctx, "Food")
	require.NoError(t, err)
	assert.Len(t, food, 2)
}

func TestInsertExpensesIsAtomic(t *testing.T) {
	repo, _ := setupTestDB(t)
	ctx := context.Background()

	_, err := repo.InsertExpenses(ctx, []core.Expense{
		{Amount: core.Money{Cents: 100}, Date: at(10, 9), Category: "Food"},
		{Amount: core.Money{Cents: 0}, Date: at(10, 9), Category: "Food"},
	})
	require.Error(t, err)

	all, err := repo.AllExpenses(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestMigrationFallbackRebuildsSchema(t *testing.T) {
	repo, dbPath := setupTestDB(t)
	ctx := context.Background()

	_, err := repo.InsertTask(ctx, core.Task{Title: "will be lost", Date: at(10, 8)})
	require.NoError(t, err)
	require.NoError(t, repo.Close())

	// Leave the schema in a dirty state so the next migration run fails.
	db, err := sql.Open("sqlite", dbPath)
	require.NoError(t, err)
	_, err = db.Exec("UPDATE schema_migrations SET dirty = 1")
	require.NoError(t, err)
	require.NoError(t, db.Close())

	reopened, err := NewSQLiteRepository(dbPath, time.UTC)
	require.NoError(t, err)
	defer reopened.Close()

	tasks, err := reopened.AllTasks(ctx)
	require.NoError(t, err)
	assert.Empty(t, tasks)

	_, err = reopened.InsertExpense(ctx, core.Expense{Amount: core.Money{Cents: 100}, Date: at(10, 9), Category: "Food"})
	assert.NoError(t, err)
}

func TestTimesReturnedInLocation(t *testing.T) {
	loc := time.FixedZone("MSK", 3*60*60)
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "loc.db"), loc)
	require.NoError(t, err)
	defer repo.Close()

	ctx := context.Background()
	in, err := repo.InsertIncome(ctx, core.Income{Amount: core.Money{Cents: 1}, Date: at(10, 22)})
	require.NoError(t, err)

	got, err := repo.GetIncome(ctx, in.ID)
	require.NoError(t, err)
	assert.Equal(t, loc, got.Date.Location())
	assert.Equal(t, 11, got.Date.Day())
}
