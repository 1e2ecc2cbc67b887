package worker

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lexify/internal/amqp"
	"lexify/internal/core"
	"lexify/internal/sheets"
	"lexify/internal/sheets/memory"
	"lexify/internal/storage"
)

func setup(t *testing.T) (*storage.SQLiteRepository, *memory.Store, *SyncWorker) {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "worker.db"), time.UTC)
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	mirror := memory.New()
	return repo, mirror, NewSyncWorker(repo, mirror, sheets.DefaultNames(), nil)
}

func at(hour int) time.Time {
	return time.Date(2024, 6, 10, hour, 0, 0, 0, time.UTC)
}

func change(kind core.RecordKind, op core.ChangeOp, id int64) *amqp.ChangeMessage {
	return amqp.NewChangeMessage(core.Change{Kind: kind, Op: op, ID: id})
}

func TestHandleChangeUpsertsRows(t *testing.T) {
	repo, mirror, w := setup(t)
	ctx := context.Background()

	task, err := repo.InsertTask(ctx, core.Task{Title: "Call bank", Date: at(9)})
	require.NoError(t, err)
	income, err := repo.InsertIncome(ctx, core.Income{Amount: core.Money{Cents: 15000}, Date: at(10), Note: "tips"})
	require.NoError(t, err)
	expense, err := repo.InsertExpense(ctx, core.Expense{Amount: core.Money{Cents: 1250}, Date: at(12), Category: "Food", Note: "Food: lunch"})
	require.NoError(t, err)

	require.NoError(t, w.HandleChange(ctx, change(core.KindTask, core.OpUpsert, task.ID)))
	require.NoError(t, w.HandleChange(ctx, change(core.KindIncome, core.OpUpsert, income.ID)))
	require.NoError(t, w.HandleChange(ctx, change(core.KindExpense, core.OpUpsert, expense.ID)))

	rows, err := mirror.Rows(ctx, "Tasks")
	require.NoError(t, err)
	assert.Equal(t, sheets.TaskRow(task), rows[task.ID])

	rows, err = mirror.Rows(ctx, "Income")
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2024-06-10 10:00", "150.00", "tips"}, rows[income.ID])

	rows, err = mirror.Rows(ctx, "Expenses")
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2024-06-10 12:00", "12.50", "Food", "Food: lunch"}, rows[expense.ID])
}

func TestHandleChangeUpdatesExistingRow(t *testing.T) {
	repo, mirror, w := setup(t)
	ctx := context.Background()

	task, err := repo.InsertTask(ctx, core.Task{Title: "Call bank", Date: at(9)})
	require.NoError(t, err)
	require.NoError(t, w.HandleChange(ctx, change(core.KindTask, core.OpUpsert, task.ID)))

	task.Completed = true
	require.NoError(t, repo.UpdateTask(ctx, task))
	require.NoError(t, w.HandleChange(ctx, change(core.KindTask, core.OpUpsert, task.ID)))

	rows, err := mirror.Rows(ctx, "Tasks")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "yes", rows[task.ID][4])
}

func TestHandleChangeRemovesRows(t *testing.T) {
	repo, mirror, w := setup(t)
	ctx := context.Background()

	task, err := repo.InsertTask(ctx, core.Task{Title: "Call bank", Date: at(9)})
	require.NoError(t, err)
	require.NoError(t, w.HandleChange(ctx, change(core.KindTask, core.OpUpsert, task.ID)))

	require.NoError(t, w.HandleChange(ctx, change(core.KindTask, core.OpDelete, task.ID)))
	rows, err := mirror.Rows(ctx, "Tasks")
	require.NoError(t, err)
	assert.Empty(t, rows)

	// A late upsert for a record that is already gone clears the row too.
	require.NoError(t, mirror.Upsert(ctx, "Tasks", 42, []string{"42"}))
	require.NoError(t, w.HandleChange(ctx, change(core.KindTask, core.OpUpsert, 42)))
	rows, err = mirror.Rows(ctx, "Tasks")
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestHandleChangeSkipsUnmappedKind(t *testing.T) {
	repo, mirror, _ := setup(t)
	ctx := context.Background()
	w := NewSyncWorker(repo, mirror, sheets.Names{Tasks: "Tasks"}, nil)

	assert.NoError(t, w.HandleChange(ctx, change(core.KindIncome, core.OpUpsert, 1)))
	rows, err := mirror.Rows(ctx, "Income")
	require.NoError(t, err)
	assert.Empty(t, rows)
}

type failingMirror struct {
	err error
}

func (f failingMirror) Upsert(context.Context, string, int64, []string) error { return f.err }
func (f failingMirror) Remove(context.Context, string, int64) error { return f.err }

func TestHandleChangeMirrorFailure(t *testing.T) {
	repo, _, _ := setup(t)
	ctx := context.Background()
	boom := errors.New("quota exceeded")
	w := NewSyncWorker(repo, failingMirror{err: boom}, sheets.DefaultNames(), nil)

	task, err := repo.InsertTask(ctx, core.Task{Title: "Call bank", Date: at(9)})
	require.NoError(t, err)

	assert.ErrorIs(t, w.HandleChange(ctx, change(core.KindTask, core.OpUpsert, task.ID)), boom)
	assert.ErrorIs(t, w.HandleChange(ctx, change(core.KindTask, core.OpDelete, task.ID)), boom)

	stats, err := w.Resync(ctx)
	require.NoError(t, err)
	assert.Equal(t, ResyncStats{Errors: 1}, stats)
}

func TestResync(t *testing.T) {
	repo, mirror, w := setup(t)
	ctx := context.Background()

	_, err := repo.InsertTask(ctx, core.Task{Title: "a", Date: at(9)})
	require.NoError(t, err)
	_, err = repo.InsertTask(ctx, core.Task{Title: "b", Date: at(10)})
	require.NoError(t, err)
	_, err = repo.InsertIncome(ctx, core.Income{Amount: core.Money{Cents: 100}, Date: at(11)})
	require.NoError(t, err)
	_, err = repo.InsertExpenses(ctx, []core.Expense{
		{Amount: core.Money{Cents: 100}, Date: at(11), Category: "Food", Note: "Food"},
		{Amount: core.Money{Cents: 200}, Date: at(12), Category: "Rent", Note: "Rent"},
		{Amount: core.Money{Cents: 300}, Date: at(13), Category: "Rent", Note: "Rent"},
	})
	require.NoError(t, err)

	stats, err := w.Resync(ctx)
	require.NoError(t, err)
	assert.Equal(t, ResyncStats{Tasks: 2, Incomes: 1, Expenses: 3}, stats)

	rows, err := mirror.Rows(ctx, "Expenses")
	require.NoError(t, err)
	assert.Len(t, rows, 3)
}
