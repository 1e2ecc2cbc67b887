package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"lexify/internal/calendar"
	"lexify/internal/core"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a record with the requested identifier does
// not exist.
var ErrNotFound = errors.New("record not found")

const busyTimeoutMs = 5000

type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
	loc     *time.Location
}

// NewSQLiteRepository opens (or creates) the database at dbPath, switches it
// to WAL mode and applies pending migrations. Stored timestamps are returned
// in loc.
func NewSQLiteRepository(dbPath string, loc *time.Location) (*SQLiteRepository, error) {
	if loc == nil {
		loc = time.Local
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	// Run migrations before the main pool is opened so every connection sees
	// the final schema.
	if err := RunMigrations(dbPath); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	dsn := fmt.Sprintf("%s?_pragma=busy_timeout(%d)", dbPath, busyTimeoutMs)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	return &SQLiteRepository{
		db:      db,
		queries: New(db),
		loc:     loc,
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *SQLiteRepository) toTime(ms int64) time.Time {
	return time.UnixMilli(ms).In(r.loc)
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func affected(n int64, err error) error {
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// ---- tasks

func (r *SQLiteRepository) taskFromRow(t Task) core.Task {
	return core.Task{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Date:        r.toTime(t.DateMs),
		Completed:   t.Completed,
	}
}

func taskToRow(t core.Task) Task {
	return Task{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		DateMs:      t.Date.UnixMilli(),
		Completed:   t.Completed,
	}
}

// InsertTask stores t and returns it with its identifier. A zero ID gets a
// fresh identifier; an existing ID is overwritten.
func (r *SQLiteRepository) InsertTask(ctx context.Context, t core.Task) (core.Task, error) {
	id, err := r.queries.UpsertTask(ctx, taskToRow(t))
	if err != nil {
		return core.Task{}, fmt.Errorf("insert task: %w", err)
	}
	t.ID = id
	slog.DebugContext(ctx, "Task saved", "id", id, "date", t.Date.Format(time.DateOnly))
	return t, nil
}

func (r *SQLiteRepository) UpdateTask(ctx context.Context, t core.Task) error {
	if err := affected(r.queries.UpdateTask(ctx, taskToRow(t))); err != nil {
		return fmt.Errorf("update task %d: %w", t.ID, err)
	}
	return nil
}

func (r *SQLiteRepository) DeleteTask(ctx context.Context, t core.Task) error {
	return r.DeleteTaskByID(ctx, t.ID)
}

func (r *SQLiteRepository) DeleteTaskByID(ctx context.Context, id int64) error {
	if err := affected(r.queries.DeleteTask(ctx, id)); err != nil {
		return fmt.Errorf("delete task %d: %w", id, err)
	}
	return nil
}

func (r *SQLiteRepository) GetTask(ctx context.Context, id int64) (core.Task, error) {
	row, err := r.queries.GetTask(ctx, id)
	if err != nil {
		return core.Task{}, fmt.Errorf("get task %d: %w", id, notFound(err))
	}
	return r.taskFromRow(row), nil
}

// ListTasks returns the tasks of a boundary pair, newest first.
func (r *SQLiteRepository) ListTasks(ctx context.Context, rng calendar.Range) ([]core.Task, error) {
	rows, err := r.queries.ListTasksBetween(ctx, rng.Start.UnixMilli(), rng.End.UnixMilli())
	if err != nil {
		return nil, fmt.Errorf("list tasks %s: %w", rng, err)
	}
	return r.tasksFromRows(rows), nil
}

func (r *SQLiteRepository) AllTasks(ctx context.Context) ([]core.Task, error) {
	rows, err := r.queries.ListAllTasks(ctx)
	if err != nil {
		return nil, fmt.Errorf("list all tasks: %w", err)
	}
	return r.tasksFromRows(rows), nil
}

func (r *SQLiteRepository) tasksFromRows(rows []Task) []core.Task {
	tasks := make([]core.Task, len(rows))
	for i, row := range rows {
		tasks[i] = r.taskFromRow(row)
	}
	return tasks
}

// ---- incomes

func (r *SQLiteRepository) incomeFromRow(i Income) core.Income {
	return core.Income{
		ID:     i.ID,
		Amount: core.Money{Cents: i.AmountCents},
		Date:   r.toTime(i.DateMs),
		Note:   i.Note,
	}
}

func incomeToRow(i core.Income) Income {
	return Income{
		ID:          i.ID,
		AmountCents: i.Amount.Cents,
		DateMs:      i.Date.UnixMilli(),
		Note:        i.Note,
	}
}

func (r *SQLiteRepository) InsertIncome(ctx context.Context, i core.Income) (core.Income, error) {
	id, err := r.queries.UpsertIncome(ctx, incomeToRow(i))
	if err != nil {
		return core.Income{}, fmt.Errorf("insert income: %w", err)
	}
	i.ID = id
	slog.DebugContext(ctx, "Income saved", "id", id, "amount_cents", i.Amount.Cents)
	return i, nil
}

func (r *SQLiteRepository) UpdateIncome(ctx context.Context, i core.Income) error {
	if err := affected(r.queries.UpdateIncome(ctx, incomeToRow(i))); err != nil {
		return fmt.Errorf("update income %d: %w", i.ID, err)
	}
	return nil
}

func (r *SQLiteRepository) DeleteIncome(ctx context.Context, i core.Income) error {
	return r.DeleteIncomeByID(ctx, i.ID)
}

func (r *SQLiteRepository) DeleteIncomeByID(ctx context.Context, id int64) error {
	if err := affected(r.queries.DeleteIncome(ctx, id)); err != nil {
		return fmt.Errorf("delete income %d: %w", id, err)
	}
	return nil
}

func (r *SQLiteRepository) GetIncome(ctx context.Context, id int64) (core.Income, error) {
	row, err := r.queries.GetIncome(ctx, id)
	if err != nil {
		return core.Income{}, fmt.Errorf("get income %d: %w", id, notFound(err))
	}
	return r.incomeFromRow(row), nil
}

func (r *SQLiteRepository) ListIncomes(ctx context.Context, rng calendar.Range) ([]core.Income, error) {
	rows, err := r.queries.ListIncomesBetween(ctx, rng.Start.UnixMilli(), rng.End.UnixMilli())
	if err != nil {
		return nil, fmt.Errorf("list incomes %s: %w", rng, err)
	}
	return r.incomesFromRows(rows), nil
}

func (r *SQLiteRepository) AllIncomes(ctx context.Context) ([]core.Income, error) {
	rows, err := r.queries.ListAllIncomes(ctx)
	if err != nil {
		return nil, fmt.Errorf("list all incomes: %w", err)
	}
	return r.incomesFromRows(rows), nil
}

func (r *SQLiteRepository) incomesFromRows(rows []Income) []core.Income {
	incomes := make([]core.Income, len(rows))
	for i, row := range rows {
		incomes[i] = r.incomeFromRow(row)
	}
	return incomes
}

// SumIncome totals the income amounts within rng; an empty range sums to zero.
func (r *SQLiteRepository) SumIncome(ctx context.Context, rng calendar.Range) (core.Money, error) {
	total, err := r.queries.SumIncomesBetween(ctx, rng.Start.UnixMilli(), rng.End.UnixMilli())
	if err != nil {
		return core.Money{}, fmt.Errorf("sum incomes %s: %w", rng, err)
	}
	return core.Money{Cents: total}, nil
}

// ---- expenses

func (r *SQLiteRepository) expenseFromRow(e Expense) core.Expense {
	return core.Expense{
		ID:       e.ID,
		Amount:   core.Money{Cents: e.AmountCents},
		Date:     r.toTime(e.DateMs),
		Note:     e.Note,
		Category: e.Category,
	}
}

func expenseToRow(e core.Expense) Expense {
	return Expense{
		ID:          e.ID,
		AmountCents: e.Amount.Cents,
		DateMs:      e.Date.UnixMilli(),
		Note:        e.Note,
		Category:    e.Category,
	}
}

func (r *SQLiteRepository) InsertExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	id, err := r.queries.UpsertExpense(ctx, expenseToRow(e))
	if err != nil {
		return core.Expense{}, fmt.Errorf("insert expense: %w", err)
	}
	e.ID = id
	slog.DebugContext(ctx, "Expense saved", "id", id, "amount_cents", e.Amount.Cents, "category", e.Category)
	return e, nil
}

// InsertExpenses stores all expenses in a single transaction. Either every
// expense is stored or none is.
func (r *SQLiteRepository) InsertExpenses(ctx context.Context, expenses []core.Expense) ([]core.Expense, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	q := r.queries.WithTx(tx)
	stored := make([]core.Expense, len(expenses))
	for i, e := range expenses {
		id, err := q.UpsertExpense(ctx, expenseToRow(e))
		if err != nil {
			return nil, fmt.Errorf("insert expense %d of %d: %w", i+1, len(expenses), err)
		}
		e.ID = id
		stored[i] = e
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit expenses: %w", err)
	}
	slog.DebugContext(ctx, "Expenses saved", "count", len(stored))
	return stored, nil
}

func (r *SQLiteRepository) UpdateExpense(ctx context.Context, e core.Expense) error {
	if err := affected(r.queries.UpdateExpense(ctx, expenseToRow(e))); err != nil {
		return fmt.Errorf("update expense %d: %w", e.ID, err)
	}
	return nil
}

func (r *SQLiteRepository) DeleteExpense(ctx context.Context, e core.Expense) error {
	return r.DeleteExpenseByID(ctx, e.ID)
}

func (r *SQLiteRepository) DeleteExpenseByID(ctx context.Context, id int64) error {
	if err := affected(r.queries.DeleteExpense(ctx, id)); err != nil {
		return fmt.Errorf("delete expense %d: %w", id, err)
	}
	return nil
}

func (r *SQLiteRepository) GetExpense(ctx context.Context, id int64) (core.Expense, error) {
	row, err := r.queries.GetExpense(ctx, id)
	if err != nil {
		return core.Expense{}, fmt.Errorf("get expense %d: %w", id, notFound(err))
	}
	return r.expenseFromRow(row), nil
}

func (r *SQLiteRepository) ListExpenses(ctx context.Context, rng calendar.Range) ([]core.Expense, error) {
	rows, err := r.queries.ListExpensesBetween(ctx, rng.Start.UnixMilli(), rng.End.UnixMilli())
	if err != nil {
		return nil, fmt.Errorf("list expenses %s: %w", rng, err)
	}
	return r.expensesFromRows(rows), nil
}

func (r *SQLiteRepository) ListExpensesByCategory(ctx context.Context, category string) ([]core.Expense, error) {
	rows, err := r.queries.ListExpensesByCategory(ctx, category)
	if err != nil {
		return nil, fmt.Errorf("list expenses for category %s: %w", category, err)
	}
	return r.expensesFromRows(rows), nil
}

func (r *SQLiteRepository) AllExpenses(ctx context.Context) ([]core.Expense, error) {
	rows, err := r.queries.ListAllExpenses(ctx)
	if err != nil {
		return nil, fmt.Errorf("list all expenses: %w", err)
	}
	return r.expensesFromRows(rows), nil
}

func (r *SQLiteRepository) expensesFromRows(rows []Expense) []core.Expense {
	expenses := make([]core.Expense, len(rows))
	for i, row := range rows {
		expenses[i] = r.expenseFromRow(row)
	}
	return expenses
}

func (r *SQLiteRepository) SumExpenses(ctx context.Context, rng calendar.Range) (core.Money, error) {
	total, err := r.queries.SumExpensesBetween(ctx, rng.Start.UnixMilli(), rng.End.UnixMilli())
	if err != nil {
		return core.Money{}, fmt.Errorf("sum expenses %s: %w", rng, err)
	}
	return core.Money{Cents: total}, nil
}

// SumExpensesByCategory totals expenses per category, largest first.
func (r *SQLiteRepository) SumExpensesByCategory(ctx context.Context, rng calendar.Range) ([]core.CategoryAmount, error) {
	sums, err := r.queries.SumExpensesByCategory(ctx, rng.Start.UnixMilli(), rng.End.UnixMilli())
	if err != nil {
		return nil, fmt.Errorf("sum expenses by category %s: %w", rng, err)
	}
	out := make([]core.CategoryAmount, len(sums))
	for i, cs := range sums {
		out[i] = core.CategoryAmount{Name: cs.Category, Amount: core.Money{Cents: cs.TotalAmount}}
	}
	return out, nil
}

func (r *SQLiteRepository) ExpenseCategories(ctx context.Context) ([]string, error) {
	categories, err := r.queries.ListExpenseCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list expense categories: %w", err)
	}
	return categories, nil
}
