package storage

import (
	"context"
	"database/sql"
)

// DBTX is satisfied by *sql.DB and *sql.Tx so the same queries run inside
// and outside transactions.
type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

// Queries holds the raw SQL statements of the store.
type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

// Rows as stored. Amounts are integer cents, dates unix milliseconds.
type (
	Task struct {
		ID          int64
		Title       string
		Description string
		DateMs      int64
		Completed   bool
	}

	Income struct {
		ID          int64
		AmountCents int64
		DateMs      int64
		Note        string
	}

	Expense struct {
		ID          int64
		AmountCents int64
		DateMs      int64
		Note        string
		Category    string
	}

	CategorySum struct {
		Category    string
		TotalAmount int64
	}
)

// ---- tasks

// A zero id is turned into NULL so SQLite assigns the next identifier;
// an existing id is overwritten.
const upsertTask = `
INSERT OR REPLACE INTO tasks (id, title, description, date_ms, completed)
VALUES (NULLIF(?, 0), ?, ?, ?, ?)`

func (q *Queries) UpsertTask(ctx context.Context, t Task) (int64, error) {
	res, err := q.db.ExecContext(ctx, upsertTask, t.ID, t.Title, t.Description, t.DateMs, t.Completed)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

const updateTask = `
UPDATE tasks SET title = ?, description = ?, date_ms = ?, completed = ?
WHERE id = ?`

func (q *Queries) UpdateTask(ctx context.Context, t Task) (int64, error) {
	res, err := q.db.ExecContext(ctx, updateTask, t.Title, t.Description, t.DateMs, t.Completed, t.ID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const deleteTask = `DELETE FROM tasks WHERE id = ?`

func (q *Queries) DeleteTask(ctx context.Context, id int64) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteTask, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const getTask = `
SELECT id, title, description, date_ms, completed
FROM tasks WHERE id = ?`

func (q *Queries) GetTask(ctx context.Context, id int64) (Task, error) {
	var t Task
	err := q.db.QueryRowContext(ctx, getTask, id).Scan(&t.ID, &t.Title, &t.Description, &t.DateMs, &t.Completed)
	return t, err
}

const listTasksBetween = `
SELECT id, title, description, date_ms, completed
FROM tasks
WHERE date_ms BETWEEN ? AND ?
ORDER BY date_ms DESC, id DESC`

func (q *Queries) ListTasksBetween(ctx context.Context, startMs, endMs int64) ([]Task, error) {
	return queryTasks(ctx, q.db, listTasksBetween, startMs, endMs)
}

const listAllTasks = `
SELECT id, title, description, date_ms, completed
FROM tasks
ORDER BY date_ms DESC, id DESC`

func (q *Queries) ListAllTasks(ctx context.Context) ([]Task, error) {
	return queryTasks(ctx, q.db, listAllTasks)
}

func queryTasks(ctx context.Context, db DBTX, query string, args ...interface{}) ([]Task, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []Task{}
	for rows.Next() {
		var t Task
		if err := rows.Scan(&t.ID, &t.Title, &t.Description, &t.DateMs, &t.Completed); err != nil {
			return nil, err
		}
		items = append(items, t)
	}
	return items, rows.Err()
}

// ---- daily profits (incomes)

const upsertIncome = `
INSERT OR REPLACE INTO daily_profits (id, amount_cents, date_ms, note)
VALUES (NULLIF(?, 0), ?, ?, ?)`

func (q *Queries) UpsertIncome(ctx context.Context, i Income) (int64, error) {
	res, err := q.db.ExecContext(ctx, upsertIncome, i.ID, i.AmountCents, i.DateMs, i.Note)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

const updateIncome = `
UPDATE daily_profits SET amount_cents = ?, date_ms = ?, note = ?
WHERE id = ?`

func (q *Queries) UpdateIncome(ctx context.Context, i Income) (int64, error) {
	res, err := q.db.ExecContext(ctx, updateIncome, i.AmountCents, i.DateMs, i.Note, i.ID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const deleteIncome = `DELETE FROM daily_profits WHERE id = ?`

func (q *Queries) DeleteIncome(ctx context.Context, id int64) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteIncome, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const getIncome = `
SELECT id, amount_cents, date_ms, note
FROM daily_profits WHERE id = ?`

func (q *Queries) GetIncome(ctx context.Context, id int64) (Income, error) {
	var i Income
	err := q.db.QueryRowContext(ctx, getIncome, id).Scan(&i.ID, &i.AmountCents, &i.DateMs, &i.Note)
	return i, err
}

const listIncomesBetween = `
SELECT id, amount_cents, date_ms, note
FROM daily_profits
WHERE date_ms BETWEEN ? AND ?
ORDER BY date_ms DESC, id DESC`

func (q *Queries) ListIncomesBetween(ctx context.Context, startMs, endMs int64) ([]Income, error) {
	return queryIncomes(ctx, q.db, listIncomesBetween, startMs, endMs)
}

const listAllIncomes = `
SELECT id, amount_cents, date_ms, note
FROM daily_profits
ORDER BY date_ms DESC, id DESC`

func (q *Queries) ListAllIncomes(ctx context.Context) ([]Income, error) {
	return queryIncomes(ctx, q.db, listAllIncomes)
}

func queryIncomes(ctx context.Context, db DBTX, query string, args ...interface{}) ([]Income, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []Income{}
	for rows.Next() {
		var i Income
		if err := rows.Scan(&i.ID, &i.AmountCents, &i.DateMs, &i.Note); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const sumIncomesBetween = `
SELECT COALESCE(SUM(amount_cents), 0)
FROM daily_profits
WHERE date_ms BETWEEN ? AND ?`

func (q *Queries) SumIncomesBetween(ctx context.Context, startMs, endMs int64) (int64, error) {
	var total int64
	err := q.db.QueryRowContext(ctx, sumIncomesBetween, startMs, endMs).Scan(&total)
	return total, err
}

// ---- expenses

const upsertExpense = `
INSERT OR REPLACE INTO expenses (id, amount_cents, date_ms, note, category)
VALUES (NULLIF(?, 0), ?, ?, ?, ?)`

func (q *Queries) UpsertExpense(ctx context.Context, e Expense) (int64, error) {
	res, err := q.db.ExecContext(ctx, upsertExpense, e.ID, e.AmountCents, e.DateMs, e.Note, e.Category)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

const updateExpense = `
UPDATE expenses SET amount_cents = ?, date_ms = ?, note = ?, category = ?
WHERE id = ?`

func (q *Queries) UpdateExpense(ctx context.Context, e Expense) (int64, error) {
	res, err := q.db.ExecContext(ctx, updateExpense, e.AmountCents, e.DateMs, e.Note, e.Category, e.ID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const deleteExpense = `DELETE FROM expenses WHERE id = ?`

func (q *Queries) DeleteExpense(ctx context.Context, id int64) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteExpense, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const getExpense = `
SELECT id, amount_cents, date_ms, note, category
FROM expenses WHERE id = ?`

func (q *Queries) GetExpense(ctx context.Context, id int64) (Expense, error) {
	var e Expense
	err := q.db.QueryRowContext(ctx, getExpense, id).Scan(&e.ID, &e.AmountCents, &e.DateMs, &e.Note, &e.Category)
	return e, err
}

const listExpensesBetween = `
SELECT id, amount_cents, date_ms, note, category
FROM expenses
WHERE date_ms BETWEEN ? AND ?
ORDER BY date_ms DESC, id DESC`

func (q *Queries) ListExpensesBetween(ctx context.Context, startMs, endMs int64) ([]Expense, error) {
	return queryExpenses(ctx, q.db, listExpensesBetween, startMs, endMs)
}

const listExpensesByCategory = `
SELECT id, amount_cents, date_ms, note, category
FROM expenses
WHERE category = ?
ORDER BY date_ms DESC, id DESC`

func (q *Queries) ListExpensesByCategory(ctx context.Context, category string) ([]Expense, error) {
	return queryExpenses(ctx, q.db, listExpensesByCategory, category)
}

const listAllExpenses = `
SELECT id, amount_cents, date_ms, note, category
FROM expenses
ORDER BY date_ms DESC, id DESC`

func (q *Queries) ListAllExpenses(ctx context.Context) ([]Expense, error) {
	return queryExpenses(ctx, q.db, listAllExpenses)
}

func queryExpenses(ctx context.Context, db DBTX, query string, args ...interface{}) ([]Expense, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []Expense{}
	for rows.Next() {
		var e Expense
		if err := rows.Scan(&e.ID, &e.AmountCents, &e.DateMs, &e.Note, &e.Category); err != nil {
			return nil, err
		}
		items = append(items, e)
	}
	return items, rows.Err()
}

const sumExpensesBetween = `
SELECT COALESCE(SUM(amount_cents), 0)
FROM expenses
WHERE date_ms BETWEEN ? AND ?`

func (q *Queries) SumExpensesBetween(ctx context.Context, startMs, endMs int64) (int64, error) {
	var total int64
	err := q.db.QueryRowContext(ctx, sumExpensesBetween, startMs, endMs).Scan(&total)
	return total, err
}

const sumExpensesByCategory = `
SELECT category, SUM(amount_cents) AS total_amount
FROM expenses
WHERE date_ms BETWEEN ? AND ?
GROUP BY category
ORDER BY total_amount DESC, category ASC`

func (q *Queries) SumExpensesByCategory(ctx context.Context, startMs, endMs int64) ([]CategorySum, error) {
	rows, err := q.db.QueryContext(ctx, sumExpensesByCategory, startMs, endMs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []CategorySum{}
	for rows.Next() {
		var cs CategorySum
		if err := rows.Scan(&cs.Category, &cs.TotalAmount); err != nil {
			return nil, err
		}
		items = append(items, cs)
	}
	return items, rows.Err()
}

const listExpenseCategories = `
SELECT DISTINCT category FROM expenses ORDER BY category ASC`

func (q *Queries) ListExpenseCategories(ctx context.Context) ([]string, error) {
	rows, err := q.db.QueryContext(ctx, listExpenseCategories)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []string{}
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, err
		}
		items = append(items, c)
	}
	return items, rows.Err()
}
