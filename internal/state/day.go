package state

import (
	"context"
	"strings"
	"time"

	"lexify/internal/calendar"
	"lexify/internal/core"
	"lexify/internal/live"
	"lexify/internal/log"
	"lexify/internal/services"
)

// Deps are the collaborators shared by every state holder.
type Deps struct {
	Calendar *calendar.Calendar
	Tasks    *services.TaskService
	Ledger   *services.LedgerService
	Hub      *live.Hub
	Executor *Executor
	Logger   *log.Logger
}

func (d Deps) logger() *log.Logger {
	if d.Logger == nil {
		return log.Default().WithComponent(log.ComponentState)
	}
	return d.Logger.WithComponent(log.ComponentState)
}

// DayModel is the state of one selected day: its tasks, incomes and
// expenses. Days before today are read-only for tasks.
type DayModel struct {
	deps   Deps
	day    time.Time
	logger *log.Logger

	Tasks        *Observable[TaskState]
	Incomes      *Observable[[]core.Income]
	Expenses     *Observable[[]core.Expense]
	IncomeTotal  *Observable[core.Money]
	ExpenseTotal *Observable[core.Money]
}

func NewDayModel(deps Deps, day time.Time) *DayModel {
	return &DayModel{
		deps:         deps,
		day:          day.In(deps.Calendar.Location()),
		logger:       deps.logger(),
		Tasks:        NewObservable(TaskState{Kind: Loading}),
		Incomes:      NewObservable([]core.Income{}),
		Expenses:     NewObservable([]core.Expense{}),
		IncomeTotal:  NewObservable(core.Money{}),
		ExpenseTotal: NewObservable(core.Money{}),
	}
}

// Day returns the selected instant.
func (m *DayModel) Day() time.Time {
	return m.day
}

func (m *DayModel) Range() calendar.Range {
	return m.deps.Calendar.DayRange(m.day)
}

// ReadOnly reports whether the day lies before today.
func (m *DayModel) ReadOnly() bool {
	return m.deps.Calendar.IsPast(m.day)
}

type dayLedger struct {
	incomes      []core.Income
	expenses     []core.Expense
	incomeTotal  core.Money
	expenseTotal core.Money
}

// Start keeps the observables in sync with the store until ctx ends.
// The returned channel is closed once all watches have stopped.
func (m *DayModel) Start(ctx context.Context) <-chan struct{} {
	rng := m.Range()
	exec := m.deps.Executor

	tasks := live.Watch(ctx, m.deps.Hub, func(ctx context.Context) ([]core.Task, error) {
		var out []core.Task
		err := exec.Do(ctx, func(ctx context.Context) (err error) {
			out, err = m.deps.Tasks.TasksIn(ctx, rng)
			return err
		})
		return out, err
	}, live.TopicTasks)

	ledger := live.Watch(ctx, m.deps.Hub, func(ctx context.Context) (dayLedger, error) {
		var out dayLedger
		err := exec.Do(ctx, func(ctx context.Context) (err error) {
			if out.incomes, err = m.deps.Ledger.IncomesIn(ctx, rng); err != nil {
				return err
			}
			if out.expenses, err = m.deps.Ledger.ExpensesIn(ctx, rng); err != nil {
				return err
			}
			if out.incomeTotal, err = m.deps.Ledger.SumIncome(ctx, rng); err != nil {
				return err
			}
			out.expenseTotal, err = m.deps.Ledger.SumExpenses(ctx, rng)
			return err
		})
		return out, err
	}, live.TopicIncomes, live.TopicExpenses)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for tasks != nil || ledger != nil {
			select {
			case snap, ok := <-tasks:
				if !ok {
					tasks = nil
					continue
				}
				m.applyTasks(snap)
			case snap, ok := <-ledger:
				if !ok {
					ledger = nil
					continue
				}
				m.applyLedger(snap)
			}
		}
	}()
	return done
}

func (m *DayModel) applyTasks(snap live.Snapshot[[]core.Task]) {
	if snap.Err != nil {
		m.logger.Warn("Failed to load tasks", log.FieldDay, m.Range().Key(), log.FieldError, snap.Err)
		m.Tasks.Update(func(s TaskState) TaskState { return s.failed(snap.Err) })
		return
	}
	m.Tasks.Set(TasksLoaded(snap.Value))
}

func (m *DayModel) applyLedger(snap live.Snapshot[dayLedger]) {
	if snap.Err != nil {
		m.logger.Warn("Failed to load ledger", log.FieldDay, m.Range().Key(), log.FieldError, snap.Err)
		return
	}
	m.Incomes.Set(snap.Value.incomes)
	m.Expenses.Set(snap.Value.expenses)
	m.IncomeTotal.Set(snap.Value.incomeTotal)
	m.ExpenseTotal.Set(snap.Value.expenseTotal)
}

// run executes a store write in the background. A failure turns the task
// list into Error while keeping the tasks shown so far.
func (m *DayModel) run(ctx context.Context, fn func(context.Context) error, done func(error)) {
	m.deps.Executor.Go(ctx, fn, func(err error) {
		if err != nil {
			m.logger.Warn("Write failed", log.FieldDay, m.Range().Key(), log.FieldError, err)
			m.Tasks.Update(func(s TaskState) TaskState { return s.failed(err) })
		}
		if done != nil {
			done(err)
		}
	})
}

// AddTask validates the input synchronously and stores the task in the
// background. done receives the outcome and may be nil.
func (m *DayModel) AddTask(ctx context.Context, title, description string, done func(error)) error {
	if m.ReadOnly() {
		return core.ErrPastDay
	}
	task := core.Task{
		Title:       strings.TrimSpace(title),
		Description: strings.TrimSpace(description),
		Date:        m.day,
	}
	if err := task.Validate(); err != nil {
		return err
	}
	m.run(ctx, func(ctx context.Context) error {
		_, err := m.deps.Tasks.Add(ctx, task)
		return err
	}, done)
	return nil
}

func (m *DayModel) ToggleTask(ctx context.Context, task core.Task, done func(error)) error {
	if m.ReadOnly() {
		return core.ErrPastDay
	}
	m.run(ctx, func(ctx context.Context) error {
		_, err := m.deps.Tasks.Toggle(ctx, task)
		return err
	}, done)
	return nil
}

func (m *DayModel) DeleteTask(ctx context.Context, task core.Task, done func(error)) error {
	if m.ReadOnly() {
		return core.ErrPastDay
	}
	m.run(ctx, func(ctx context.Context) error {
		return m.deps.Tasks.Delete(ctx, task)
	}, done)
	return nil
}

// AddIncome parses amountText and stores an income on the selected day.
func (m *DayModel) AddIncome(ctx context.Context, amountText, note string, done func(error)) error {
	amount, err := core.ParseAmount(amountText)
	if err != nil {
		return err
	}
	income := core.Income{Amount: amount, Date: m.day, Note: strings.TrimSpace(note)}
	if err := income.Validate(); err != nil {
		return err
	}
	m.run(ctx, func(ctx context.Context) error {
		_, err := m.deps.Ledger.AddIncome(ctx, income)
		return err
	}, done)
	return nil
}

// AddExpense stores an expense; the note becomes "category: note".
func (m *DayModel) AddExpense(ctx context.Context, amountText, category, note string, done func(error)) error {
	amount, err := core.ParseAmount(amountText)
	if err != nil {
		return err
	}
	expense := core.Expense{
		Amount:   amount,
		Date:     m.day,
		Category: strings.TrimSpace(category),
		Note:     core.ExpenseNote(category, note),
	}
	if err := expense.Validate(); err != nil {
		return err
	}
	m.run(ctx, func(ctx context.Context) error {
		_, err := m.deps.Ledger.AddExpense(ctx, expense)
		return err
	}, done)
	return nil
}

func (m *DayModel) DeleteIncome(ctx context.Context, income core.Income, done func(error)) {
	m.run(ctx, func(ctx context.Context) error {
		return m.deps.Ledger.DeleteIncome(ctx, income)
	}, done)
}

func (m *DayModel) DeleteExpense(ctx context.Context, expense core.Expense, done func(error)) {
	m.run(ctx, func(ctx context.Context) error {
		return m.deps.Ledger.DeleteExpense(ctx, expense)
	}, done)
}
