package state

import (
	"context"

	"lexify/internal/calendar"
	"lexify/internal/core"
	"lexify/internal/live"
	"lexify/internal/log"
)

// HomeModel is the overview: the calendar grid, today's tasks and the
// income totals of today and of the current week.
type HomeModel struct {
	deps      Deps
	generator *calendar.Generator
	logger    *log.Logger

	Grid        *Observable[calendar.Grid]
	TodayTasks  *Observable[TaskState]
	TodayIncome *Observable[core.Money]
	WeekIncome  *Observable[core.Money]
	// IncomeError holds the user message of the last failed income refresh,
	// "" once a refresh succeeds. The income values keep their last good state.
	IncomeError *Observable[string]
}

// NewHomeModel creates the model; concurrency bounds the per-day income
// lookups of the grid.
func NewHomeModel(deps Deps, concurrency int) *HomeModel {
	return &HomeModel{
		deps:        deps,
		generator:   calendar.NewGenerator(deps.Calendar, deps.Ledger, concurrency),
		logger:      deps.logger(),
		Grid:        NewObservable(calendar.Grid{TodayIndex: -1}),
		TodayTasks:  NewObservable(TaskState{Kind: Loading}),
		TodayIncome: NewObservable(core.Money{}),
		WeekIncome:  NewObservable(core.Money{}),
		IncomeError: NewObservable(""),
	}
}

type homeIncome struct {
	grid  calendar.Grid
	today core.Money
	week  core.Money
}

// Start keeps the observables in sync with the store until ctx ends. The
// grid is regenerated on every income change. The returned channel is
// closed once all watches have stopped.
func (m *HomeModel) Start(ctx context.Context) <-chan struct{} {
	exec := m.deps.Executor

	tasks := live.Watch(ctx, m.deps.Hub, func(ctx context.Context) ([]core.Task, error) {
		var out []core.Task
		err := exec.Do(ctx, func(ctx context.Context) (err error) {
			out, err = m.deps.Tasks.Today(ctx)
			return err
		})
		return out, err
	}, live.TopicTasks)

	incomes := live.Watch(ctx, m.deps.Hub, func(ctx context.Context) (homeIncome, error) {
		var out homeIncome
		err := exec.Do(ctx, func(ctx context.Context) (err error) {
			if out.grid, err = m.generator.Generate(ctx); err != nil {
				return err
			}
			if out.today, err = m.deps.Ledger.TodayIncome(ctx); err != nil {
				return err
			}
			out.week, err = m.deps.Ledger.WeekToDateIncome(ctx)
			return err
		})
		return out, err
	}, live.TopicIncomes)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for tasks != nil || incomes != nil {
			select {
			case snap, ok := <-tasks:
				if !ok {
					tasks = nil
					continue
				}
				if snap.Err != nil {
					m.logger.Warn("Failed to load today's tasks", log.FieldError, snap.Err)
					m.TodayTasks.Update(func(s TaskState) TaskState { return s.failed(snap.Err) })
					continue
				}
				m.TodayTasks.Set(TasksLoaded(snap.Value))
			case snap, ok := <-incomes:
				if !ok {
					incomes = nil
					continue
				}
				if snap.Err != nil {
					m.logger.Warn("Failed to load income overview", log.FieldError, snap.Err)
					m.IncomeError.Set(Message(snap.Err))
					continue
				}
				m.IncomeError.Set("")
				m.Grid.Set(snap.Value.grid)
				m.TodayIncome.Set(snap.Value.today)
				m.WeekIncome.Set(snap.Value.week)
			}
		}
	}()
	return done
}

// ToggleTask flips a task of today's list in the background.
func (m *HomeModel) ToggleTask(ctx context.Context, task core.Task, done func(error)) {
	m.deps.Executor.Go(ctx, func(ctx context.Context) error {
		_, err := m.deps.Tasks.Toggle(ctx, task)
		return err
	}, m.afterWrite(done))
}

func (m *HomeModel) DeleteTask(ctx context.Context, task core.Task, done func(error)) {
	m.deps.Executor.Go(ctx, func(ctx context.Context) error {
		return m.deps.Tasks.Delete(ctx, task)
	}, m.afterWrite(done))
}

func (m *HomeModel) afterWrite(done func(error)) func(error) {
	return func(err error) {
		if err != nil {
			m.TodayTasks.Update(func(s TaskState) TaskState { return s.failed(err) })
		}
		if done != nil {
			done(err)
		}
	}
}
