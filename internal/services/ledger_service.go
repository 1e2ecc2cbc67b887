package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"lexify/internal/cache"
	"lexify/internal/calendar"
	"lexify/internal/core"
	"lexify/internal/live"
	"lexify/internal/log"
	"lexify/internal/storage"
)

// LedgerStore is the persistence surface needed for incomes and expenses.
type LedgerStore interface {
	InsertIncome(ctx context.Context, i core.Income) (core.Income, error)
	UpdateIncome(ctx context.Context, i core.Income) error
	DeleteIncomeByID(ctx context.Context, id int64) error
	GetIncome(ctx context.Context, id int64) (core.Income, error)
	ListIncomes(ctx context.Context, r calendar.Range) ([]core.Income, error)
	AllIncomes(ctx context.Context) ([]core.Income, error)
	SumIncome(ctx context.Context, r calendar.Range) (core.Money, error)

	InsertExpense(ctx context.Context, e core.Expense) (core.Expense, error)
	InsertExpenses(ctx context.Context, expenses []core.Expense) ([]core.Expense, error)
	UpdateExpense(ctx context.Context, e core.Expense) error
	DeleteExpenseByID(ctx context.Context, id int64) error
	GetExpense(ctx context.Context, id int64) (core.Expense, error)
	ListExpenses(ctx context.Context, r calendar.Range) ([]core.Expense, error)
	AllExpenses(ctx context.Context) ([]core.Expense, error)
	SumExpenses(ctx context.Context, r calendar.Range) (core.Money, error)
	SumExpensesByCategory(ctx context.Context, r calendar.Range) ([]core.CategoryAmount, error)
	ExpenseCategories(ctx context.Context) ([]string, error)
}

// LedgerService stores incomes and expenses and answers the aggregation
// queries. Daily income totals are cached per day bucket; every income write
// evicts the buckets it touches.
type LedgerService struct {
	store LedgerStore
	cal   *calendar.Calendar
	daily cache.Cache[core.Money]
	notifier
}

// NewLedgerService creates the service. daily may be nil to disable caching.
func NewLedgerService(store LedgerStore, cal *calendar.Calendar, daily cache.Cache[core.Money], hub *live.Hub, publisher ChangePublisher, logger *log.Logger) *LedgerService {
	if logger == nil {
		logger = log.Default()
	}
	return &LedgerService{
		store: store,
		cal:   cal,
		daily: daily,
		notifier: notifier{
			hub:       hub,
			publisher: publisher,
			logger:    logger.WithComponent(log.ComponentLedger),
		},
	}
}

func (s *LedgerService) evictDay(t time.Time) {
	if s.daily == nil || t.IsZero() {
		return
	}
	s.daily.Delete(s.cal.DayRange(t).Key())
}

// ---- incomes

func (s *LedgerService) AddIncome(ctx context.Context, i core.Income) (core.Income, error) {
	i.Note = strings.TrimSpace(i.Note)
	if err := i.Validate(); err != nil {
		return core.Income{}, err
	}

	// An explicit identifier replaces an existing row, which may sit in
	// another day bucket.
	var previous time.Time
	if i.ID != 0 {
		old, err := s.store.GetIncome(ctx, i.ID)
		switch {
		case err == nil:
			previous = old.Date
		case !errors.Is(err, storage.ErrNotFound):
			return core.Income{}, fmt.Errorf("add income: %w", err)
		}
	}

	stored, err := s.store.InsertIncome(ctx, i)
	if err != nil {
		return core.Income{}, fmt.Errorf("add income: %w", err)
	}
	s.evictDay(previous)
	s.evictDay(stored.Date)

	s.logger.DebugContext(ctx, "Income added",
		log.NewFields().WithOperation(log.OpCreate).WithRecord(string(core.KindIncome), stored.ID).WithAmount(stored.Amount.Cents).ToSlice()...)
	s.committed(ctx, live.TopicIncomes, core.Change{Kind: core.KindIncome, Op: core.OpUpsert, ID: stored.ID, Date: stored.Date})
	return stored, nil
}

// UpdateIncome replaces a stored income. Both the old and the new day
// bucket are evicted from the daily cache.
func (s *LedgerService) UpdateIncome(ctx context.Context, i core.Income) error {
	i.Note = strings.TrimSpace(i.Note)
	if err := i.Validate(); err != nil {
		return err
	}
	old, err := s.store.GetIncome(ctx, i.ID)
	if err != nil {
		return fmt.Errorf("update income: %w", err)
	}
	if err := s.store.UpdateIncome(ctx, i); err != nil {
		return fmt.Errorf("update income: %w", err)
	}
	s.evictDay(old.Date)
	s.evictDay(i.Date)
	s.committed(ctx, live.TopicIncomes, core.Change{Kind: core.KindIncome, Op: core.OpUpsert, ID: i.ID, Date: i.Date})
	return nil
}

// DeleteIncome removes the stored income with i's identifier.
func (s *LedgerService) DeleteIncome(ctx context.Context, i core.Income) error {
	return s.DeleteIncomeByID(ctx, i.ID)
}

func (s *LedgerService) DeleteIncomeByID(ctx context.Context, id int64) error {
	old, err := s.store.GetIncome(ctx, id)
	if err != nil {
		return fmt.Errorf("delete income: %w", err)
	}
	if err := s.store.DeleteIncomeByID(ctx, id); err != nil {
		return fmt.Errorf("delete income: %w", err)
	}
	s.evictDay(old.Date)
	s.committed(ctx, live.TopicIncomes, core.Change{Kind: core.KindIncome, Op: core.OpDelete, ID: id, Date: old.Date})
	return nil
}

func (s *LedgerService) GetIncome(ctx context.Context, id int64) (core.Income, error) {
	return s.store.GetIncome(ctx, id)
}

// IncomesIn lists the incomes of a boundary pair, newest first.
func (s *LedgerService) IncomesIn(ctx context.Context, r calendar.Range) ([]core.Income, error) {
	return s.store.ListIncomes(ctx, r)
}

func (s *LedgerService) AllIncomes(ctx context.Context) ([]core.Income, error) {
	return s.store.AllIncomes(ctx)
}

// SumIncome totals the incomes of r; zero when there are none. Ranges that
// cover exactly one day bucket go through the daily cache.
func (s *LedgerService) SumIncome(ctx context.Context, r calendar.Range) (core.Money, error) {
	if day := s.cal.DayRange(r.Start); day.Start.Equal(r.Start) && day.End.Equal(r.End) {
		return s.DailyIncome(ctx, r.Start)
	}
	return s.store.SumIncome(ctx, r)
}

// DailyIncome totals the incomes of day's bucket.
func (s *LedgerService) DailyIncome(ctx context.Context, day time.Time) (core.Money, error) {
	r := s.cal.DayRange(day)
	if s.daily == nil {
		return s.store.SumIncome(ctx, r)
	}
	if total, ok := s.daily.Get(r.Key()); ok {
		return total, nil
	}

	// A write evicting this day while the sum runs leaves the cache empty.
	gen := s.daily.Generation()
	total, err := s.store.SumIncome(ctx, r)
	if err != nil {
		return core.Money{}, err
	}
	s.daily.SetAt(r.Key(), total, gen)
	return total, nil
}

func (s *LedgerService) TodayIncome(ctx context.Context) (core.Money, error) {
	return s.DailyIncome(ctx, s.cal.Now())
}

// WeekToDateIncome totals incomes from Monday 00:00 through the end of today.
func (s *LedgerService) WeekToDateIncome(ctx context.Context) (core.Money, error) {
	return s.store.SumIncome(ctx, s.cal.WeekToDate())
}

// ---- expenses

func normalizeExpense(e core.Expense) core.Expense {
	e.Category = strings.TrimSpace(e.Category)
	e.Note = strings.TrimSpace(e.Note)
	if e.Note == "" {
		e.Note = e.Category
	}
	return e
}

func (s *LedgerService) AddExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	e = normalizeExpense(e)
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}

	stored, err := s.store.InsertExpense(ctx, e)
	if err != nil {
		return core.Expense{}, fmt.Errorf("add expense: %w", err)
	}

	s.logger.DebugContext(ctx, "Expense added",
		log.NewFields().WithOperation(log.OpCreate).WithRecord(string(core.KindExpense), stored.ID).WithAmount(stored.Amount.Cents).ToSlice()...)
	s.committed(ctx, live.TopicExpenses, core.Change{Kind: core.KindExpense, Op: core.OpUpsert, ID: stored.ID, Date: stored.Date})
	return stored, nil
}

// AddExpenses stores all expenses atomically. Nothing is written when any
// of them fails validation.
func (s *LedgerService) AddExpenses(ctx context.Context, expenses []core.Expense) ([]core.Expense, error) {
	if len(expenses) == 0 {
		return []core.Expense{}, nil
	}
	normalized := make([]core.Expense, len(expenses))
	for i, e := range expenses {
		e = normalizeExpense(e)
		if err := e.Validate(); err != nil {
			return nil, fmt.Errorf("expense %d: %w", i+1, err)
		}
		normalized[i] = e
	}

	stored, err := s.store.InsertExpenses(ctx, normalized)
	if err != nil {
		return nil, fmt.Errorf("add expenses: %w", err)
	}

	s.hub.Notify(live.TopicExpenses)
	if s.publisher != nil {
		for _, e := range stored {
			s.publish(ctx, core.Change{Kind: core.KindExpense, Op: core.OpUpsert, ID: e.ID, Date: e.Date})
		}
	}
	s.logger.InfoContext(ctx, "Expenses added", log.FieldCount, len(stored))
	return stored, nil
}

func (s *LedgerService) UpdateExpense(ctx context.Context, e core.Expense) error {
	e = normalizeExpense(e)
	if err := e.Validate(); err != nil {
		return err
	}
	if err := s.store.UpdateExpense(ctx, e); err != nil {
		return fmt.Errorf("update expense: %w", err)
	}
	s.committed(ctx, live.TopicExpenses, core.Change{Kind: core.KindExpense, Op: core.OpUpsert, ID: e.ID, Date: e.Date})
	return nil
}

func (s *LedgerService) DeleteExpense(ctx context.Context, e core.Expense) error {
	if err := s.store.DeleteExpenseByID(ctx, e.ID); err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	s.committed(ctx, live.TopicExpenses, core.Change{Kind: core.KindExpense, Op: core.OpDelete, ID: e.ID, Date: e.Date})
	return nil
}

func (s *LedgerService) DeleteExpenseByID(ctx context.Context, id int64) error {
	e, err := s.store.GetExpense(ctx, id)
	if err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	return s.DeleteExpense(ctx, e)
}

func (s *LedgerService) GetExpense(ctx context.Context, id int64) (core.Expense, error) {
	return s.store.GetExpense(ctx, id)
}

// ExpensesIn lists the expenses of a boundary pair, newest first.
func (s *LedgerService) ExpensesIn(ctx context.Context, r calendar.Range) ([]core.Expense, error) {
	return s.store.ListExpenses(ctx, r)
}

func (s *LedgerService) AllExpenses(ctx context.Context) ([]core.Expense, error) {
	return s.store.AllExpenses(ctx)
}

func (s *LedgerService) SumExpenses(ctx context.Context, r calendar.Range) (core.Money, error) {
	return s.store.SumExpenses(ctx, r)
}

func (s *LedgerService) ExpensesByCategory(ctx context.Context, r calendar.Range) ([]core.CategoryAmount, error) {
	return s.store.SumExpensesByCategory(ctx, r)
}

// Categories returns every expense category used so far, sorted.
func (s *LedgerService) Categories(ctx context.Context) ([]string, error) {
	return s.store.ExpenseCategories(ctx)
}

// Summary rolls up incomes and expenses of r.
func (s *LedgerService) Summary(ctx context.Context, r calendar.Range) (core.PeriodSummary, error) {
	summary := core.PeriodSummary{From: r.Start, To: r.End}

	income, err := s.store.SumIncome(ctx, r)
	if err != nil {
		return summary, fmt.Errorf("summary income: %w", err)
	}
	expenses, err := s.store.SumExpenses(ctx, r)
	if err != nil {
		return summary, fmt.Errorf("summary expenses: %w", err)
	}
	byCategory, err := s.store.SumExpensesByCategory(ctx, r)
	if err != nil {
		return summary, fmt.Errorf("summary categories: %w", err)
	}

	summary.Income = income
	summary.Expenses = expenses
	summary.ByCategory = byCategory
	return summary, nil
}
