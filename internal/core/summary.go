package core

import "time"

// CategoryAmount represents an amount aggregated by category name.
type CategoryAmount struct {
	Name   string
	Amount Money
}

// PeriodSummary rolls up incomes and expenses between two instants.
type PeriodSummary struct {
	From       time.Time
	To         time.Time
	Income     Money
	Expenses   Money
	ByCategory []CategoryAmount
}

// Balance is income minus expenses; it can be negative.
func (s PeriodSummary) Balance() Money {
	return Money{Cents: s.Income.Cents - s.Expenses.Cents}
}
