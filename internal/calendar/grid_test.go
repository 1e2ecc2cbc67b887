package calendar

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lexify/internal/core"
)

// stubIncomes returns a fixed amount per day key.
type stubIncomes struct {
	mu     sync.Mutex
	byDay  map[string]core.Money
	calls  int
	failOn string
}

func (s *stubIncomes) SumIncome(_ context.Context, r Range) (core.Money, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if r.Key() == s.failOn {
		return core.Money{}, errors.New("database is locked")
	}
	return s.byDay[r.Key()], nil
}

func TestGenerateShape(t *testing.T) {
	// Check every weekday as "today" so the window placement is covered.
	for offset := 0; offset < 7; offset++ {
		now := time.Date(2024, 6, 10+offset, 13, 0, 0, 0, time.UTC)
		cal := New(time.UTC, LabelsEN, fixedClock(now))
		gen := NewGenerator(cal, nil, 2)

		grid, err := gen.Generate(context.Background())
		require.NoError(t, err)
		require.Len(t, grid.Days, GridDays)

		first := grid.Days[0]
		assert.Equal(t, time.Monday, first.Instant.Weekday())
		assert.Equal(t, time.Date(2024, 5, 27, 0, 0, 0, 0, time.UTC), first.Instant)
		assert.Equal(t, time.Sunday, grid.Days[GridDays-1].Instant.Weekday())

		todays := 0
		for i, d := range grid.Days {
			if d.Today {
				todays++
				assert.Equal(t, i, grid.TodayIndex)
			}
			assert.Equal(t, d.Instant.Weekday() == time.Sunday, d.EndOfWeek)
			wd := d.Instant.Weekday()
			assert.Equal(t, wd == time.Saturday || wd == time.Sunday, d.Weekend)
			assert.Equal(t, LabelsEN.For(wd), d.Label)
		}
		assert.Equal(t, 1, todays, "now=%s", now)
		assert.Equal(t, 14+offset, grid.TodayIndex)

		today, ok := grid.Today()
		require.True(t, ok)
		assert.Equal(t, 10+offset, today.Day)
		assert.Equal(t, time.June, today.Month)
		assert.Equal(t, 2024, today.Year)
	}
}

func TestGenerateDailyIncome(t *testing.T) {
	now := time.Date(2024, 6, 12, 9, 0, 0, 0, time.UTC)
	cal := New(time.UTC, LabelsRU, fixedClock(now))
	incomes := &stubIncomes{byDay: map[string]core.Money{
		"2024-06-10": {Cents: 15000},
		"2024-06-11": {Cents: 2500},
	}}

	grid, err := NewGenerator(cal, incomes, 3).Generate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, GridDays, incomes.calls)

	for _, d := range grid.Days {
		want := incomes.byDay[d.Instant.Format("2006-01-02")]
		assert.Equal(t, want, d.Income, d.Instant.String())
	}
	assert.Equal(t, "Пн", grid.Days[0].Label)
}

func TestGenerateFailure(t *testing.T) {
	now := time.Date(2024, 6, 12, 9, 0, 0, 0, time.UTC)
	cal := New(time.UTC, LabelsEN, fixedClock(now))
	incomes := &stubIncomes{failOn: "2024-06-01"}

	_, err := NewGenerator(cal, incomes, 1).Generate(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2024-06-01")
}

func TestGridItems(t *testing.T) {
	now := time.Date(2024, 6, 12, 9, 0, 0, 0, time.UTC)
	grid, err := NewGenerator(New(time.UTC, LabelsEN, fixedClock(now)), nil, 0).Generate(context.Background())
	require.NoError(t, err)

	items := grid.Items()
	// Six weeks produce five separators; none after the final Sunday.
	assert.Len(t, items, GridDays+5)
	assert.Equal(t, ItemDay, items[len(items)-1].Kind)
	assert.Equal(t, ItemSeparator, items[7].Kind)
	assert.Equal(t, time.Sunday, items[6].Day.Instant.Weekday())
}

func TestGridTodayMissing(t *testing.T) {
	_, ok := Grid{TodayIndex: -1}.Today()
	assert.False(t, ok)
}
