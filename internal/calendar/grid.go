package calendar

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"lexify/internal/core"
)

const (
	// GridDays is the number of days in the scrolling calendar.
	GridDays = 42
	// GridWeeksBack is how many full weeks before the current one are shown.
	GridWeeksBack = 2

	defaultGridConcurrency = 4
)

// IncomeSummer sums income entries within a boundary pair.
type IncomeSummer interface {
	SumIncome(ctx context.Context, r Range) (core.Money, error)
}

// Day describes one cell of the calendar grid.
type Day struct {
	Label     string
	Day       int
	Month     time.Month
	Year      int
	Instant   time.Time // midnight of the day
	Today     bool
	Weekend   bool
	EndOfWeek bool
	Income    core.Money
}

// Range returns the day's boundary pair.
func (d Day) Range(c *Calendar) Range {
	return c.DayRange(d.Instant)
}

// Grid is a generated calendar window.
type Grid struct {
	Days []Day
	// TodayIndex is the position of today in Days, or -1.
	TodayIndex int
}

// Today returns today's descriptor when it is part of the grid.
func (g Grid) Today() (Day, bool) {
	if g.TodayIndex < 0 || g.TodayIndex >= len(g.Days) {
		return Day{}, false
	}
	return g.Days[g.TodayIndex], true
}

// ItemKind tags the entries of Grid.Items.
type ItemKind int

const (
	ItemDay ItemKind = iota
	ItemSeparator
)

// Item is either a day or a week separator.
type Item struct {
	Kind ItemKind
	Day  Day // zero for separators
}

// Items lays the grid out as a list with a separator after every Sunday,
// except after the final day.
func (g Grid) Items() []Item {
	items := make([]Item, 0, len(g.Days)+len(g.Days)/7)
	for i, d := range g.Days {
		items = append(items, Item{Kind: ItemDay, Day: d})
		if d.EndOfWeek && i < len(g.Days)-1 {
			items = append(items, Item{Kind: ItemSeparator})
		}
	}
	return items
}

// Generator builds calendar grids with per-day income totals.
type Generator struct {
	cal         *Calendar
	incomes     IncomeSummer
	concurrency int
}

// NewGenerator creates a grid generator. concurrency bounds the number of
// simultaneous income lookups; values below 1 use a default.
func NewGenerator(cal *Calendar, incomes IncomeSummer, concurrency int) *Generator {
	if concurrency < 1 {
		concurrency = defaultGridConcurrency
	}
	return &Generator{cal: cal, incomes: incomes, concurrency: concurrency}
}

// Start returns the first day of the grid for the current week: Monday of
// this week minus GridWeeksBack weeks.
func (g *Generator) Start() time.Time {
	return g.cal.AddDays(g.cal.StartOfWeek(g.cal.Now()), -7*GridWeeksBack)
}

// Generate builds the grid. It is recomputed on every call and never cached.
func (g *Generator) Generate(ctx context.Context) (Grid, error) {
	now := g.cal.Now()
	start := g.Start()

	days := make([]Day, GridDays)
	todayIndex := -1
	for i := range days {
		instant := g.cal.AddDays(start, i)
		wd := instant.Weekday()
		days[i] = Day{
			Label:     g.cal.labels.For(wd),
			Day:       instant.Day(),
			Month:     instant.Month(),
			Year:      instant.Year(),
			Instant:   instant,
			Today:     g.cal.SameDay(instant, now),
			Weekend:   wd == time.Saturday || wd == time.Sunday,
			EndOfWeek: wd == time.Sunday,
		}
		if days[i].Today && todayIndex < 0 {
			todayIndex = i
		}
	}

	if g.incomes != nil {
		eg, egCtx := errgroup.WithContext(ctx)
		eg.SetLimit(g.concurrency)
		for i := range days {
			eg.Go(func() error {
				total, err := g.incomes.SumIncome(egCtx, g.cal.DayRange(days[i].Instant))
				if err != nil {
					return fmt.Errorf("income for %s: %w", days[i].Instant.Format(dayKeyLayout), err)
				}
				days[i].Income = total
				return nil
			})
		}
		if err := eg.Wait(); err != nil {
			return Grid{}, err
		}
	}

	return Grid{Days: days, TodayIndex: todayIndex}, nil
}
