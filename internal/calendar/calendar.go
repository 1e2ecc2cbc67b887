// Package calendar computes day buckets, week boundaries and the scrolling
// calendar grid. All computations happen in a single configured location
// with Monday as the first day of the week.
package calendar

import (
	"fmt"
	"strings"
	"time"
)

const dayKeyLayout = "2006-01-02"

var parseLayouts = []string{
	"2006-01-02 15:04",
	"2006-01-02T15:04",
	dayKeyLayout,
}

// Range is a boundary pair. Both ends are inclusive at millisecond
// resolution, End being one millisecond before the next midnight.
type Range struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t lies within the range.
func (r Range) Contains(t time.Time) bool {
	return !t.Before(r.Start) && !t.After(r.End)
}

// Key returns the ISO date of the range start, used as cache key.
func (r Range) Key() string {
	return r.Start.Format(dayKeyLayout)
}

func (r Range) String() string {
	return fmt.Sprintf("%s..%s", r.Start.Format(time.RFC3339), r.End.Format(time.RFC3339Nano))
}

// Calendar is the local calendar context: time zone, weekday labels and clock.
type Calendar struct {
	loc    *time.Location
	labels Labels
	now    func() time.Time
}

// New creates a calendar. A nil location means time.Local, a nil clock means
// time.Now.
func New(loc *time.Location, labels Labels, now func() time.Time) *Calendar {
	if loc == nil {
		loc = time.Local
	}
	if now == nil {
		now = time.Now
	}
	return &Calendar{loc: loc, labels: labels, now: now}
}

// Location returns the calendar time zone.
func (c *Calendar) Location() *time.Location {
	return c.loc
}

// Labels returns the weekday labels in use.
func (c *Calendar) Labels() Labels {
	return c.labels
}

// Now returns the current instant in the calendar location.
func (c *Calendar) Now() time.Time {
	return c.now().In(c.loc)
}

// Midnight returns 00:00 of t's day in the calendar location.
func (c *Calendar) Midnight(t time.Time) time.Time {
	y, m, d := t.In(c.loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, c.loc)
}

// AddDays moves t's midnight by n calendar days. Days are not assumed to be
// 24h long.
func (c *Calendar) AddDays(t time.Time, n int) time.Time {
	y, m, d := t.In(c.loc).Date()
	return time.Date(y, m, d+n, 0, 0, 0, 0, c.loc)
}

// DayRange returns the boundary pair of t's day bucket.
func (c *Calendar) DayRange(t time.Time) Range {
	start := c.Midnight(t)
	next := c.AddDays(start, 1)
	return Range{Start: start, End: next.Add(-time.Millisecond)}
}

// Today returns the boundary pair of the current day.
func (c *Calendar) Today() Range {
	return c.DayRange(c.Now())
}

// StartOfWeek returns Monday 00:00 of t's week.
func (c *Calendar) StartOfWeek(t time.Time) time.Time {
	offset := (int(t.In(c.loc).Weekday()) + 6) % 7
	return c.AddDays(t, -offset)
}

// WeekToDate spans from Monday of the current week to the end of today.
func (c *Calendar) WeekToDate() Range {
	now := c.Now()
	return Range{Start: c.StartOfWeek(now), End: c.DayRange(now).End}
}

// Span covers every day from from's day through to's day.
func (c *Calendar) Span(from, to time.Time) Range {
	if to.Before(from) {
		from, to = to, from
	}
	return Range{Start: c.Midnight(from), End: c.DayRange(to).End}
}

// SameDay reports whether a and b fall into the same day bucket.
func (c *Calendar) SameDay(a, b time.Time) bool {
	ay, am, ad := a.In(c.loc).Date()
	by, bm, bd := b.In(c.loc).Date()
	return ay == by && am == bm && ad == bd
}

// IsPast reports whether t's day lies strictly before today.
func (c *Calendar) IsPast(t time.Time) bool {
	return c.Midnight(t).Before(c.Midnight(c.Now()))
}

// Parse reads a date ("2006-01-02") or date-time ("2006-01-02 15:04") in the
// calendar location. The empty string means now.
func (c *Calendar) Parse(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return c.Now(), nil
	}
	for _, layout := range parseLayouts {
		if t, err := time.ParseInLocation(layout, s, c.loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD or YYYY-MM-DD HH:MM", s)
}
