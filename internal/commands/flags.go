package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"lexify/internal/calendar"
)

// rangeFlags selects a day (--date) or a span of days (--from/--to).
type rangeFlags struct {
	date string
	from string
	to   string
}

func (f *rangeFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.date, "date", "", "day to show (YYYY-MM-DD, default today)")
	cmd.Flags().StringVar(&f.from, "from", "", "first day of a span (YYYY-MM-DD)")
	cmd.Flags().StringVar(&f.to, "to", "", "last day of a span (YYYY-MM-DD, default today)")
	cmd.MarkFlagsMutuallyExclusive("date", "from")
	cmd.MarkFlagsMutuallyExclusive("date", "to")
}

func (f *rangeFlags) resolve(cal *calendar.Calendar) (calendar.Range, error) {
	if f.from == "" && f.to == "" {
		day, err := cal.Parse(f.date)
		if err != nil {
			return calendar.Range{}, err
		}
		return cal.DayRange(day), nil
	}
	from, err := cal.Parse(f.from)
	if err != nil {
		return calendar.Range{}, err
	}
	to, err := cal.Parse(f.to)
	if err != nil {
		return calendar.Range{}, err
	}
	return cal.Span(from, to), nil
}

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", arg)
	}
	return id, nil
}
