package calendar

import (
	"fmt"
	"strings"
	"time"
)

// Labels maps each weekday to its short display label.
type Labels [7]string

var (
	LabelsEN = Labels{
		time.Sunday:    "Sun",
		time.Monday:    "Mon",
		time.Tuesday:   "Tue",
		time.Wednesday: "Wed",
		time.Thursday:  "Thu",
		time.Friday:    "Fri",
		time.Saturday:  "Sat",
	}

	LabelsRU = Labels{
		time.Sunday:    "Вс",
		time.Monday:    "Пн",
		time.Tuesday:   "Вт",
		time.Wednesday: "Ср",
		time.Thursday:  "Чт",
		time.Friday:    "Пт",
		time.Saturday:  "Сб",
	}
)

// For returns the label of the given weekday.
func (l Labels) For(d time.Weekday) string {
	return l[d]
}

// LabelsFor resolves a locale name ("en", "ru") to its labels.
func LabelsFor(locale string) (Labels, error) {
	switch strings.ToLower(strings.TrimSpace(locale)) {
	case "", "en":
		return LabelsEN, nil
	case "ru":
		return LabelsRU, nil
	default:
		return Labels{}, fmt.Errorf("unsupported locale %q", locale)
	}
}
