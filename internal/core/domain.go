package core

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	maxTitleLength    = 200
	maxNoteLength     = 500
	maxCategoryLength = 100
)

type (
	Money struct {
		Cents int64
	}

	// Task is a to-do item bucketed into the day of its Date.
	Task struct {
		ID          int64
		Title       string
		Description string
		Date        time.Time
		Completed   bool
	}

	// Income is a single income entry (a "daily profit").
	Income struct {
		ID     int64
		Amount Money
		Date   time.Time
		Note   string
	}

	Expense struct {
		ID       int64
		Amount   Money
		Date     time.Time
		Note     string
		Category string
	}
)

var (
	ErrEmptyTitle       = errors.New("task title cannot be empty")
	ErrTitleTooLong     = errors.New("task title too long (max 200 characters)")
	ErrInvalidAmount    = errors.New("amount must be greater than zero")
	ErrUnparsableAmount = errors.New("amount is not a valid number")
	ErrEmptyCategory    = errors.New("expense category cannot be empty")
	ErrCategoryTooLong  = errors.New("expense category too long (max 100 characters)")
	ErrZeroDate         = errors.New("date cannot be zero")
	ErrNoteTooLong      = errors.New("note too long (max 500 characters)")
	ErrPastDay          = errors.New("past days are read-only")
)

var validationErrors = []error{
	ErrEmptyTitle,
	ErrTitleTooLong,
	ErrInvalidAmount,
	ErrUnparsableAmount,
	ErrEmptyCategory,
	ErrCategoryTooLong,
	ErrZeroDate,
	ErrNoteTooLong,
	ErrPastDay,
}

// IsValidation reports whether err was caused by invalid user input rather
// than a storage failure.
func IsValidation(err error) bool {
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (t Task) Validate() error {
	if strings.TrimSpace(t.Title) == "" {
		return ErrEmptyTitle
	}
	if utf8.RuneCountInString(t.Title) > maxTitleLength {
		return ErrTitleTooLong
	}
	if t.Date.IsZero() {
		return ErrZeroDate
	}
	return nil
}

func (i Income) Validate() error {
	if err := i.Amount.Validate(); err != nil {
		return err
	}
	if i.Date.IsZero() {
		return ErrZeroDate
	}
	if utf8.RuneCountInString(i.Note) > maxNoteLength {
		return ErrNoteTooLong
	}
	return nil
}

func (e Expense) Validate() error {
	if err := e.Amount.Validate(); err != nil {
		return err
	}
	if e.Date.IsZero() {
		return ErrZeroDate
	}
	category := strings.TrimSpace(e.Category)
	if category == "" {
		return ErrEmptyCategory
	}
	if utf8.RuneCountInString(category) > maxCategoryLength {
		return ErrCategoryTooLong
	}
	if utf8.RuneCountInString(e.Note) > maxNoteLength {
		return ErrNoteTooLong
	}
	return nil
}

// ExpenseNote builds the stored note of an expense: "category: note" when a
// note was typed, the bare category otherwise.
func ExpenseNote(category, note string) string {
	category = strings.TrimSpace(category)
	note = strings.TrimSpace(note)
	if note == "" {
		return category
	}
	return category + ": " + note
}
