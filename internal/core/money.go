// Package core provides money parsing and handling utilities.
//
// This file contains functions for parsing monetary amounts from user input
// and converting between cents and their decimal representation.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

var (
	hundred = decimal.NewFromInt(100)
	// Largest amount whose cent value still fits in an int64.
	maxAmount = decimal.New(1<<63-1, -2)
)

// ParseAmount converts a decimal string entered by the user to Money.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators and rounds
// half-up to whole cents. Text that is not a number yields ErrUnparsableAmount;
// zero or negative values yield ErrInvalidAmount.
//
// Examples:
//
//	ParseAmount("12.34")  -> 1234 cents
//	ParseAmount("12,345") -> 1235 cents
//	ParseAmount("0")      -> ErrInvalidAmount
//	ParseAmount("abc")    -> ErrUnparsableAmount
func ParseAmount(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Money{}, ErrUnparsableAmount
	}
	s = strings.ReplaceAll(s, ",", ".")

	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, ErrUnparsableAmount
	}
	if d.GreaterThan(maxAmount) {
		return Money{}, ErrUnparsableAmount
	}

	cents := d.Round(2).Mul(hundred).IntPart()
	if cents <= 0 {
		return Money{}, ErrInvalidAmount
	}
	return Money{Cents: cents}, nil
}

// Decimal returns the amount as a decimal with two fractional digits.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.Cents, -2)
}

// String formats the amount with exactly two decimals, e.g. "150.00".
func (m Money) String() string {
	return m.Decimal().StringFixed(2)
}

// Whole returns the amount truncated to whole currency units, which is how
// daily and weekly totals are displayed.
func (m Money) Whole() int64 {
	return m.Cents / 100
}

func (m Money) IsZero() bool {
	return m.Cents == 0
}

// Add returns the sum of both amounts.
func (m Money) Add(other Money) Money {
	return Money{Cents: m.Cents + other.Cents}
}

// Sum adds up all amounts. The empty sum is zero.
func Sum(amounts ...Money) Money {
	var total Money
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}
