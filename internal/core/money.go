// Package core provides money parsing and handling utilities.
//
// This file contains functions for parsing monetary amounts from strings
// and converting between cents and decimal representations.
package core

import (
	"math"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

var maxCents = decimal.NewFromInt(math.MaxInt64)

// Bounds on a parsed amount's scale. Rounding a decimal with a huge exponent
// materializes the power of ten, so such inputs are rejected up front.
const (
	maxAmountExponent = 20
	maxAmountDigits   = 40
)

// ParseDecimalToCents converts a user-entered decimal string to cents with proper rounding.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators and performs
// half-up rounding on the third decimal place. The result is always positive cents.
// Returns an error for invalid formats, signed values, or zero amounts.
//
// Examples:
//
//	ParseDecimalToCents("12.34") -> 1234, nil
//	ParseDecimalToCents("12,34") -> 1234, nil
//	ParseDecimalToCents("12.345") -> 1235, nil (rounds up)
//	ParseDecimalToCents("12.344") -> 1234, nil (rounds down)
func ParseDecimalToCents(s string) (int64, error) {
	cents, err := parseUnsigned(s)
	if err != nil {
		return 0, err
	}
	if cents <= 0 {
		return 0, ErrInvalidAmount
	}
	return cents, nil
}

// ParseBudget parses a non-negative budget figure such as "1000" or "987,50".
func ParseBudget(s string) (Money, error) {
	if strings.HasPrefix(strings.TrimSpace(s), "-") {
		return Money{}, ErrNegativeBudget
	}
	cents, err := parseUnsigned(s)
	if err != nil {
		return Money{}, err
	}
	return Money{Cents: cents}, nil
}

func parseUnsigned(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	// Normalize decimal comma to dot
	s = strings.ReplaceAll(s, ",", ".")
	if strings.Count(s, ".") > 1 || s == "." {
		return 0, ErrInvalidAmount
	}
	for _, r := range s {
		// Only plain digits; signs and exponents are rejected
		if r != '.' && !unicode.IsDigit(r) {
			return 0, ErrInvalidAmount
		}
	}
	return toCents(s)
}

// ParseAmount parses an amount as stored in the expense file. Unlike
// ParseDecimalToCents it accepts any numeric value, including signed and
// exponent forms, since rows are validated for shape only.
func ParseAmount(s string) (Money, error) {
	cents, err := toCents(strings.TrimSpace(s))
	if err != nil {
		return Money{}, err
	}
	return Money{Cents: cents}, nil
}

func toCents(s string) (int64, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	if exp := d.Exponent(); exp > maxAmountExponent || exp < -maxAmountExponent || d.NumDigits() > maxAmountDigits {
		return 0, ErrInvalidAmount
	}
	d = d.Shift(2).Round(0)
	if d.Abs().GreaterThan(maxCents) {
		return 0, ErrInvalidAmount
	}
	return d.IntPart(), nil
}

// MoneyFromDecimal converts a decimal currency value to cents, rounding half away from zero.
func MoneyFromDecimal(d decimal.Decimal) Money {
	return Money{Cents: d.Shift(2).Round(0).IntPart()}
}

// Decimal returns the amount as a decimal currency value.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.Cents, -2)
}

// String formats the amount with exactly two decimals and no separators, e.g. "-12.50".
func (m Money) String() string {
	return m.Decimal().StringFixed(2)
}

func (m Money) Add(o Money) Money {
	return Money{Cents: m.Cents + o.Cents}
}

func (m Money) Sub(o Money) Money {
	return Money{Cents: m.Cents - o.Cents}
}

// DivRound splits the amount into n equal parts rounded half away from zero
// to the cent. Dividing by zero or a negative count yields zero.
func (m Money) DivRound(n int) Money {
	if n <= 0 {
		return Money{}
	}
	q := decimal.NewFromInt(m.Cents).DivRound(decimal.NewFromInt(int64(n)), 0)
	return Money{Cents: q.IntPart()}
}

// Dollars returns the value as a float64 for display purposes such as charts.
// Use cents for calculations to avoid floating-point precision issues.
func (m Money) Dollars() float64 {
	return float64(m.Cents) / 100.0
}
