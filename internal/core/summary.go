package core

import (
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// WarningKind classifies a non-fatal problem found while building a report.
type WarningKind string

const (
	WarningMalformedRow    WarningKind = "malformed_row"
	WarningUnknownCategory WarningKind = "unknown_category"
	WarningUnexpectedHead  WarningKind = "unexpected_header"
	WarningOutOfRange      WarningKind = "out_of_range"
)

// Warning is a recoverable diagnostic. Line is the 1-based line in the
// expense file when known, zero otherwise.
type Warning struct {
	Kind     WarningKind
	Line     int
	Category string
	Message  string
}

func (w Warning) String() string {
	if w.Line > 0 {
		return fmt.Sprintf("line %d: %s", w.Line, w.Message)
	}
	return w.Message
}

// CategoryReport is the spend of one budget table entry.
type CategoryReport struct {
	Name      string
	Budget    Money
	Spent     Money
	Remaining Money
}

// Report is the computed summary for an as-of date.
type Report struct {
	AsOf          time.Time
	OverallBudget Money
	TotalSpent    Money
	Remaining     Money
	Categories    []CategoryReport // table order
	RemainingDays int
	DailyBudget   Money
	ExpenseCount  int
	Warnings      []Warning
}

// OverBudget reports whether total spend exceeds the overall budget.
func (r Report) OverBudget() bool {
	return r.Remaining.Cents < 0
}

// Summarize totals expenses against the overall budget and the category table.
// Expenses in categories missing from the table count toward the total only
// and produce a WarningUnknownCategory each.
func Summarize(expenses []Expense, overall Money, table BudgetTable, asOf time.Time) Report {
	spent := make(map[string]decimal.Decimal, len(table))
	for _, cb := range table {
		spent[cb.Name] = decimal.Zero
	}

	r := Report{
		AsOf:          asOf,
		OverallBudget: overall,
		ExpenseCount:  len(expenses),
	}
	total := decimal.Zero
	for _, e := range expenses {
		cents := decimal.NewFromInt(e.Amount.Cents)
		total = total.Add(cents)
		sum, ok := spent[e.Category]
		if !ok {
			r.Warnings = append(r.Warnings, Warning{
				Kind:     WarningUnknownCategory,
				Category: e.Category,
				Message:  fmt.Sprintf("category %q not found in predefined categories", e.Category),
			})
			continue
		}
		spent[e.Category] = sum.Add(cents)
	}
	r.TotalSpent = r.clamp("total spent", total)
	r.Remaining = r.clamp("remaining budget", decimal.NewFromInt(overall.Cents).Sub(total))

	r.Categories = make([]CategoryReport, 0, len(table))
	for _, cb := range table {
		sum := spent[cb.Name]
		r.Categories = append(r.Categories, CategoryReport{
			Name:      cb.Name,
			Budget:    cb.Budget,
			Spent:     r.clamp(cb.Name+" spent", sum),
			Remaining: r.clamp(cb.Name+" remaining", decimal.NewFromInt(cb.Budget.Cents).Sub(sum)),
		})
	}

	r.RemainingDays = RemainingDaysInMonth(asOf)
	r.DailyBudget = DailyBudget(r.Remaining, r.RemainingDays)
	return r
}

// clamp converts a cent count to Money, saturating at ±MaxInt64 cents and
// recording a WarningOutOfRange when it does.
func (r *Report) clamp(what string, cents decimal.Decimal) Money {
	var m Money
	switch {
	case cents.GreaterThan(maxCents):
		m = Money{Cents: math.MaxInt64}
	case cents.LessThan(maxCents.Neg()):
		m = Money{Cents: -math.MaxInt64}
	default:
		return Money{Cents: cents.IntPart()}
	}
	r.Warnings = append(r.Warnings, Warning{
		Kind:    WarningOutOfRange,
		Message: fmt.Sprintf("%s of %s cents does not fit, shown as %s", what, cents.String(), m),
	})
	return m
}

// RemainingDaysInMonth returns the number of days after t's day until the end
// of its month. It is zero on the last day.
func RemainingDaysInMonth(t time.Time) int {
	return DaysInMonth(t.Year(), t.Month()) - t.Day()
}

// DaysInMonth returns the length of the month, accounting for leap years.
func DaysInMonth(year int, month time.Month) int {
	// Day 0 of the next month normalizes to the last day of this one.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// DailyBudget spreads remaining evenly over days. No days left means no allowance.
func DailyBudget(remaining Money, days int) Money {
	if days <= 0 {
		return Money{}
	}
	return remaining.DivRound(days)
}
