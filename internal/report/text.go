// Package report renders a core.Report for people: a plain text summary for
// the terminal and a bar chart image.
package report

import (
	"bufio"
	"fmt"
	"io"

	"github.com/dustin/go-humanize"

	"expenses/internal/core"
)

// FormatMoney renders m as dollars with thousands separators, e.g. $1,234.50
// or -$12.00.
func FormatMoney(m core.Money) string {
	cents := m.Cents
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s$%s.%02d", sign, humanize.Comma(cents/100), cents%100)
}

// WriteText writes the summary in the layout of the interactive tracker.
// Warnings come first so they are not lost below the table.
func WriteText(w io.Writer, r core.Report) error {
	bw := bufio.NewWriter(w)

	for _, warn := range r.Warnings {
		fmt.Fprintf(bw, "Warning: %s\n", warn)
	}

	fmt.Fprintln(bw)
	fmt.Fprintln(bw, "Expenses Summary:")
	fmt.Fprintf(bw, "Total spent: %s\n", FormatMoney(r.TotalSpent))
	fmt.Fprintf(bw, "Remaining budget: %s\n", FormatMoney(r.Remaining))
	if r.OverBudget() {
		fmt.Fprintf(bw, "Over budget by %s\n", FormatMoney(core.Money{Cents: -r.Remaining.Cents}))
	}

	fmt.Fprintln(bw)
	fmt.Fprintln(bw, "Category Spending vs Budget:")
	for _, c := range r.Categories {
		fmt.Fprintf(bw, "%s: Budget = %s, Spent = %s, Remaining = %s\n",
			c.Name, FormatMoney(c.Budget), FormatMoney(c.Spent), FormatMoney(c.Remaining))
	}

	fmt.Fprintf(bw, "Daily budget: %s\n", FormatMoney(r.DailyBudget))
	fmt.Fprintf(bw, "Remaining days in the month: %d\n", r.RemainingDays)

	return bw.Flush()
}
