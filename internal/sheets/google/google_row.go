package google

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"expenses/internal/core"
)

// expenseRow lays out one expense as Recorded, Name, Category, Amount.
// The amount is a plain number so the sheet can sum it.
func expenseRow(recordedAt time.Time, e core.Expense) []any {
	amount, _ := e.Amount.Decimal().Float64()
	return []any{
		recordedAt.Format("2006-01-02 15:04:05"),
		sanitizeCell(e.Name),
		sanitizeCell(e.Category),
		amount,
	}
}

// sanitizeCell keeps user text from being evaluated as a formula under
// USER_ENTERED input.
func sanitizeCell(s string) string {
	if s == "" {
		return s
	}
	switch s[0] {
	case '=', '+', '-', '@':
		return "'" + s
	}
	return s
}

// yearPrefixedName returns "<year> <base>" unless base already starts with a 4-digit year.
func yearPrefixedName(base string, year int) string {
	base = strings.TrimSpace(base)
	if base == "" {
		return base
	}
	if len(base) >= 5 {
		if y, err := strconv.Atoi(base[0:4]); err == nil && base[4] == ' ' && y > 1900 && y < 3000 {
			return base
		}
	}
	return fmt.Sprintf("%d %s", year, base)
}
