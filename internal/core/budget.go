package core

import (
	"fmt"
	"strings"
)

// CategoryBudget is the spending ceiling for one category.
type CategoryBudget struct {
	Name   string
	Budget Money
}

// BudgetTable is the ordered set of known categories and their ceilings.
// Order is preserved in reports and category prompts.
type BudgetTable []CategoryBudget

// DefaultBudgetTable returns the built-in categories.
func DefaultBudgetTable() BudgetTable {
	return BudgetTable{
		{Name: "Food", Budget: Money{Cents: 300_00}},
		{Name: "Gas", Budget: Money{Cents: 100_00}},
		{Name: "Rent", Budget: Money{Cents: 1000_00}},
		{Name: "Coffee", Budget: Money{Cents: 50_00}},
		{Name: "Subscription", Budget: Money{Cents: 75_00}},
		{Name: "Loan", Budget: Money{Cents: 200_00}},
		{Name: "Utilities", Budget: Money{Cents: 150_00}},
		{Name: "Misc", Budget: Money{Cents: 100_00}},
	}
}

// Validate rejects empty or duplicate names and negative ceilings.
func (t BudgetTable) Validate() error {
	if len(t) == 0 {
		return fmt.Errorf("budget table has no categories")
	}
	seen := make(map[string]struct{}, len(t))
	for i, cb := range t {
		name := strings.TrimSpace(cb.Name)
		if name == "" {
			return fmt.Errorf("category %d: %w", i+1, ErrEmptyCategory)
		}
		if _, dup := seen[name]; dup {
			return fmt.Errorf("duplicate category %q", name)
		}
		seen[name] = struct{}{}
		if cb.Budget.Cents < 0 {
			return fmt.Errorf("category %q: %w", name, ErrNegativeBudget)
		}
	}
	return nil
}

// Categories returns the category names in table order.
func (t BudgetTable) Categories() []string {
	out := make([]string, len(t))
	for i, cb := range t {
		out[i] = cb.Name
	}
	return out
}

// Lookup returns the ceiling for the named category. Matching is exact.
func (t BudgetTable) Lookup(name string) (Money, bool) {
	for _, cb := range t {
		if cb.Name == name {
			return cb.Budget, true
		}
	}
	return Money{}, false
}

// Check validates e and verifies its category is in the table.
func (t BudgetTable) Check(e Expense) error {
	if err := e.Validate(); err != nil {
		return err
	}
	if _, ok := t.Lookup(e.Category); !ok {
		return fmt.Errorf("%w %q", ErrUnknownCategory, e.Category)
	}
	return nil
}
