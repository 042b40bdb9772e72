package core

import (
	"errors"
	"fmt"
	"strings"
)

type (
	// Money is an amount in cents. Negative values are valid for derived
	// figures such as remaining budget; expenses themselves must be positive.
	Money struct {
		Cents int64
	}

	Expense struct {
		Name     string
		Category string
		Amount   Money
	}
)

var (
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrNegativeBudget  = errors.New("budget must not be negative")
	ErrEmptyName       = errors.New("empty expense name")
	ErrNameTooLong     = errors.New("expense name too long (max 200 characters)")
	ErrEmptyCategory   = errors.New("empty category")
	ErrUnknownCategory = errors.New("unknown category")
)

const maxNameLength = 200

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// Validate checks the fields an expense carries on its own. Category
// membership depends on the budget table and is checked by BudgetTable.Check.
func (e Expense) Validate() error {
	if err := ValidateName(e.Name); err != nil {
		return err
	}
	if strings.TrimSpace(e.Category) == "" {
		return ErrEmptyCategory
	}
	if err := e.Amount.Validate(); err != nil {
		return err
	}
	return nil
}

// ValidateName rejects blank names and names over 200 bytes.
func ValidateName(name string) error {
	if len(strings.TrimSpace(name)) == 0 {
		return ErrEmptyName
	}
	if len(name) > maxNameLength {
		return ErrNameTooLong
	}
	return nil
}

// String renders the expense the way the menu echoes it back, e.g. "Lunch (Food): $12.50".
func (e Expense) String() string {
	return fmt.Sprintf("%s (%s): $%s", e.Name, e.Category, e.Amount)
}
