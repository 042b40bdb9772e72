// Package store defines the ports the expense service persists through.
package store

import (
	"context"
	"errors"

	"expenses/internal/core"
)

// ErrNotFound is returned when the backing file does not exist yet.
var ErrNotFound = errors.New("expense store not found")

type (
	ExpenseWriter interface {
		// Append persists one expense and returns a reference to the written row.
		Append(ctx context.Context, e core.Expense) (rowRef string, err error)
	}

	// ExpenseLister returns every stored expense. Rows that could not be
	// decoded are skipped and reported as warnings rather than errors.
	ExpenseLister interface {
		ListExpenses(ctx context.Context) ([]core.Expense, []core.Warning, error)
	}

	Store interface {
		ExpenseWriter
		ExpenseLister
	}
)
