package memory

import (
	"context"
	"fmt"
	"sync"

	"expenses/internal/core"
	"expenses/internal/store"
)

var _ store.Store = (*Store)(nil)

// Store keeps expenses in process memory. It backs dry runs and tests.
type Store struct {
	mu    sync.Mutex
	items []core.Expense
	// Fail makes every call return this error when set.
	Fail error
}

func New(seed ...core.Expense) *Store {
	return &Store{items: append([]core.Expense(nil), seed...)}
}

// Append stores the expense and returns a synthetic row reference.
func (s *Store) Append(_ context.Context, e core.Expense) (string, error) {
	if err := e.Validate(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail != nil {
		return "", s.Fail
	}
	s.items = append(s.items, e)
	return fmt.Sprintf("mem:%d", len(s.items)), nil
}

// ListExpenses returns a copy of the stored expenses in append order.
func (s *Store) ListExpenses(_ context.Context) ([]core.Expense, []core.Warning, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail != nil {
		return nil, nil, s.Fail
	}
	return append([]core.Expense(nil), s.items...), nil, nil
}
