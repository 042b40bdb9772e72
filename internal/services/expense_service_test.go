package services

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"expenses/internal/amqp"
	"expenses/internal/core"
	"expenses/internal/log"
	"expenses/internal/store"
	"expenses/internal/store/csvstore"
	"expenses/internal/store/memory"
)

type fakePublisher struct {
	msgs []*amqp.ExpenseRecordedMessage
	err  error
}

func (f *fakePublisher) PublishExpenseRecorded(_ context.Context, msg *amqp.ExpenseRecordedMessage) error {
	f.msgs = append(f.msgs, msg)
	return f.err
}

var asOf = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func newService(st store.Store, opts ...Option) *ExpenseService {
	return NewExpenseService(st, core.DefaultBudgetTable(), append([]Option{WithLogger(log.Discard())}, opts...)...)
}

func TestAddExpense_Validation(t *testing.T) {
	st := memory.New()
	svc := newService(st)
	ctx := context.Background()

	cases := []struct {
		name string
		e    core.Expense
		want error
	}{
		{"unknown category", core.Expense{Name: "Movie", Category: "Entertainment", Amount: core.Money{Cents: 100}}, core.ErrUnknownCategory},
		{"zero amount", core.Expense{Name: "Lunch", Category: "Food"}, core.ErrInvalidAmount},
		{"negative amount", core.Expense{Name: "Lunch", Category: "Food", Amount: core.Money{Cents: -1}}, core.ErrInvalidAmount},
		{"blank name", core.Expense{Name: "  ", Category: "Food", Amount: core.Money{Cents: 1}}, core.ErrEmptyName},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := svc.AddExpense(ctx, tc.e); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}

	items, _, _ := st.ListExpenses(ctx)
	if len(items) != 0 {
		t.Fatalf("rejected expenses must not be stored: %v", items)
	}
}

func TestAddExpense_PublishesAfterSave(t *testing.T) {
	pub := &fakePublisher{}
	at := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	svc := newService(memory.New(), WithPublisher(pub), WithClock(func() time.Time { return at }))

	e := core.Expense{Name: "Lunch", Category: "Food", Amount: core.Money{Cents: 1250}}
	if err := svc.AddExpense(context.Background(), e); err != nil {
		t.Fatalf("add: %v", err)
	}
	if len(pub.msgs) != 1 {
		t.Fatalf("expected one published message, got %d", len(pub.msgs))
	}
	msg := pub.msgs[0]
	if msg.Expense() != e || msg.RowRef != "mem:1" || !msg.RecordedAt.Equal(at) {
		t.Fatalf("unexpected message %+v", msg)
	}
}

func TestAddExpense_PublishFailureIsNotFatal(t *testing.T) {
	st := memory.New()
	pub := &fakePublisher{err: errors.New("broker down")}
	svc := newService(st, WithPublisher(pub))

	if err := svc.AddExpense(context.Background(), core.Expense{Name: "Gas", Category: "Gas", Amount: core.Money{Cents: 4000}}); err != nil {
		t.Fatalf("publish failure must not fail the add: %v", err)
	}
	items, _, _ := st.ListExpenses(context.Background())
	if len(items) != 1 {
		t.Fatalf("expense should be stored, got %v", items)
	}
}

func TestAddExpense_StoreFailure(t *testing.T) {
	st := memory.New()
	st.Fail = errors.New("read-only file system")
	pub := &fakePublisher{}
	svc := newService(st, WithPublisher(pub))

	err := svc.AddExpense(context.Background(), core.Expense{Name: "Gas", Category: "Gas", Amount: core.Money{Cents: 4000}})
	if !errors.Is(err, st.Fail) {
		t.Fatalf("expected wrapped store error, got %v", err)
	}
	if len(pub.msgs) != 0 {
		t.Fatalf("nothing should be published when the save fails")
	}
}

func TestSummarize_Scenario(t *testing.T) {
	svc := newService(memory.New())
	ctx := context.Background()
	for _, e := range []core.Expense{
		{Name: "Lunch", Category: "Food", Amount: core.Money{Cents: 1250}},
		{Name: "Gas", Category: "Gas", Amount: core.Money{Cents: 4000}},
	} {
		if err := svc.AddExpense(ctx, e); err != nil {
			t.Fatalf("add: %v", err)
		}
	}

	r, err := svc.Summarize(ctx, core.Money{Cents: 100000}, asOf)
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}
	if r.TotalSpent.String() != "52.50" || r.Remaining.String() != "947.50" {
		t.Fatalf("unexpected totals: spent=%s remaining=%s", r.TotalSpent, r.Remaining)
	}
	if r.Categories[0].Name != "Food" || r.Categories[0].Remaining.String() != "287.50" {
		t.Fatalf("unexpected food row: %+v", r.Categories[0])
	}
	if r.Categories[1].Name != "Gas" || r.Categories[1].Remaining.String() != "60.00" {
		t.Fatalf("unexpected gas row: %+v", r.Categories[1])
	}
}

func TestSummarize_MergesStoreWarnings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "expenses.csv")
	st := csvstore.New(path, csvstore.WithLogger(log.Discard()))
	svc := newService(st)
	ctx := context.Background()

	// Entertainment bypasses validation by going straight to the store.
	if _, err := st.Append(ctx, core.Expense{Name: "Mystery", Category: "Entertainment", Amount: core.Money{Cents: 2000}}); err != nil {
		t.Fatalf("append: %v", err)
	}

	r, err := svc.Summarize(ctx, core.Money{Cents: 50000}, asOf)
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}
	if r.TotalSpent.Cents != 2000 {
		t.Fatalf("expected 20.00 spent, got %s", r.TotalSpent)
	}
	if len(r.Warnings) != 1 || r.Warnings[0].Kind != core.WarningUnknownCategory {
		t.Fatalf("expected unknown category warning, got %v", r.Warnings)
	}
}

func TestSummarize_MissingFile(t *testing.T) {
	st := csvstore.New(filepath.Join(t.TempDir(), "nope.csv"), csvstore.WithLogger(log.Discard()))
	_, err := newService(st).Summarize(context.Background(), core.Money{Cents: 100}, asOf)
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSummarize_NegativeBudget(t *testing.T) {
	_, err := newService(memory.New()).Summarize(context.Background(), core.Money{Cents: -1}, asOf)
	if !errors.Is(err, core.ErrNegativeBudget) {
		t.Fatalf("expected ErrNegativeBudget, got %v", err)
	}
}

func TestCategories(t *testing.T) {
	svc := NewExpenseService(memory.New(), core.BudgetTable{{Name: "Books"}, {Name: "Games"}}, WithLogger(log.Discard()))
	got := svc.Categories()
	if len(got) != 2 || got[0] != "Books" || got[1] != "Games" {
		t.Fatalf("unexpected categories %v", got)
	}
}
