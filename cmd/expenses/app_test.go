package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"expenses/internal/cli"
	"expenses/internal/core"
	"expenses/internal/log"
	"expenses/internal/services"
	"expenses/internal/store"
	"expenses/internal/store/csvstore"
	"expenses/internal/store/memory"
)

func newTestApp(st store.Store) (*app, *bytes.Buffer) {
	var out bytes.Buffer
	svc := services.NewExpenseService(st, core.DefaultBudgetTable(), services.WithLogger(log.Discard()))
	return &app{
		svc:    svc,
		out:    &out,
		errOut: &out,
		now:    func() time.Time { return time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC) },
	}, &out
}

func TestRunInteractive_Session(t *testing.T) {
	st := memory.New()
	a, out := newTestApp(st)
	input := strings.Join([]string{
		"1000",                     // budget
		"1", "Lunch", "12.50", "1", // Food
		"1", "Gas", "40", "2",      // Gas
		"7",                        // invalid option
		"2",                        // summary
		"3",                        // exit
	}, "\n") + "\n"
	p := cli.NewPrompter(strings.NewReader(input), out)

	if err := a.runInteractive(context.Background(), p, core.Money{}, false); err != nil {
		t.Fatalf("runInteractive: %v", err)
	}

	text := out.String()
	for _, want := range []string{
		"Welcome to the Finance Tracker",
		"Expense 'Lunch' saved successfully!",
		"Expense 'Gas' saved successfully!",
		"Invalid option, please try again.",
		"Total spent: $52.50",
		"Remaining budget: $947.50",
		"Daily budget: $45.12",
		"Remaining days in the month: 21",
		"Exiting the app. Goodbye!",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("output missing %q", want)
		}
	}
	if items, _, _ := st.ListExpenses(context.Background()); len(items) != 2 {
		t.Fatalf("expected 2 stored expenses, got %d", len(items))
	}
}

func TestRunInteractive_ConfiguredBudgetAndEOF(t *testing.T) {
	a, out := newTestApp(memory.New())
	p := cli.NewPrompter(strings.NewReader("2\n"), out)

	if err := a.runInteractive(context.Background(), p, core.Money{Cents: 50000}, true); err != nil {
		t.Fatalf("runInteractive: %v", err)
	}
	text := out.String()
	if strings.Contains(text, "Enter your monthly budget") {
		t.Error("budget must not be prompted when configured")
	}
	if !strings.Contains(text, "Remaining budget: $500.00") || !strings.Contains(text, "Goodbye") {
		t.Errorf("unexpected output:\n%s", text)
	}
}

func TestRunInteractive_SaveFailureKeepsLooping(t *testing.T) {
	st := memory.New()
	st.Fail = errors.New("disk full")
	a, out := newTestApp(st)
	p := cli.NewPrompter(strings.NewReader("1\nLunch\n5\n1\n3\n"), out)

	if err := a.runInteractive(context.Background(), p, core.Money{Cents: 100}, true); err != nil {
		t.Fatalf("runInteractive: %v", err)
	}
	text := out.String()
	if !strings.Contains(text, "Error saving expense") || !strings.Contains(text, "Goodbye") {
		t.Errorf("unexpected output:\n%s", text)
	}
}

func TestPrintSummary_MissingFile(t *testing.T) {
	st := csvstore.New(filepath.Join(t.TempDir(), "expenses.csv"), csvstore.WithLogger(log.Discard()))
	a, out := newTestApp(st)
	a.printSummary(context.Background(), core.Money{Cents: 100})
	if !strings.Contains(out.String(), "No expenses recorded yet.") || strings.Contains(out.String(), "Expenses Summary") {
		t.Errorf("unexpected output %q", out.String())
	}
}

func TestRunAdd(t *testing.T) {
	st := memory.New()
	a, out := newTestApp(st)
	ctx := context.Background()

	if err := a.runAdd(ctx, []string{"Lunch", "Food", "12,5"}); err != nil {
		t.Fatalf("runAdd: %v", err)
	}
	if !strings.Contains(out.String(), "Expense 'Lunch (Food): $12.50' saved successfully!") {
		t.Errorf("unexpected output %q", out.String())
	}

	tests := []struct {
		name string
		args []string
		want error
	}{
		{"unknown category", []string{"Movie", "Fun", "10"}, core.ErrUnknownCategory},
		{"zero amount", []string{"Lunch", "Food", "0"}, core.ErrInvalidAmount},
		{"bad amount", []string{"Lunch", "Food", "ten"}, core.ErrInvalidAmount},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := a.runAdd(ctx, tt.args); !errors.Is(err, tt.want) {
				t.Fatalf("runAdd(%v) = %v, want %v", tt.args, err, tt.want)
			}
		})
	}
	if err := a.runAdd(ctx, []string{"only-two", "Food"}); err == nil {
		t.Fatal("expected usage error")
	}
	if items, _, _ := st.ListExpenses(ctx); len(items) != 1 {
		t.Fatalf("expected 1 stored expense, got %d", len(items))
	}
}

func TestRunSummary_WithChart(t *testing.T) {
	st := memory.New(core.Expense{Name: "Lunch", Category: "Food", Amount: core.Money{Cents: 1250}})
	a, out := newTestApp(st)
	chart := filepath.Join(t.TempDir(), "spend.png")

	if err := a.runSummary(context.Background(), core.Money{Cents: 100000}, chart); err != nil {
		t.Fatalf("runSummary: %v", err)
	}
	if !strings.Contains(out.String(), "Chart written to") {
		t.Errorf("unexpected output %q", out.String())
	}
	info, err := os.Stat(chart)
	if err != nil || info.Size() == 0 {
		t.Fatalf("chart not written: %v", err)
	}
}

func TestRunSummary_NothingToChart(t *testing.T) {
	a, out := newTestApp(memory.New())
	chart := filepath.Join(t.TempDir(), "spend.png")

	if err := a.runSummary(context.Background(), core.Money{Cents: 100}, chart); err != nil {
		t.Fatalf("runSummary: %v", err)
	}
	if !strings.Contains(out.String(), "No category spending to chart.") {
		t.Errorf("unexpected output %q", out.String())
	}
	if _, err := os.Stat(chart); !os.IsNotExist(err) {
		t.Fatalf("empty chart file should be removed")
	}
}
