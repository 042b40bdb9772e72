package core

import (
	"errors"
	"strings"
	"testing"
)

func TestMoneyValidate(t *testing.T) {
	if err := (Money{Cents: 1}).Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := (Money{Cents: 0}).Validate(); err == nil {
		t.Fatalf("expected error for zero")
	}
	if err := (Money{Cents: -5}).Validate(); err == nil {
		t.Fatalf("expected error for negative")
	}
}

func TestExpenseValidate(t *testing.T) {
	good := Expense{Name: "Lunch", Category: "Food", Amount: Money{Cents: 1250}}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []struct {
		e    Expense
		want error
	}{
		{Expense{Name: " ", Category: "Food", Amount: Money{Cents: 1}}, ErrEmptyName},
		{Expense{Name: strings.Repeat("x", 201), Category: "Food", Amount: Money{Cents: 1}}, ErrNameTooLong},
		{Expense{Name: "a", Category: "", Amount: Money{Cents: 1}}, ErrEmptyCategory},
		{Expense{Name: "a", Category: "Food", Amount: Money{Cents: 0}}, ErrInvalidAmount},
	}
	for i, tc := range bads {
		if err := tc.e.Validate(); !errors.Is(err, tc.want) {
			t.Fatalf("case %d expected %v, got %v", i, tc.want, err)
		}
	}
}

func TestExpenseString(t *testing.T) {
	e := Expense{Name: "Lunch", Category: "Food", Amount: Money{Cents: 1250}}
	if got := e.String(); got != "Lunch (Food): $12.50" {
		t.Fatalf("unexpected string %q", got)
	}
}
