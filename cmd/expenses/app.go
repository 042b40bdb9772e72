package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"expenses/internal/cli"
	"expenses/internal/core"
	"expenses/internal/report"
	"expenses/internal/services"
	"expenses/internal/store"
)

// app holds what the menu and the subcommands share.
type app struct {
	svc    *services.ExpenseService
	out    io.Writer
	errOut io.Writer
	now    func() time.Time
}

// runInteractive drives the menu until the user exits or input ends.
// budget is asked for when not configured.
func (a *app) runInteractive(ctx context.Context, p *cli.Prompter, budget core.Money, haveBudget bool) error {
	p.Println("Welcome to the Finance Tracker")

	if !haveBudget {
		var err error
		budget, err = p.ReadBudget()
		if err != nil {
			return a.inputDone(err)
		}
	}

	for {
		choice, err := p.Menu()
		if err != nil {
			return a.inputDone(err)
		}

		switch choice {
		case cli.ChoiceAdd:
			e, err := p.ReadExpense(a.svc.Categories())
			if err != nil {
				return a.inputDone(err)
			}
			if err := a.svc.AddExpense(ctx, e); err != nil {
				p.Printf("\nError saving expense: %v\n", err)
				continue
			}
			p.Printf("\nExpense '%s' saved successfully!\n", e.Name)
		case cli.ChoiceSummary:
			a.printSummary(ctx, budget)
		case cli.ChoiceExit:
			p.Println("\nExiting the app. Goodbye!")
			return nil
		default:
			p.Println("Invalid option, please try again.")
		}
	}
}

func (a *app) inputDone(err error) error {
	if errors.Is(err, cli.ErrInputClosed) {
		fmt.Fprintln(a.out, "\nExiting the app. Goodbye!")
		return nil
	}
	return err
}

// printSummary reports read failures and keeps going, the menu stays usable.
func (a *app) printSummary(ctx context.Context, budget core.Money) {
	r, err := a.svc.Summarize(ctx, budget, a.now())
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			fmt.Fprintln(a.out, "\nNo expenses recorded yet.")
		} else {
			fmt.Fprintf(a.out, "\nError reading the file: %v\n", err)
		}
		return
	}
	if err := report.WriteText(a.out, r); err != nil {
		fmt.Fprintf(a.errOut, "write summary: %v\n", err)
	}
}

// runAdd records one expense given as name, category and amount.
func (a *app) runAdd(ctx context.Context, args []string) error {
	if len(args) != 3 {
		return errors.New("usage: expenses add <name> <category> <amount>")
	}
	cents, err := core.ParseDecimalToCents(args[2])
	if err != nil {
		return fmt.Errorf("amount %q: %w", args[2], err)
	}
	e := core.Expense{Name: args[0], Category: args[1], Amount: core.Money{Cents: cents}}
	if err := a.svc.AddExpense(ctx, e); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Expense '%s' saved successfully!\n", e)
	return nil
}

// runSummary prints the report and optionally writes a chart image.
func (a *app) runSummary(ctx context.Context, budget core.Money, chartPath string) error {
	r, err := a.svc.Summarize(ctx, budget, a.now())
	if err != nil {
		return err
	}
	if err := report.WriteText(a.out, r); err != nil {
		return fmt.Errorf("write summary: %w", err)
	}
	if chartPath == "" {
		return nil
	}

	f, err := os.Create(chartPath)
	if err != nil {
		return fmt.Errorf("create chart file: %w", err)
	}
	if err := report.WriteChart(f, r); err != nil {
		f.Close()
		os.Remove(chartPath)
		if errors.Is(err, report.ErrNothingToChart) {
			fmt.Fprintln(a.out, "No category spending to chart.")
			return nil
		}
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close chart file: %w", err)
	}
	fmt.Fprintf(a.out, "Chart written to %s\n", chartPath)
	return nil
}
