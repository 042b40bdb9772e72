package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"expenses/internal/core"
)

// ErrInputClosed is returned when the input ends while a prompt is waiting.
var ErrInputClosed = errors.New("input closed")

// Menu choices.
const (
	ChoiceAdd     = "1"
	ChoiceSummary = "2"
	ChoiceExit    = "3"
)

// Prompter asks for values on out and reads answers line by line from in,
// re-prompting until an answer is valid.
type Prompter struct {
	in  *bufio.Scanner
	out io.Writer
}

func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: bufio.NewScanner(in), out: out}
}

// Println writes a line to the prompt output.
func (p *Prompter) Println(a ...any) {
	fmt.Fprintln(p.out, a...)
}

// Printf writes formatted text to the prompt output.
func (p *Prompter) Printf(format string, a ...any) {
	fmt.Fprintf(p.out, format, a...)
}

func (p *Prompter) ask(prompt string) (string, error) {
	fmt.Fprint(p.out, prompt)
	if !p.in.Scan() {
		if err := p.in.Err(); err != nil {
			return "", err
		}
		return "", ErrInputClosed
	}
	return strings.TrimSpace(p.in.Text()), nil
}

// ReadBudget asks for the monthly budget until a non-negative number is given.
func (p *Prompter) ReadBudget() (core.Money, error) {
	for {
		line, err := p.ask("Enter your monthly budget: $")
		if err != nil {
			return core.Money{}, err
		}
		budget, err := core.ParseBudget(line)
		switch {
		case err == nil:
			return budget, nil
		case errors.Is(err, core.ErrNegativeBudget):
			p.Println("Budget should be a non-negative number. Try again.")
		default:
			p.Println("Invalid input. Please enter a valid number.")
		}
	}
}

// Menu shows the main menu and returns the raw choice.
func (p *Prompter) Menu() (string, error) {
	p.Println()
	p.Println("Select an option:")
	p.Println("1. Add an expense")
	p.Println("2. View summary")
	p.Println("3. Exit")
	return p.ask("Enter your choice: ")
}

// ReadExpense asks for a name, a positive amount and a category picked by
// number from categories.
func (p *Prompter) ReadExpense(categories []string) (core.Expense, error) {
	name, err := p.readName()
	if err != nil {
		return core.Expense{}, err
	}
	amount, err := p.readAmount()
	if err != nil {
		return core.Expense{}, err
	}
	category, err := p.readCategory(categories)
	if err != nil {
		return core.Expense{}, err
	}
	return core.Expense{Name: name, Category: category, Amount: amount}, nil
}

func (p *Prompter) readName() (string, error) {
	for {
		name, err := p.ask("Enter expense name: ")
		if err != nil {
			return "", err
		}
		switch err := core.ValidateName(name); {
		case err == nil:
			return name, nil
		case errors.Is(err, core.ErrNameTooLong):
			p.Println("Expense name is too long (max 200 characters). Try again.")
		default:
			p.Println("Expense name cannot be empty. Try again.")
		}
	}
}

func (p *Prompter) readAmount() (core.Money, error) {
	for {
		line, err := p.ask("Enter expense amount: $")
		if err != nil {
			return core.Money{}, err
		}
		cents, err := core.ParseDecimalToCents(line)
		if err == nil {
			return core.Money{Cents: cents}, nil
		}
		if m, perr := core.ParseAmount(line); perr == nil && m.Cents <= 0 {
			p.Println("Amount should be greater than zero. Try again.")
			continue
		}
		p.Println("Invalid amount. Please enter a valid number.")
	}
}

func (p *Prompter) readCategory(categories []string) (string, error) {
	if len(categories) == 0 {
		return "", errors.New("no categories to choose from")
	}
	valueRange := fmt.Sprintf("[1-%d]", len(categories))
	for {
		p.Println()
		p.Println("Select expense category:")
		for i, name := range categories {
			p.Printf(" %d. %s\n", i+1, name)
		}

		line, err := p.ask(fmt.Sprintf("Enter category number %s: ", valueRange))
		if err != nil {
			return "", err
		}
		n, err := strconv.Atoi(line)
		if err != nil {
			p.Printf("Invalid input. Please enter a valid number between 1 and %d.\n", len(categories))
			continue
		}
		if n < 1 || n > len(categories) {
			p.Printf("Invalid category number %s. Try again.\n", valueRange)
			continue
		}
		return categories[n-1], nil
	}
}
