package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"expenses/internal/amqp"
	"expenses/internal/core"
	"expenses/internal/log"
	"expenses/internal/store"
)

// Publisher announces recorded expenses to downstream consumers.
type Publisher interface {
	PublishExpenseRecorded(ctx context.Context, msg *amqp.ExpenseRecordedMessage) error
}

// ExpenseService validates and records expenses and builds budget reports
// from whatever the store returns.
type ExpenseService struct {
	store     store.Store
	publisher Publisher
	budgets   core.BudgetTable
	logger    *log.Logger
	now       func() time.Time
}

type Option func(*ExpenseService)

// WithPublisher announces every recorded expense through p.
func WithPublisher(p Publisher) Option {
	return func(s *ExpenseService) { s.publisher = p }
}

func WithLogger(l *log.Logger) Option {
	return func(s *ExpenseService) { s.logger = l }
}

// WithClock replaces time.Now for message timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *ExpenseService) { s.now = now }
}

func NewExpenseService(st store.Store, budgets core.BudgetTable, opts ...Option) *ExpenseService {
	s := &ExpenseService{
		store:   st,
		budgets: budgets,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = log.Default(log.ComponentExpense)
	}
	return s
}

// Categories returns the known categories in table order.
func (s *ExpenseService) Categories() []string {
	return s.budgets.Categories()
}

// Budgets returns the category table in use.
func (s *ExpenseService) Budgets() core.BudgetTable {
	return s.budgets
}

// AddExpense validates e against the budget table and appends it to the
// store. Publishing is best effort: the store is the source of truth.
func (s *ExpenseService) AddExpense(ctx context.Context, e core.Expense) error {
	if err := s.budgets.Check(e); err != nil {
		s.logger.WithFields(log.NewFields().
			WithOperation(log.OpValidate).
			WithExpense(e.Name, e.Category, e.Amount.Cents).
			WithError(err).
			WithErrorType(log.ErrorTypeValidation)).
			WarnContext(ctx, "Rejected expense")
		return err
	}

	ref, err := s.store.Append(ctx, e)
	if err != nil {
		s.logger.WithFields(log.NewFields().
			WithOperation(log.OpAppend).
			WithExpense(e.Name, e.Category, e.Amount.Cents).
			WithError(err).
			WithErrorType(log.ErrorTypeIO)).
			ErrorContext(ctx, "Failed to save expense")
		return fmt.Errorf("save expense: %w", err)
	}
	s.logger.InfoContext(ctx, "Expense saved",
		log.FieldRowRef, ref,
		log.FieldExpenseName, e.Name,
		log.FieldCategory, e.Category,
		log.FieldAmountCents, e.Amount.Cents)

	if s.publisher != nil {
		msg := amqp.NewExpenseRecordedMessage(e, ref, s.now())
		if err := s.publisher.PublishExpenseRecorded(ctx, msg); err != nil {
			// Don't fail the request - expense is saved locally
			s.logger.ErrorContext(ctx, "Failed to publish expense recorded message",
				log.FieldOperation, log.OpPublish,
				log.FieldMessageID, msg.ID.String(),
				log.FieldError, err)
		}
	}
	return nil
}

// Summarize reads every stored expense and reports spend against overall
// as of asOf. Rows the store skipped appear in the report warnings ahead of
// any unknown-category warnings.
func (s *ExpenseService) Summarize(ctx context.Context, overall core.Money, asOf time.Time) (core.Report, error) {
	if overall.Cents < 0 {
		return core.Report{}, core.ErrNegativeBudget
	}

	expenses, skipped, err := s.store.ListExpenses(ctx)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.logger.WarnContext(ctx, "No expense file yet",
				log.FieldOperation, log.OpSummarize,
				log.FieldErrorType, log.ErrorTypeNotFound,
				log.FieldError, err)
		} else {
			s.logger.ErrorContext(ctx, "Failed to read expenses",
				log.FieldOperation, log.OpRead,
				log.FieldErrorType, log.ErrorTypeIO,
				log.FieldError, err)
		}
		return core.Report{}, fmt.Errorf("read expenses: %w", err)
	}

	report := core.Summarize(expenses, overall, s.budgets, asOf)
	for _, w := range report.Warnings {
		s.logger.WarnContext(ctx, "Report warning",
			log.FieldWarningKind, string(w.Kind),
			log.FieldCategory, w.Category,
			"reason", w.Message)
	}
	if len(skipped) > 0 {
		report.Warnings = append(append([]core.Warning(nil), skipped...), report.Warnings...)
	}
	return report, nil
}
