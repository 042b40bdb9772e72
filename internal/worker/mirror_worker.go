package worker

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"expenses/internal/amqp"
	"expenses/internal/core"
	"expenses/internal/log"
	"expenses/internal/storage"
)

// Sink receives mirrored expenses, e.g. a spreadsheet.
type Sink interface {
	MirrorExpense(ctx context.Context, recordedAt time.Time, e core.Expense) (string, error)
}

// Ledger remembers which messages were already mirrored.
type Ledger interface {
	IsMirrored(ctx context.Context, id uuid.UUID) (bool, error)
	MarkMirrored(ctx context.Context, rec storage.MirrorRecord) error
}

// MirrorWorker copies recorded expenses from the broker to a Sink exactly
// once per message ID.
type MirrorWorker struct {
	sink   Sink
	ledger Ledger
	logger *log.Logger

	// Pause between MarkMirrored attempts once the row is already in the sink.
	markRetryDelay time.Duration

	mirrored atomic.Int64
	skipped  atomic.Int64
}

const markAttempts = 3

func NewMirrorWorker(sink Sink, ledger Ledger, logger *log.Logger) *MirrorWorker {
	if logger == nil {
		logger = log.Default(log.ComponentWorker)
	}
	return &MirrorWorker{sink: sink, ledger: ledger, logger: logger, markRetryDelay: 500 * time.Millisecond}
}

// HandleExpenseRecorded mirrors one message. A returned error asks the
// consumer to redeliver it later.
func (w *MirrorWorker) HandleExpenseRecorded(ctx context.Context, msg *amqp.ExpenseRecordedMessage) error {
	logger := w.logger.With(log.FieldMessageID, msg.ID.String())

	e := msg.Expense()
	if err := e.Validate(); err != nil {
		// Redelivery cannot fix a bad payload
		logger.ErrorContext(ctx, "Dropping invalid expense message",
			log.FieldOperation, log.OpValidate,
			log.FieldError, err)
		w.skipped.Add(1)
		return nil
	}

	done, err := w.ledger.IsMirrored(ctx, msg.ID)
	if err != nil {
		return fmt.Errorf("check ledger: %w", err)
	}
	if done {
		logger.DebugContext(ctx, "Expense already mirrored, skipping")
		w.skipped.Add(1)
		return nil
	}

	ref, err := w.sink.MirrorExpense(ctx, msg.RecordedAt, e)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to mirror expense",
			log.FieldOperation, log.OpMirror,
			log.FieldError, err)
		return fmt.Errorf("mirror expense: %w", err)
	}

	rec := storage.MirrorRecord{
		MessageID:   msg.ID,
		RowRef:      msg.RowRef,
		SheetsRef:   ref,
		AmountCents: msg.AmountCents,
		RecordedAt:  msg.RecordedAt,
	}
	if err := w.markMirrored(ctx, rec); err != nil {
		// The row is in the sheet. Acknowledge anyway: a redelivery would
		// find no ledger entry and append it a second time.
		logger.ErrorContext(ctx, "Expense mirrored but ledger update failed",
			log.FieldOperation, log.OpMirror,
			log.FieldSheetsRef, ref,
			log.FieldErrorType, log.ErrorTypeIO,
			log.FieldError, err)
	}

	w.mirrored.Add(1)
	logger.InfoContext(ctx, "Expense mirrored",
		log.FieldOperation, log.OpMirror,
		log.FieldSheetsRef, ref,
		log.FieldExpenseName, e.Name,
		log.FieldCategory, e.Category,
		log.FieldAmountCents, e.Amount.Cents)
	return nil
}

// markMirrored records rec, retrying a few times before giving up.
func (w *MirrorWorker) markMirrored(ctx context.Context, rec storage.MirrorRecord) error {
	var err error
	for attempt := 1; attempt <= markAttempts; attempt++ {
		if err = w.ledger.MarkMirrored(ctx, rec); err == nil {
			return nil
		}
		if attempt == markAttempts {
			break
		}
		w.logger.WarnContext(ctx, "Ledger update failed, retrying",
			log.FieldMessageID, rec.MessageID.String(),
			log.FieldError, err,
			"attempt", attempt)
		select {
		case <-ctx.Done():
			return fmt.Errorf("mark mirrored: %w", err)
		case <-time.After(w.markRetryDelay):
		}
	}
	return fmt.Errorf("mark mirrored: %w", err)
}

// Stats returns how many messages were mirrored and how many were skipped as
// duplicates or invalid.
func (w *MirrorWorker) Stats() (mirrored, skipped int64) {
	return w.mirrored.Load(), w.skipped.Load()
}
