package amqp

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	"expenses/internal/core"
)

// ExpenseRecordedMessage announces an expense that was appended to the
// expense file. It carries the full record since the file has no row IDs.
type ExpenseRecordedMessage struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Category    string    `json:"category"`
	AmountCents int64     `json:"amount_cents"`
	RowRef      string    `json:"row_ref,omitempty"`
	RecordedAt  time.Time `json:"recorded_at"`
}

// NewExpenseRecordedMessage creates a message with a fresh random ID
func NewExpenseRecordedMessage(e core.Expense, rowRef string, recordedAt time.Time) *ExpenseRecordedMessage {
	return &ExpenseRecordedMessage{
		ID:          uuid.New(),
		Name:        e.Name,
		Category:    e.Category,
		AmountCents: e.Amount.Cents,
		RowRef:      rowRef,
		RecordedAt:  recordedAt,
	}
}

// Expense returns the carried record
func (m *ExpenseRecordedMessage) Expense() core.Expense {
	return core.Expense{
		Name:     m.Name,
		Category: m.Category,
		Amount:   core.Money{Cents: m.AmountCents},
	}
}

// ToJSON converts the message to JSON bytes
func (m *ExpenseRecordedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ExpenseRecordedMessageFromJSON decodes a message and rejects ones without an ID
func ExpenseRecordedMessageFromJSON(data []byte) (*ExpenseRecordedMessage, error) {
	var msg ExpenseRecordedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.ID == uuid.Nil {
		return nil, errors.New("message has no id")
	}
	return &msg, nil
}
