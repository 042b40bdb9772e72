// Package storage keeps the mirror worker's SQLite ledger of expenses that
// already reached the spreadsheet, so redelivered messages are not mirrored
// twice.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"expenses/internal/log"

	_ "modernc.org/sqlite"
)

// MirrorRecord is one ledger row.
type MirrorRecord struct {
	MessageID   uuid.UUID
	RowRef      string
	SheetsRef   string
	AmountCents int64
	RecordedAt  time.Time
}

type Ledger struct {
	db     *sql.DB
	logger *log.Logger
}

// OpenLedger opens (creating if needed) the ledger database at dbPath and
// runs its migrations.
func OpenLedger(dbPath string, logger *log.Logger) (*Ledger, error) {
	if logger == nil {
		logger = log.Default(log.ComponentLedger)
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// One writer; modernc serializes on the file anyway.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	logger.Info("Mirror ledger ready", log.FieldPath, dbPath)
	return &Ledger{db: db, logger: logger}, nil
}

func (l *Ledger) Close() error {
	if l.db != nil {
		return l.db.Close()
	}
	return nil
}

// IsMirrored reports whether the message was already mirrored.
func (l *Ledger) IsMirrored(ctx context.Context, id uuid.UUID) (bool, error) {
	var n int
	err := l.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM mirrored_expenses WHERE message_id = ?`, id.String()).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("query ledger: %w", err)
	}
	return n > 0, nil
}

// MarkMirrored records rec. Marking the same message twice is a no-op.
func (l *Ledger) MarkMirrored(ctx context.Context, rec MirrorRecord) error {
	_, err := l.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO mirrored_expenses (message_id, row_ref, sheets_ref, amount_cents, recorded_at)
		 VALUES (?, ?, ?, ?, ?)`,
		rec.MessageID.String(), rec.RowRef, rec.SheetsRef, rec.AmountCents, rec.RecordedAt.UTC())
	if err != nil {
		return fmt.Errorf("insert ledger row: %w", err)
	}
	l.logger.DebugContext(ctx, "Ledger row written",
		log.FieldMessageID, rec.MessageID.String(),
		log.FieldSheetsRef, rec.SheetsRef)
	return nil
}

// Count returns the number of mirrored expenses.
func (l *Ledger) Count(ctx context.Context) (int, error) {
	var n int
	if err := l.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM mirrored_expenses`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count ledger: %w", err)
	}
	return n, nil
}
