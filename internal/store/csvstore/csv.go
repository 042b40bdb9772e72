// Package csvstore persists expenses to a comma-separated file with a
// name,category,amount header. The file is append-only.
package csvstore

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"expenses/internal/cache"
	"expenses/internal/core"
	"expenses/internal/log"
	"expenses/internal/store"
)

// DefaultPath is used when no file is configured.
const DefaultPath = "expenses.csv"

// Header is the first row of every expense file.
var Header = []string{"name", "category", "amount"}

var _ store.Store = (*Store)(nil)

// snapshot is a parsed file, valid while the file size and mtime are unchanged.
type snapshot struct {
	size     int64
	modTime  time.Time
	expenses []core.Expense
	warnings []core.Warning
}

type Store struct {
	path   string
	cache  cache.Cache[snapshot]
	logger *log.Logger
}

type Option func(*Store)

// WithReadCache caches the parsed file for ttl. A zero ttl disables caching.
func WithReadCache(ttl time.Duration) Option {
	return func(s *Store) {
		if ttl > 0 {
			s.cache = cache.NewLRUCache[snapshot](4, ttl)
		}
	}
}

func WithLogger(l *log.Logger) Option {
	return func(s *Store) { s.logger = l }
}

func New(path string, opts ...Option) *Store {
	if path == "" {
		path = DefaultPath
	}
	s := &Store{path: path}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = log.Default(log.ComponentStorage)
	}
	return s
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}

// Append writes e as one row, creating the file with its header first when it
// is empty. The header and row go out in a single write followed by fsync, so
// a failed append never splits rows that were already on disk.
func (s *Store) Append(ctx context.Context, e core.Expense) (string, error) {
	if err := e.Validate(); err != nil {
		return "", err
	}
	if dir := filepath.Dir(s.path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("create expense directory: %w", err)
		}
	}

	f, err := os.OpenFile(s.path, os.O_RDWR|os.O_APPEND|os.O_CREATE, 0o644)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", s.path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", fmt.Errorf("stat %s: %w", s.path, err)
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if info.Size() == 0 {
		if err := w.Write(Header); err != nil {
			return "", fmt.Errorf("encode header: %w", err)
		}
	} else {
		torn, err := endsMidRow(f, info.Size())
		if err != nil {
			return "", fmt.Errorf("inspect %s: %w", s.path, err)
		}
		if torn {
			s.logger.WarnContext(ctx, "Expense file ends mid-row, isolating torn tail",
				log.FieldPath, s.path)
			buf.WriteByte('\n')
		}
	}
	w.Flush()
	offset := info.Size() + int64(buf.Len())

	if err := w.Write(encode(e)); err != nil {
		return "", fmt.Errorf("encode expense: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("encode expense: %w", err)
	}

	if _, err := f.Write(buf.Bytes()); err != nil {
		return "", fmt.Errorf("write %s: %w", s.path, err)
	}
	if err := f.Sync(); err != nil {
		return "", fmt.Errorf("sync %s: %w", s.path, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close %s: %w", s.path, err)
	}
	if s.cache != nil {
		s.cache.Delete(s.path)
	}

	ref := fmt.Sprintf("%s@%d", s.path, offset)
	s.logger.DebugContext(ctx, "Expense appended",
		log.FieldRowRef, ref,
		log.FieldExpenseName, e.Name,
		log.FieldCategory, e.Category,
		log.FieldAmountCents, e.Amount.Cents)
	return ref, nil
}

// ListExpenses reads every row after the header. Rows without exactly three
// fields or with a non-numeric amount are skipped with a warning.
func (s *Store) ListExpenses(ctx context.Context) ([]core.Expense, []core.Warning, error) {
	f, err := os.Open(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil, fmt.Errorf("%w: %s", store.ErrNotFound, s.path)
		}
		return nil, nil, fmt.Errorf("open %s: %w", s.path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, nil, fmt.Errorf("stat %s: %w", s.path, err)
	}
	if s.cache != nil {
		if snap, ok := s.cache.Get(s.path); ok && snap.size == info.Size() && snap.modTime.Equal(info.ModTime()) {
			return cloneExpenses(snap.expenses), cloneWarnings(snap.warnings), nil
		}
	}

	expenses, warnings, err := decode(f)
	if err != nil {
		return nil, nil, fmt.Errorf("read %s: %w", s.path, err)
	}
	for _, w := range warnings {
		s.logger.WarnContext(ctx, "Skipping expense row",
			log.FieldPath, s.path,
			log.FieldLine, w.Line,
			log.FieldWarningKind, string(w.Kind),
			"reason", w.Message)
	}

	if s.cache != nil {
		s.cache.Set(s.path, snapshot{
			size:     info.Size(),
			modTime:  info.ModTime(),
			expenses: cloneExpenses(expenses),
			warnings: cloneWarnings(warnings),
		})
	}
	return expenses, warnings, nil
}

func encode(e core.Expense) []string {
	return []string{e.Name, e.Category, e.Amount.String()}
}

// decode parses the whole file. A row the CSV reader rejects, such as a torn
// row that opened a quote, is reported and reading resumes on the physical
// line after the one the row started on.
func decode(r io.Reader) ([]core.Expense, []core.Warning, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, nil, err
	}

	var (
		expenses []core.Expense
		warnings []core.Warning
		first    = true
		skipped  int // physical lines before data
	)
	for {
		cr := csv.NewReader(bytes.NewReader(data))
		cr.FieldsPerRecord = -1

		var pe *csv.ParseError
		for {
			rec, err := cr.Read()
			if err == io.EOF {
				return expenses, warnings, nil
			}
			if err != nil {
				if errors.As(err, &pe) {
					break
				}
				return nil, nil, err
			}
			line, _ := cr.FieldPos(0)
			line += skipped

			if first {
				first = false
				if !isHeader(rec) {
					warnings = append(warnings, core.Warning{
						Kind:    core.WarningUnexpectedHead,
						Line:    line,
						Message: fmt.Sprintf("first row %q is not the expected header, skipped", rec),
					})
				}
				continue
			}

			if len(rec) != len(Header) {
				warnings = append(warnings, core.Warning{
					Kind:    core.WarningMalformedRow,
					Line:    line,
					Message: fmt.Sprintf("skipping invalid row %q: expected %d fields, got %d", rec, len(Header), len(rec)),
				})
				continue
			}
			amount, err := core.ParseAmount(rec[2])
			if err != nil {
				warnings = append(warnings, core.Warning{
					Kind:    core.WarningMalformedRow,
					Line:    line,
					Message: fmt.Sprintf("skipping invalid row %q: amount %q is not numeric", rec, rec[2]),
				})
				continue
			}
			expenses = append(expenses, core.Expense{Name: rec[0], Category: rec[1], Amount: amount})
		}

		// A rejected first row still counts as the header.
		first = false
		warnings = append(warnings, core.Warning{
			Kind:    core.WarningMalformedRow,
			Line:    pe.StartLine + skipped,
			Message: fmt.Sprintf("skipping unparseable row: %v", pe.Err),
		})
		rest, ok := afterLine(data, pe.StartLine)
		if !ok {
			return expenses, warnings, nil
		}
		data = rest
		skipped += pe.StartLine
	}
}

// afterLine returns data following the n-th newline.
func afterLine(data []byte, n int) ([]byte, bool) {
	for i := 0; i < n; i++ {
		j := bytes.IndexByte(data, '\n')
		if j < 0 {
			return nil, false
		}
		data = data[j+1:]
	}
	return data, true
}

func isHeader(rec []string) bool {
	if len(rec) != len(Header) {
		return false
	}
	for i := range Header {
		if rec[i] != Header[i] {
			return false
		}
	}
	return true
}

// endsMidRow reports whether the last byte of a non-empty file is not a newline.
func endsMidRow(f *os.File, size int64) (bool, error) {
	last := make([]byte, 1)
	if _, err := f.ReadAt(last, size-1); err != nil {
		return false, err
	}
	return last[0] != '\n', nil
}

func cloneExpenses(in []core.Expense) []core.Expense {
	if in == nil {
		return nil
	}
	return append([]core.Expense(nil), in...)
}

func cloneWarnings(in []core.Warning) []core.Warning {
	if in == nil {
		return nil
	}
	return append([]core.Warning(nil), in...)
}
