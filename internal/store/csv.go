// Package store implements the durable record store: a CSV table with a fixed
// 15-column header holding one row per completed-or-in-progress contact.
//
// The store follows the "thin repository" approach of the persistence layer:
// no business logic, only row-level operations. Every mutation is a full
// read-modify-rewrite of the table guarded by a single-writer mutex, and each
// rewrite goes through a temp file renamed over the original so readers never
// observe a half-written table. This trades throughput for simplicity, which
// is acceptable because the dataset is small.
//
// Error semantics:
//   - ErrRowNotFound when a row lookup by id misses.
//   - ErrInvalidRow (wrapped) when a bulk-replace row carries unknown columns.
//   - Raw I/O errors are propagated for the handler layer to map to HTTP 500.
package store

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/tbourn/go-contact-backend/internal/domain"
)

var (
	// ErrRowNotFound is returned when no row matches the requested id.
	ErrRowNotFound = errors.New("contact row not found")

	// ErrInvalidRow is returned when a bulk-replace row does not fit the
	// fixed column set. It is always wrapped with the offending column.
	ErrInvalidRow = errors.New("row does not match the contact column set")
)

// CSVStore is a contact table persisted as a single CSV file.
// All methods are safe for concurrent use; mutations serialize on an
// internal mutex so there is exactly one writer at a time.
type CSVStore struct {
	path string
	mu   sync.Mutex
}

// New opens (or creates) the table at path. A missing file or missing parent
// directory is created and initialized with the canonical header before any
// other operation can touch it.
func New(path string) (*CSVStore, error) {
	s := &CSVStore{path: path}
	if err := s.ensureHeader(); err != nil {
		return nil, err
	}
	return s, nil
}

// Path returns the location of the backing file.
func (s *CSVStore) Path() string { return s.path }

// ensureHeader creates the file with the canonical header if it is absent.
func (s *CSVStore) ensureHeader() error {
	if _, err := os.Stat(s.path); err == nil {
		return nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("stat contact table: %w", err)
	}
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create contact table dir: %w", err)
		}
	}
	return s.writeAll(nil)
}

// readAll loads every data row in file order. Caller must hold s.mu.
func (s *CSVStore) readAll() ([]domain.ContactRecord, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("open contact table: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1 // tolerate short rows; decoding pads them
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read contact table: %w", err)
	}
	if len(rows) <= 1 {
		return nil, nil // header only (or empty file)
	}

	out := make([]domain.ContactRecord, 0, len(rows)-1)
	for _, row := range rows[1:] {
		out = append(out, domain.FromRow(row))
	}
	return out, nil
}

// writeAll rewrites the whole table (header + rows) atomically via a temp
// file in the same directory. Caller must hold s.mu (except during New).
func (s *CSVStore) writeAll(recs []domain.ContactRecord) error {
	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp table: %w", err)
	}
	defer os.Remove(tmp.Name())

	w := csv.NewWriter(tmp)
	if err := w.Write(domain.Columns); err != nil {
		tmp.Close()
		return fmt.Errorf("write header: %w", err)
	}
	for _, rec := range recs {
		if err := w.Write(rec.Row()); err != nil {
			tmp.Close()
			return fmt.Errorf("write row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		tmp.Close()
		return fmt.Errorf("flush table: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp table: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replace contact table: %w", err)
	}
	return nil
}

// ReadAll returns every row as a column→value mapping in file order.
// Unset cells come back as empty strings, never missing keys.
func (s *CSVStore) ReadAll(ctx context.Context) ([]map[string]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	recs, err := s.readAll()
	if err != nil {
		return nil, err
	}
	out := make([]map[string]string, 0, len(recs))
	for _, rec := range recs {
		out = append(out, rec.Map())
	}
	return out, nil
}

// Append adds rec as a new row at the end of the table.
func (s *CSVStore) Append(ctx context.Context, rec domain.ContactRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	recs, err := s.readAll()
	if err != nil {
		return err
	}
	return s.writeAll(append(recs, rec))
}

// Upsert overwrites every column of the row whose id matches rec.ID, or
// appends the row when no such id exists. The append path keeps the table
// consistent with the session state even if a prior sync was lost.
func (s *CSVStore) Upsert(ctx context.Context, rec domain.ContactRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	recs, err := s.readAll()
	if err != nil {
		return err
	}
	found := false
	for i := range recs {
		if recs[i].ID == rec.ID {
			recs[i] = rec
			found = true
			break
		}
	}
	if !found {
		recs = append(recs, rec)
	}
	return s.writeAll(recs)
}

// Get returns the row whose id matches, or ErrRowNotFound.
func (s *CSVStore) Get(ctx context.Context, id string) (domain.ContactRecord, error) {
	if err := ctx.Err(); err != nil {
		return domain.ContactRecord{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	recs, err := s.readAll()
	if err != nil {
		return domain.ContactRecord{}, err
	}
	for _, rec := range recs {
		if rec.ID == id {
			return rec, nil
		}
	}
	return domain.ContactRecord{}, ErrRowNotFound
}

// ReplaceAll overwrites the entire table with exactly the supplied rows, in
// the canonical column order. Each row is validated against the fixed column
// set first; a row carrying an unknown column fails the whole call with
// ErrInvalidRow and nothing is written.
func (s *CSVStore) ReplaceAll(ctx context.Context, rows []map[string]string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	known := make(map[string]struct{}, len(domain.Columns))
	for _, col := range domain.Columns {
		known[col] = struct{}{}
	}

	recs := make([]domain.ContactRecord, 0, len(rows))
	for i, row := range rows {
		for col := range row {
			if _, ok := known[col]; !ok {
				return fmt.Errorf("%w: row %d has unknown column %q", ErrInvalidRow, i, col)
			}
		}
		cells := make([]string, len(domain.Columns))
		for j, col := range domain.Columns {
			cells[j] = row[col]
		}
		recs = append(recs, domain.FromRow(cells))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writeAll(recs)
}
