package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tbourn/go-contact-backend/internal/domain"
)

func newStore(t *testing.T) *CSVStore {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data", "contacts.csv")
	s, err := New(path)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

func TestNew_CreatesHeaderOnlyFile(t *testing.T) {
	s := newStore(t)

	b, err := os.ReadFile(s.Path())
	if err != nil {
		t.Fatalf("read table: %v", err)
	}
	want := strings.Join(domain.Columns, ",") + "\n"
	if string(b) != want {
		t.Fatalf("fresh table = %q; want %q", b, want)
	}

	rows, err := s.ReadAll(context.Background())
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("fresh table has %d rows; want 0", len(rows))
	}
}

func TestNew_KeepsExistingFile(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	if err := s.Append(ctx, domain.ContactRecord{ID: "a", Name: "Ana"}); err != nil {
		t.Fatalf("Append: %v", err)
	}

	// Reopening must not truncate.
	s2, err := New(s.Path())
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	rows, err := s2.ReadAll(ctx)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if len(rows) != 1 || rows[0]["id"] != "a" {
		t.Fatalf("reopened rows = %v", rows)
	}
}

func TestAppend_ReadAll_RoundTrip(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	rec := domain.ContactRecord{
		ID: "id-1", Name: "Ana, Silva", CPF: "123.456.789-01",
		Nascimento: "10/05/1990", Data: "14:05 - 21/08", IP: "1.2.3.4",
	}
	if err := s.Append(ctx, rec); err != nil {
		t.Fatalf("Append: %v", err)
	}

	rows, err := s.ReadAll(ctx)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("got %d rows; want 1", len(rows))
	}
	got := rows[0]
	if got["name"] != "Ana, Silva" { // comma survives CSV quoting
		t.Errorf("name = %q", got["name"])
	}
	if got["email"] != "" {
		t.Errorf("unset column should be empty string, got %q", got["email"])
	}
	if len(got) != len(domain.Columns) {
		t.Errorf("row has %d keys; want %d", len(got), len(domain.Columns))
	}
}

func TestUpsert_OverwritesMatchingRowOnly(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	if err := s.Append(ctx, domain.ContactRecord{ID: "a", Name: "Ana"}); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := s.Append(ctx, domain.ContactRecord{ID: "b", Name: "Bia"}); err != nil {
		t.Fatalf("Append: %v", err)
	}

	if err := s.Upsert(ctx, domain.ContactRecord{ID: "a", Name: "Ana", Email: "a@b.com"}); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	rows, err := s.ReadAll(ctx)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows; want 2", len(rows))
	}
	if rows[0]["id"] != "a" || rows[0]["email"] != "a@b.com" {
		t.Errorf("row a not updated: %v", rows[0])
	}
	if rows[1]["id"] != "b" || rows[1]["email"] != "" {
		t.Errorf("row b must be untouched: %v", rows[1])
	}
}

func TestUpsert_AppendsWhenIDMissing(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	if err := s.Upsert(ctx, domain.ContactRecord{ID: "ghost", Name: "G"}); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if _, err := s.Get(ctx, "ghost"); err != nil {
		t.Fatalf("Get after upsert-append: %v", err)
	}
}

func TestGet_NotFound(t *testing.T) {
	s := newStore(t)
	_, err := s.Get(context.Background(), "nope")
	if !errors.Is(err, ErrRowNotFound) {
		t.Fatalf("err = %v; want ErrRowNotFound", err)
	}
}

func TestReplaceAll_CanonicalOrderAndValidation(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	if err := s.Append(ctx, domain.ContactRecord{ID: "old"}); err != nil {
		t.Fatalf("Append: %v", err)
	}

	rows := []map[string]string{
		{"id": "n1", "name": "Nova", "cpf": "111.222.333-44"},
		{"id": "n2"}, // missing keys fill as empty
	}
	if err := s.ReplaceAll(ctx, rows); err != nil {
		t.Fatalf("ReplaceAll: %v", err)
	}

	got, err := s.ReadAll(ctx)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if len(got) != 2 || got[0]["id"] != "n1" || got[1]["id"] != "n2" {
		t.Fatalf("replaced rows = %v", got)
	}
	if got[0]["cpf"] != "111.222.333-44" || got[1]["name"] != "" {
		t.Fatalf("cell values wrong: %v", got)
	}
}

func TestReplaceAll_RejectsUnknownColumns(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	if err := s.Append(ctx, domain.ContactRecord{ID: "keep"}); err != nil {
		t.Fatalf("Append: %v", err)
	}

	err := s.ReplaceAll(ctx, []map[string]string{{"id": "x", "hacker": "1"}})
	if !errors.Is(err, ErrInvalidRow) {
		t.Fatalf("err = %v; want ErrInvalidRow", err)
	}

	// Nothing may have been written.
	rows, err := s.ReadAll(ctx)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if len(rows) != 1 || rows[0]["id"] != "keep" {
		t.Fatalf("table modified after rejected replace: %v", rows)
	}
}

func TestReplaceAll_EmptyListClearsTable(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	if err := s.Append(ctx, domain.ContactRecord{ID: "a"}); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := s.ReplaceAll(ctx, nil); err != nil {
		t.Fatalf("ReplaceAll: %v", err)
	}
	rows, err := s.ReadAll(ctx)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("table should be header-only, got %v", rows)
	}
}

func TestContextCancellation(t *testing.T) {
	s := newStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := s.ReadAll(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("ReadAll err = %v; want context.Canceled", err)
	}
	if err := s.Append(ctx, domain.ContactRecord{ID: "x"}); !errors.Is(err, context.Canceled) {
		t.Fatalf("Append err = %v; want context.Canceled", err)
	}
}
