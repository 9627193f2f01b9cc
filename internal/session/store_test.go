package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tbourn/go-contact-backend/internal/domain"
)

func TestMemoryStore_PutGetDelete(t *testing.T) {
	s := NewMemory(time.Minute)
	ctx := context.Background()

	rec := domain.ContactRecord{ID: "tok-1", Name: "Ana"}
	if err := s.Put(ctx, rec); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, err := s.Get(ctx, "tok-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != rec {
		t.Fatalf("Get = %+v; want %+v", got, rec)
	}

	if err := s.Delete(ctx, "tok-1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Get(ctx, "tok-1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get after delete = %v; want ErrNotFound", err)
	}
	if err := s.Delete(ctx, "tok-1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second Delete = %v; want ErrNotFound", err)
	}
}

func TestMemoryStore_UnknownToken(t *testing.T) {
	s := NewMemory(time.Minute)
	if _, err := s.Get(context.Background(), "ghost"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get unknown = %v; want ErrNotFound", err)
	}
}

func TestMemoryStore_ExpiryEnforced(t *testing.T) {
	s := NewMemory(5 * time.Minute)
	now := time.Unix(1_700_000_000, 0)
	s.now = func() time.Time { return now }
	ctx := context.Background()

	if err := s.Put(ctx, domain.ContactRecord{ID: "tok"}); err != nil {
		t.Fatalf("Put: %v", err)
	}

	// Just inside the window.
	now = now.Add(5 * time.Minute)
	if _, err := s.Get(ctx, "tok"); err != nil {
		t.Fatalf("Get at deadline: %v", err)
	}

	// Past the window: the stale token must be rejected and reaped.
	now = now.Add(time.Second)
	if _, err := s.Get(ctx, "tok"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get past deadline = %v; want ErrNotFound", err)
	}
	if s.Len() != 0 {
		t.Fatalf("expired entry not reaped, len = %d", s.Len())
	}
}

func TestMemoryStore_PutRefreshesDeadline(t *testing.T) {
	s := NewMemory(5 * time.Minute)
	now := time.Unix(1_700_000_000, 0)
	s.now = func() time.Time { return now }
	ctx := context.Background()

	if err := s.Put(ctx, domain.ContactRecord{ID: "tok"}); err != nil {
		t.Fatalf("Put: %v", err)
	}

	now = now.Add(4 * time.Minute)
	if err := s.Put(ctx, domain.ContactRecord{ID: "tok", Email: "a@b.com"}); err != nil {
		t.Fatalf("refresh Put: %v", err)
	}

	// 4m + 4m > original 5m window, but within the refreshed one.
	now = now.Add(4 * time.Minute)
	got, err := s.Get(ctx, "tok")
	if err != nil {
		t.Fatalf("Get after refresh: %v", err)
	}
	if got.Email != "a@b.com" {
		t.Fatalf("refreshed record = %+v", got)
	}
}

func TestMemoryStore_ZeroTTLNeverExpires(t *testing.T) {
	s := NewMemory(0)
	now := time.Unix(1_700_000_000, 0)
	s.now = func() time.Time { return now }
	ctx := context.Background()

	if err := s.Put(ctx, domain.ContactRecord{ID: "tok"}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	now = now.Add(24 * time.Hour)
	if _, err := s.Get(ctx, "tok"); err != nil {
		t.Fatalf("Get with ttl=0: %v", err)
	}
}

func TestMemoryStore_ContextCancellation(t *testing.T) {
	s := NewMemory(time.Minute)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := s.Put(ctx, domain.ContactRecord{ID: "x"}); !errors.Is(err, context.Canceled) {
		t.Fatalf("Put err = %v; want context.Canceled", err)
	}
	if _, err := s.Get(ctx, "x"); !errors.Is(err, context.Canceled) {
		t.Fatalf("Get err = %v; want context.Canceled", err)
	}
}
