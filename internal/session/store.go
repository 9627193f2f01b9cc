// Package session holds the in-progress contact records between the start and
// finish steps of the onboarding flow, keyed by the session token handed to
// the client as a cookie.
//
// The package exposes a small Store interface with two backings: an in-memory
// map for single-instance deployments and a Redis store for deployments where
// several instances must share session state. Both enforce the session TTL
// server-side, so a client resending an expired cookie is rejected even
// though the token once existed.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/tbourn/go-contact-backend/internal/domain"
)

// ErrNotFound is returned when a token does not identify a live session,
// either because it never existed, was finished, or expired.
var ErrNotFound = errors.New("session not found")

// Store is the contract for session persistence. Implementations must be
// safe for concurrent use and must honor the provided context.
type Store interface {
	// Put inserts or refreshes the session keyed by rec.ID, resetting its TTL.
	Put(ctx context.Context, rec domain.ContactRecord) error
	// Get returns the live session for id, or ErrNotFound.
	Get(ctx context.Context, id string) (domain.ContactRecord, error)
	// Delete removes the session for id, or returns ErrNotFound.
	Delete(ctx context.Context, id string) error
}

// entry pairs a record with its expiry deadline.
type entry struct {
	rec      domain.ContactRecord
	deadline time.Time
}

// MemoryStore is a process-local Store backed by a mutex-guarded map.
// Expired entries are treated as absent and reaped lazily on access.
type MemoryStore struct {
	ttl time.Duration
	mu  sync.Mutex
	m   map[string]entry

	// now is a test seam; defaults to time.Now.
	now func() time.Time
}

// NewMemory returns a MemoryStore whose entries live for ttl after their
// last Put. A non-positive ttl disables expiry.
func NewMemory(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		ttl: ttl,
		m:   make(map[string]entry),
		now: time.Now,
	}
}

// Put inserts or refreshes the session keyed by rec.ID.
func (s *MemoryStore) Put(ctx context.Context, rec domain.ContactRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var deadline time.Time
	if s.ttl > 0 {
		deadline = s.now().Add(s.ttl)
	}
	s.m[rec.ID] = entry{rec: rec, deadline: deadline}
	return nil
}

// Get returns the live session for id, or ErrNotFound. An entry past its
// deadline is removed and reported as not found.
func (s *MemoryStore) Get(ctx context.Context, id string) (domain.ContactRecord, error) {
	if err := ctx.Err(); err != nil {
		return domain.ContactRecord{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.m[id]
	if !ok {
		return domain.ContactRecord{}, ErrNotFound
	}
	if !e.deadline.IsZero() && s.now().After(e.deadline) {
		delete(s.m, id)
		return domain.ContactRecord{}, ErrNotFound
	}
	return e.rec, nil
}

// Delete removes the session for id. Deleting an absent or expired session
// returns ErrNotFound.
func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.m[id]
	if !ok {
		return ErrNotFound
	}
	delete(s.m, id)
	if !e.deadline.IsZero() && s.now().After(e.deadline) {
		return ErrNotFound
	}
	return nil
}

// Len reports the number of stored entries, including not-yet-reaped expired
// ones. Intended for tests and diagnostics.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.m)
}
