// Package services – ContactService
//
// This file implements the ContactService, the controller of the onboarding
// session lifecycle. It owns the only code paths allowed to mutate the session
// store and the record store, and keeps the two consistent: a session is
// created together with its table row (start), every partial update is merged
// in memory and re-synced as a full row (complete), and teardown removes the
// session while the row keeps its last synced state (finish).
//
// Service-level errors (e.g., ErrSessionNotFound) are returned for predictable
// cases so handlers can map them to HTTP results consistently.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/tbourn/go-contact-backend/internal/domain"
	"github.com/tbourn/go-contact-backend/internal/lookup"
	"github.com/tbourn/go-contact-backend/internal/session"
	"github.com/tbourn/go-contact-backend/internal/utils"
)

// LookupClient is the identity-provider contract required by ContactService.
type LookupClient interface {
	// ByCPF returns the provider's biographic record for an 11-digit CPF.
	ByCPF(ctx context.Context, cpf string) (*lookup.Person, error)
}

// RecordStore is the durable-table contract required by ContactService.
// Implementations must serialize their read-modify-write sequences.
type RecordStore interface {
	// ReadAll returns every row as a column→value mapping.
	ReadAll(ctx context.Context) ([]map[string]string, error)
	// Append adds a new row at the end of the table.
	Append(ctx context.Context, rec domain.ContactRecord) error
	// Upsert overwrites the row matching rec.ID, appending when absent.
	Upsert(ctx context.Context, rec domain.ContactRecord) error
	// ReplaceAll overwrites the whole table with the supplied rows.
	ReplaceAll(ctx context.Context, rows []map[string]string) error
}

// ContactService orchestrates the session lifecycle. No other component may
// mutate the session store or the record store.
type ContactService struct {
	// Store is the durable contact table.
	Store RecordStore
	// Sessions holds in-progress records keyed by session token.
	Sessions session.Store
	// Lookup is the external identity-data provider.
	Lookup LookupClient

	// Location is the time zone used for the creation timestamp.
	Location *time.Location

	// now is a test seam; defaults to time.Now.
	now func() time.Time
}

// NewContactService constructs a ContactService bound to its collaborators.
func NewContactService(store RecordStore, sessions session.Store, lk LookupClient, loc *time.Location) *ContactService {
	return &ContactService{
		Store:    store,
		Sessions: sessions,
		Lookup:   lk,
		Location: loc,
		now:      time.Now,
	}
}

// Start creates a new onboarding session for the caller at ip, seeding the
// record from the identity lookup for cpf. On success it returns the session
// token, having inserted the session entry and appended the matching table
// row. The token identifies both from then on.
func (s *ContactService) Start(ctx context.Context, ip, cpf string) (string, error) {
	if !isDigits(cpf) || len(cpf) != 11 {
		return "", ErrInvalidCPF
	}

	p, err := s.Lookup.ByCPF(ctx, cpf)
	if err != nil {
		if errors.Is(err, lookup.ErrNoData) {
			return "", ErrCPFNotFound
		}
		return "", fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	mae := p.FirstChildName()
	if mae == "" {
		mae = utils.NotAvailable
	}

	rec := domain.ContactRecord{
		ID:         uuid.NewString(),
		Name:       p.Nome,
		Mae:        mae,
		CPF:        utils.FormatCPF(p.CPF),
		Nascimento: utils.FormatBirthDate(p.Nasc),
		Data:       utils.CreationStamp(s.now(), s.Location),
		IP:         ip,
	}

	if err := s.Sessions.Put(ctx, rec); err != nil {
		return "", fmt.Errorf("create session: %w", err)
	}
	if err := s.Store.Append(ctx, rec); err != nil {
		// Roll the session back so a live token always has a table row.
		if derr := s.Sessions.Delete(ctx, rec.ID); derr != nil && !errors.Is(derr, session.ErrNotFound) {
			log.Error().Err(derr).Str("session_id", rec.ID).Msg("session rollback failed")
		}
		return "", fmt.Errorf("append contact row: %w", err)
	}
	return rec.ID, nil
}

// Complete merges the non-empty fields of upd into the session identified by
// token and re-syncs the full row into the record store. The whole call
// either applies or fails: the store row is rewritten before the session is
// refreshed, and a store failure leaves the session untouched.
//
// Complete may be called any number of times per session; each call is an
// idempotent re-merge, and syncing every field (not just the ones supplied)
// repairs a row that a prior partial failure left behind.
func (s *ContactService) Complete(ctx context.Context, token string, upd domain.ContactUpdate) error {
	rec, err := s.Sessions.Get(ctx, token)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return ErrSessionNotFound
		}
		return fmt.Errorf("fetch session: %w", err)
	}

	upd.Apply(&rec)

	if err := s.Store.Upsert(ctx, rec); err != nil {
		return fmt.Errorf("sync contact row: %w", err)
	}
	if err := s.Sessions.Put(ctx, rec); err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	return nil
}

// Finish tears down the session identified by token. The record store is not
// touched; the last Complete already synchronized the row, which remains as
// the contact's final state. The token is invalid for all further calls.
func (s *ContactService) Finish(ctx context.Context, token string) error {
	if err := s.Sessions.Delete(ctx, token); err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return ErrSessionNotFound
		}
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// ListContacts returns every row of the record store. It is a bulk
// passthrough and takes no part in the session lifecycle.
func (s *ContactService) ListContacts(ctx context.Context) ([]map[string]string, error) {
	return s.Store.ReadAll(ctx)
}

// ReplaceContacts overwrites the record store with the supplied rows after
// validation. It is a bulk passthrough and takes no part in the session
// lifecycle.
func (s *ContactService) ReplaceContacts(ctx context.Context, rows []map[string]string) error {
	return s.Store.ReplaceAll(ctx, rows)
}

// isDigits reports whether s is non-empty and consists only of ASCII digits.
func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
