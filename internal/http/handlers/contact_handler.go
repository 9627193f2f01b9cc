// Contact HTTP handlers.
//
// This file exposes the REST endpoints of the onboarding API:
//   - GET  /contacts   (read the whole record store)
//   - POST /contacts   (replace the whole record store)
//   - POST /start      (begin a session; sets the session cookie)
//   - POST /complete   (merge fill-in fields into the session)
//   - POST /finish     (tear the session down)
//
// Handlers are transport-thin: they validate input, call the contact service,
// and translate results into HTTP responses. The session token travels as an
// HTTP-only cookie whose max-age matches the server-side session TTL.
package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-contact-backend/internal/domain"
	"github.com/tbourn/go-contact-backend/internal/services"
	"github.com/tbourn/go-contact-backend/internal/store"
)

// sessionCookie is the cookie carrying the session token.
const sessionCookie = "session_id"

// ContactService defines the lifecycle and passthrough operations consumed by
// the HTTP handlers.
//
// Implementations must be safe for concurrent use and must honor the provided
// context for cancellation and timeouts.
type ContactService interface {
	// Start begins a session for the caller at ip, seeded from the CPF lookup.
	Start(ctx context.Context, ip, cpf string) (string, error)
	// Complete merges non-empty fill-in fields into the session's record.
	Complete(ctx context.Context, token string, upd domain.ContactUpdate) error
	// Finish removes the session; the record row keeps its last synced state.
	Finish(ctx context.Context, token string) error
	// ListContacts returns every record store row.
	ListContacts(ctx context.Context) ([]map[string]string, error)
	// ReplaceContacts overwrites the record store with the supplied rows.
	ReplaceContacts(ctx context.Context, rows []map[string]string) error
}

// Handlers groups the HTTP endpoints of the onboarding API.
type Handlers struct {
	svc        ContactService
	sessionTTL time.Duration
}

// New constructs a Handlers instance bound to the given service. sessionTTL
// is issued as the cookie max-age and should match the session store's TTL.
func New(svc ContactService, sessionTTL time.Duration) *Handlers {
	return &Handlers{svc: svc, sessionTTL: sessionTTL}
}

//
// DTOs
//

// StartRequest is the JSON payload for starting a session.
type StartRequest struct {
	// IP is the client address recorded on the new contact.
	IP string `json:"ip" binding:"required"`
	// CPF is the raw 11-digit national ID to look up.
	CPF string `json:"cpf" binding:"required"`
}

//
// Record store passthrough
//

// ListContacts handles GET /contacts. It returns every row of the record
// store as a list of column→value mappings with empty-string nulls.
func (h *Handlers) ListContacts(c *gin.Context) {
	rows, err := h.svc.ListContacts(c.Request.Context())
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeStoreIO, "could not read contacts")
		return
	}
	if rows == nil {
		rows = []map[string]string{}
	}
	ok(c, http.StatusOK, rows)
}

// ReplaceContacts handles POST /contacts. The body must be a list of row
// mappings restricted to the fixed column set; the store is overwritten with
// exactly those rows.
func (h *Handlers) ReplaceContacts(c *gin.Context) {
	var rows []map[string]string
	if err := c.ShouldBindJSON(&rows); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "body must be a list of row objects")
		return
	}
	if err := h.svc.ReplaceContacts(c.Request.Context(), rows); err != nil {
		if errors.Is(err, store.ErrInvalidRow) {
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeStoreIO, "could not write contacts")
		return
	}
	ok(c, http.StatusOK, MessageResponse{Message: "Contacts updated successfully"})
}

//
// Session lifecycle
//

// StartSession handles POST /start. On success it sets the session cookie
// (HTTP-only, path "/", bounded max-age) and confirms with a message body.
func (h *Handlers) StartSession(c *gin.Context) {
	var req StartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "ip and cpf are required")
		return
	}

	token, err := h.svc.Start(c.Request.Context(), req.IP, req.CPF)
	switch {
	case err == nil:
	case errors.Is(err, services.ErrInvalidCPF):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
		return
	case errors.Is(err, services.ErrCPFNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "CPF data not found")
		return
	case errors.Is(err, services.ErrUpstream):
		fail(c, http.StatusInternalServerError, ErrCodeUpstream, "error fetching CPF data")
		return
	default:
		fail(c, http.StatusInternalServerError, ErrCodeStoreIO, "could not persist contact")
		return
	}

	c.SetCookie(sessionCookie, token, int(h.sessionTTL.Seconds()), "/", "", false, true)
	ok(c, http.StatusOK, MessageResponse{Message: "Session started successfully"})
}

// CompleteSession handles POST /complete. The body may carry any subset of
// the fill-in fields; empty or omitted values never erase collected data.
func (h *Handlers) CompleteSession(c *gin.Context) {
	token, err := c.Cookie(sessionCookie)
	if err != nil || token == "" {
		fail(c, http.StatusNotFound, ErrCodeNotFound, "Session not found")
		return
	}

	var upd domain.ContactUpdate
	if err := c.ShouldBindJSON(&upd); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "malformed body")
		return
	}

	if err := h.svc.Complete(c.Request.Context(), token, upd); err != nil {
		if errors.Is(err, services.ErrSessionNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "Session not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeStoreIO, "could not sync contact")
		return
	}
	ok(c, http.StatusOK, MessageResponse{Message: "Session updated successfully"})
}

// FinishSession handles POST /finish. The token becomes invalid for all
// further calls; the record store keeps the last synced row.
func (h *Handlers) FinishSession(c *gin.Context) {
	token, err := c.Cookie(sessionCookie)
	if err != nil || token == "" {
		fail(c, http.StatusNotFound, ErrCodeNotFound, "Session not found")
		return
	}

	if err := h.svc.Finish(c.Request.Context(), token); err != nil {
		if errors.Is(err, services.ErrSessionNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "Session not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "could not finish session")
		return
	}
	ok(c, http.StatusOK, MessageResponse{Message: "Session finished successfully"})
}
