// Package handlers defines the HTTP-layer error codes used across all API
// endpoints. The codes are mapped to responses via the fail() helper and give
// clients a stable, machine-readable taxonomy next to the human-readable
// message.
//
// Conventions:
//   - Codes are lowercase snake_case.
//   - Generic codes mirror common HTTP status semantics.
//   - Domain-specific codes distinguish failure sources the status alone
//     cannot (the lookup provider vs. the record store behind the same 500).
package handlers

const (
	ErrCodeBadRequest       = "bad_request"
	ErrCodeNotFound         = "not_found"
	ErrCodeInternal         = "internal_error"
	ErrCodeMethodNotAllowed = "method_not_allowed"

	// Domain-specific:
	ErrCodeUpstream = "upstream_error"
	ErrCodeStoreIO  = "store_io_error"
)
