// Package services implements the business logic of the contact onboarding
// flow. This file centralizes the service-level error values so they can be
// consistently returned by service methods and checked by callers.
//
// Translation into HTTP status codes is performed at the handler layer.
package services

import "errors"

var (
	// ErrSessionNotFound indicates the presented session token does not
	// identify a live session (missing, expired, or already finished).
	ErrSessionNotFound = errors.New("session not found")

	// ErrCPFNotFound indicates the lookup provider answered but holds no
	// record for the requested CPF.
	ErrCPFNotFound = errors.New("cpf data not found")

	// ErrUpstream indicates the lookup provider could not be reached or
	// returned a failure status. The call is never retried.
	ErrUpstream = errors.New("error fetching cpf data")

	// ErrInvalidCPF is returned when the supplied national ID is not exactly
	// eleven digits, the only shape the grouping format is defined for.
	ErrInvalidCPF = errors.New("cpf must be exactly 11 digits")
)
