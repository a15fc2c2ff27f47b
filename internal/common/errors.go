// Package common defines shared constants and sentinel errors used across
// the dashboard layers. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrInternal     = errors.New("internal error")
	ErrUnauthorized = errors.New("unauthorized")

	// Validation errors: the action is aborted before any store write.
	ErrValidation            = errors.New("validation error")
	ErrJustificationTooShort = errors.New("justification too short")
	ErrSignatureRequired     = errors.New("delivery requires a recorded signature")
	ErrInvalidTransition     = errors.New("invalid status transition")
	ErrReceivedBeforePulled  = errors.New("received instant must be at least one minute after pulled")
	ErrMissingRequiredField  = errors.New("missing required field")

	// Session lifecycle errors.
	ErrInvalidToken      = errors.New("invalid token")
	ErrTokenExpired      = errors.New("token expired")
	ErrSessionSuperseded = errors.New("session superseded by a newer login")
)
