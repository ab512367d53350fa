// Package common defines shared constants and sentinel errors used across
// the YaMDB server layers. Callers should use errors.Is to match these values.
package common

import (
	"errors"
	"fmt"
)

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrorValidation   = errors.New("validation error")

	// Signup / confirmation errors.
	ErrInvalidIdentity = errors.New("invalid identity")
	ErrConflict        = errors.New("identity conflict")
	ErrInvalidCode     = errors.New("invalid confirmation code")

	// Authorization errors. The evaluator never says which rule failed.
	ErrForbidden = errors.New("forbidden")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")

	// Startup errors.
	ErrConfiguration = errors.New("configuration error")
)

// FieldError attaches a user-facing message for a single request field to
// one of the sentinel errors above.
type FieldError struct {
	Field   string
	Message string
	Err     error
}

// NewFieldError builds a FieldError for field wrapping err.
func NewFieldError(field, message string, err error) *FieldError {
	return &FieldError{Field: field, Message: message, Err: err}
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Field, e.Message, e.Err)
}

func (e *FieldError) Unwrap() error { return e.Err }
