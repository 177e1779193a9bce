package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	// Every ValidationError matches it with errors.Is.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates an unknown content type or backend.
	ErrUnsupportedType = errors.New("unsupported type")

	// Source Errors.

	// ErrSourceTimeout indicates a backend did not answer before its deadline.
	ErrSourceTimeout = errors.New("source timed out")

	// ErrSourceFailed indicates a backend call returned an error or panicked.
	ErrSourceFailed = errors.New("source failed")

	// ErrSourceUnavailable indicates a backend is temporarily refusing calls,
	// for example because its circuit breaker is open.
	ErrSourceUnavailable = errors.New("source unavailable")

	// ErrRateLimited indicates the backend's rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")

	// Gateway Errors.

	// ErrCacheUnavailable indicates no cache backend is configured.
	ErrCacheUnavailable = errors.New("cache unavailable")

	// ErrAnalyticsUnavailable indicates no analytics backend is configured.
	ErrAnalyticsUnavailable = errors.New("analytics unavailable")
)

// ValidationError describes why a SearchRequest was rejected.
// It is the only error the search pipeline surfaces to callers.
type ValidationError struct {
	Field  string
	Reason string
}

// NewValidationError creates a ValidationError for the given field.
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Unwrap lets errors.Is(err, ErrInvalidInput) match.
func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

// IsValidationError reports whether err is (or wraps) a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
