package models

import (
	"errors"
	"fmt"
)

// Sentinel errors forming the engine's error taxonomy. The API layer maps
// these to HTTP statuses; callers branch with errors.Is.
var (
	// ErrTransactionNotFound indicates an unknown transaction id.
	ErrTransactionNotFound = errors.New("transaction not found")

	// ErrEntityNotFound indicates an update/delete against a missing entity.
	ErrEntityNotFound = errors.New("entity not found")

	// ErrInvalidState indicates an operation against a transaction that is
	// no longer PENDING.
	ErrInvalidState = errors.New("transaction is not pending")

	// ErrEntityExists indicates a create against an entity that already
	// has a snapshot (maps to HTTP 409 Conflict).
	ErrEntityExists = errors.New("entity already exists")

	// ErrInvalidArgument indicates a malformed diff or operation request.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrUnavailable indicates a storage failure or timeout. Retryable by
	// the caller; the engine never retries on its own.
	ErrUnavailable = errors.New("storage unavailable")
)

// InvalidArgumentf returns an error wrapping ErrInvalidArgument with detail.
func InvalidArgumentf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}

// ErrFieldTooLong returns an error indicating a field exceeds its maximum length.
func ErrFieldTooLong(field string, maxLen int) error {
	return fmt.Errorf("%w: %s exceeds maximum length of %d", ErrInvalidArgument, field, maxLen)
}
