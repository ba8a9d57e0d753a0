package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthorized indicates that no user identity could be resolved.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInvalidArgument indicates malformed or missing client input.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrPastDate indicates an attempt to mutate a day log before today.
	ErrPastDate = errors.New("cannot mutate logs for past dates")
	// ErrNotFound indicates that the targeted record does not exist for the user.
	ErrNotFound = errors.New("not found")
	// ErrConflict indicates that a unique record already exists.
	ErrConflict = errors.New("already exists")
	// ErrStoreFailure indicates that the record store failed or a write affected no rows.
	ErrStoreFailure = errors.New("store failure")
)

// InvalidArgument wraps ErrInvalidArgument with a formatted message.
func InvalidArgument(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}

// StoreFailure wraps ErrStoreFailure and the underlying cause for op.
func StoreFailure(op string, err error) error {
	if err == nil {
		return fmt.Errorf("%w: %s", ErrStoreFailure, op)
	}
	return fmt.Errorf("%w: %s: %w", ErrStoreFailure, op, err)
}

// RequireUser returns ErrUnauthorized when userID is empty.
func RequireUser(userID string) error {
	if userID == "" {
		return fmt.Errorf("%w: missing user identifier", ErrUnauthorized)
	}
	return nil
}
