/*
errors.go - Centralized error types for the ledger core

PURPOSE:
  All domain error values in one place. Callers classify failures with
  errors.Is/errors.As; every failure carries enough structure to build a
  precise user-facing message.

ERROR CATEGORIES:
  1. Lookup errors    - correction/deletion targeting a missing key
  2. Validation errors - malformed dates, periods, unknown clubs/channels
  3. Store errors      - the underlying storage failed to commit

Parse errors live in the parse package; they are line-scoped and never
escape a block parse.
*/
package ledger

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrNotFound is returned when a correction or deletion targets a
	// natural key with no stored Operation.
	ErrNotFound = errors.New("operation not found")

	// ErrInvalidDate is returned for date strings that are not valid
	// YYYY-MM-DD calendar days.
	ErrInvalidDate = errors.New("invalid date")

	// ErrInvalidPeriod is returned for malformed period expressions and for
	// periods that end before they start.
	ErrInvalidPeriod = errors.New("invalid period")

	// ErrUnknownClub is returned when a club identifier is not in the
	// configured set.
	ErrUnknownClub = errors.New("unknown club")

	// ErrUnknownChannel is returned when a channel identifier is not in the
	// configured set.
	ErrUnknownChannel = errors.New("unknown channel")

	// ErrStoreIO is returned when the underlying storage fails to commit.
	// The failed call leaves no partial state; the caller may retry the
	// whole call.
	ErrStoreIO = errors.New("store i/o failure")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// NotFoundError reports which natural key was missing.
type NotFoundError struct {
	Key Key
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("operation not found: %s", e.Key)
}

func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// StoreError wraps a storage backend failure.
type StoreError struct {
	Op  string // which store operation failed
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return ErrStoreIO
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsNotFound returns true if the error indicates a missing Operation.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsClientError returns true if the error is due to invalid caller input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidDate) ||
		errors.Is(err, ErrInvalidPeriod) ||
		errors.Is(err, ErrUnknownClub) ||
		errors.Is(err, ErrUnknownChannel)
}
