/*
errors.go - Line-scoped parse errors

PURPOSE:
  Every parse failure is scoped to one input line and is recoverable: block
  parsing collects these errors and keeps going. Each error carries the line
  number, a sentinel reason, and the offending input, which is enough for
  the caller to build a precise message.
*/
package parse

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL REASONS - Use with errors.Is()
// =============================================================================

var (
	// ErrLineTooShort is returned for lines with fewer than three tokens
	// (code, at least one name token, amount).
	ErrLineTooShort = errors.New("line too short")

	// ErrMalformedAmount is returned for amount tokens that are not a plain
	// non-negative number with at most one decimal separator.
	ErrMalformedAmount = errors.New("malformed amount")

	// ErrMissingName is returned when the tokens between code and amount
	// yield an empty name.
	ErrMissingName = errors.New("missing name")
)

// =============================================================================
// PARSE ERROR
// =============================================================================

// ParseError is a failure on one input line. Line is 1-based; 0 means the
// error is not yet attached to a line (e.g. a bare amount parse).
type ParseError struct {
	Line   int
	Reason error
	Input  string
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %v: %q", e.Line, e.Reason, e.Input)
	}
	return fmt.Sprintf("%v: %q", e.Reason, e.Input)
}

func (e *ParseError) Unwrap() error {
	return e.Reason
}
