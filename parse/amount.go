/*
amount.go - Monetary amount parsing

PURPOSE:
  Parses the amount token of an input line. Operators write amounts with
  either "." or "," as the decimal separator ("2200", "1300,50", "99.9").
  Anything else - whitespace, a second separator, a sign, letters - is
  rejected, because a mistyped amount silently absorbed here becomes a wrong
  payout later.
*/
package parse

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/warp/payout-ledger/ledger"
)

// ParseAmount parses a non-negative amount with at most one "." or ","
// decimal separator, returning the value rounded to two decimal places.
// Failures are *ParseError with reason ErrMalformedAmount.
func ParseAmount(s string) (decimal.Decimal, error) {
	digits, separators := 0, 0
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case r == '.' || r == ',':
			separators++
		default:
			// covers whitespace, negative signs and non-numeric runes
			return decimal.Zero, &ParseError{Reason: ErrMalformedAmount, Input: s}
		}
	}
	if digits == 0 || separators > 1 {
		return decimal.Zero, &ParseError{Reason: ErrMalformedAmount, Input: s}
	}

	d, err := decimal.NewFromString(strings.ReplaceAll(s, ",", "."))
	if err != nil {
		return decimal.Zero, &ParseError{Reason: ErrMalformedAmount, Input: s}
	}
	return ledger.Round2(d), nil
}
