/*
parser.go - Line and block parsing of operator input

PURPOSE:
  Turns freeform operator text into validated (code, name, amount) entries.
  One line is one payout: the first whitespace-run-delimited token is the
  employee code, the last is the amount, and everything between is the
  display name joined with single spaces.

  Block parsing is pure and side-effect free: every non-blank line is parsed
  independently, failures are collected per line, and one bad line never
  aborts the rest. Persisting the results is the caller's job.

LINE CONTRACT:
  "Д1 Жанна 2200"        -> code D1, name "Жанна", amount 2200.00
  "R7 Oleg Ivanov 1300,50" -> code R7, name "Oleg Ivanov", amount 1300.50
  "D1 2200 extra 500"    -> four tokens, valid: name is "2200 extra"
  "D1 2200"              -> two tokens, ErrLineTooShort

SEE ALSO:
  - normalize.go: code canonicalization
  - amount.go: amount grammar
*/
package parse

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Entry is one successfully parsed input line.
type Entry struct {
	Code         string // normalized
	Name         string
	Amount       decimal.Decimal
	OriginalLine string // untouched source text
	Line         int    // 1-based line number within the block
}

// Parser turns operator text into Entries. Construct with the deployment's
// code table; safe for concurrent use.
type Parser struct {
	norm *Normalizer
}

func NewParser(norm *Normalizer) *Parser {
	return &Parser{norm: norm}
}

// Normalizer exposes the parser's code normalizer for callers that need to
// canonicalize a bare code (e.g. correction targets).
func (p *Parser) Normalizer() *Normalizer {
	return p.norm
}

// ParseLine parses a single line. lineNum is attached to any error.
func (p *Parser) ParseLine(line string, lineNum int) (Entry, error) {
	tokens := strings.Fields(line)
	if len(tokens) < 3 {
		return Entry{}, &ParseError{Line: lineNum, Reason: ErrLineTooShort, Input: line}
	}

	amount, err := ParseAmount(tokens[len(tokens)-1])
	if err != nil {
		pe := err.(*ParseError)
		pe.Line = lineNum
		return Entry{}, pe
	}

	name := strings.TrimSpace(strings.Join(tokens[1:len(tokens)-1], " "))
	if name == "" {
		return Entry{}, &ParseError{Line: lineNum, Reason: ErrMissingName, Input: line}
	}

	return Entry{
		Code:         p.norm.NormalizeCode(tokens[0]),
		Name:         name,
		Amount:       amount,
		OriginalLine: line,
		Line:         lineNum,
	}, nil
}

// ParseBlock parses multi-line text. Blank lines are skipped; every other
// line is parsed independently. Returns the successful entries in input
// order and the per-line failures.
func (p *Parser) ParseBlock(text string) ([]Entry, []*ParseError) {
	var entries []Entry
	var errs []*ParseError

	for i, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		entry, err := p.ParseLine(line, i+1)
		if err != nil {
			errs = append(errs, err.(*ParseError))
			continue
		}
		entries = append(entries, entry)
	}
	return entries, errs
}

// BlockTotal sums the amounts of a parsed block, for confirmation messages.
func BlockTotal(entries []Entry) decimal.Decimal {
	total := decimal.Zero
	for _, e := range entries {
		total = total.Add(e.Amount)
	}
	return total
}
