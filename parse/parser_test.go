package parse_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/payout-ledger/parse"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newParser() *parse.Parser {
	return parse.NewParser(parse.NewNormalizer(parse.DefaultCodeTable()))
}

// =============================================================================
// CODE NORMALIZATION
// =============================================================================

func TestNormalizeCode_CyrillicToLatin(t *testing.T) {
	n := parse.NewNormalizer(parse.DefaultCodeTable())

	cases := map[string]string{
		"Д1":   "D1",
		"д17":  "D17",
		"Р8":   "R8",
		"сб5":  "SB5",
		"R7":   "R7",
		"r7":   "R7",
		"A12":  "A12",
		" Д1 ": "D1",
	}
	for input, want := range cases {
		assert.Equal(t, want, n.NormalizeCode(input), "input %q", input)
	}
}

func TestNormalizeCode_Idempotent(t *testing.T) {
	// Normalization must be a total, idempotent function over any string:
	// applying it twice changes nothing.
	n := parse.NewNormalizer(parse.DefaultCodeTable())

	inputs := []string{
		"Д1", "д17", "R7", "Жанна", "съешь ещё", "ABC-123", "", "   ",
		"Д1Д1Д1", "mixедМикс9", "42", "⚡x1",
	}
	for _, s := range inputs {
		once := n.NormalizeCode(s)
		assert.Equal(t, once, n.NormalizeCode(once), "input %q", s)
	}
}

func TestNormalizeCode_UnmappedRunesPassThrough(t *testing.T) {
	n := parse.NewNormalizer(parse.DefaultCodeTable())

	// Ж has no Latin equivalent in the table; it survives upper-cased.
	assert.Equal(t, "Ж9", n.NormalizeCode("ж9"))
}

// =============================================================================
// AMOUNT PARSING
// =============================================================================

func TestParseAmount_Valid(t *testing.T) {
	cases := map[string]string{
		"2200":    "2200.00",
		"1300,50": "1300.50",
		"99.9":    "99.90",
		"0":       "0.00",
		"0,01":    "0.01",
	}
	for input, want := range cases {
		got, err := parse.ParseAmount(input)
		require.NoError(t, err, "input %q", input)
		assert.Equal(t, want, got.StringFixed(2), "input %q", input)
	}
}

func TestParseAmount_Malformed(t *testing.T) {
	inputs := []string{
		"1 200",    // whitespace
		"1,2,3",    // multiple separators
		"1.2.3",    // multiple separators
		"1,2.3",    // mixed separators
		"-5",       // negative sign
		"12a",      // non-numeric
		"",         // empty
		",",        // no digits
		"1 000,50", // thousands gap
	}
	for _, input := range inputs {
		_, err := parse.ParseAmount(input)
		require.Error(t, err, "input %q", input)
		assert.ErrorIs(t, err, parse.ErrMalformedAmount, "input %q", input)
	}
}

// =============================================================================
// LINE PARSING
// =============================================================================

func TestParseLine_Examples(t *testing.T) {
	p := newParser()

	entry, err := p.ParseLine("Д1 Жанна 2200", 1)
	require.NoError(t, err)
	assert.Equal(t, "D1", entry.Code)
	assert.Equal(t, "Жанна", entry.Name)
	assert.Equal(t, "2200.00", entry.Amount.StringFixed(2))
	assert.Equal(t, "Д1 Жанна 2200", entry.OriginalLine)

	entry, err = p.ParseLine("R7 Oleg Ivanov 1300,50", 2)
	require.NoError(t, err)
	assert.Equal(t, "R7", entry.Code)
	assert.Equal(t, "Oleg Ivanov", entry.Name)
	assert.Equal(t, "1300.50", entry.Amount.StringFixed(2))
}

func TestParseLine_TooShort(t *testing.T) {
	// GIVEN: a line with only two tokens
	// THEN: the failure is "line too short", carrying the line number

	p := newParser()

	_, err := p.ParseLine("D1 2200", 7)
	require.Error(t, err)
	assert.ErrorIs(t, err, parse.ErrLineTooShort)

	var pe *parse.ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, 7, pe.Line)
	assert.Equal(t, "D1 2200", pe.Input)
}

func TestParseLine_FourTokens_NumericName(t *testing.T) {
	// A 4-token line is structurally valid even when the name tokens look
	// numeric: first token is the code, last is the amount, the rest is
	// the name.
	p := newParser()

	entry, err := p.ParseLine("D1 2200 extra 500", 1)
	require.NoError(t, err)
	assert.Equal(t, "D1", entry.Code)
	assert.Equal(t, "2200 extra", entry.Name)
	assert.Equal(t, "500.00", entry.Amount.StringFixed(2))
}

func TestParseLine_BadAmountIsNotTooShort(t *testing.T) {
	// A 4-token line with a junk amount token fails on the amount, never
	// on the token count.
	p := newParser()

	_, err := p.ParseLine("D1 2200 extra stray", 3)
	require.Error(t, err)
	assert.ErrorIs(t, err, parse.ErrMalformedAmount)
	assert.False(t, errors.Is(err, parse.ErrLineTooShort))

	var pe *parse.ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, 3, pe.Line)
}

// =============================================================================
// BLOCK PARSING
// =============================================================================

func TestParseBlock_RecoversPerLine(t *testing.T) {
	// GIVEN: a block with valid lines, a bad amount, a short line and blanks
	// WHEN: the block is parsed
	// THEN: valid lines survive in order; each bad line yields one error
	//       with its 1-based line number

	p := newParser()

	text := "Д1 Жанна 2200\n" +
		"\n" +
		"R7 Oleg Ivanov 1300,50\n" +
		"D2 Vera 12,34,56\n" +
		"D3 900\n" +
		"   \n" +
		"сб5 Иван 800"

	entries, errs := p.ParseBlock(text)

	require.Len(t, entries, 3)
	assert.Equal(t, "D1", entries[0].Code)
	assert.Equal(t, "R7", entries[1].Code)
	assert.Equal(t, "SB5", entries[2].Code)
	assert.Equal(t, 7, entries[2].Line)

	require.Len(t, errs, 2)
	assert.Equal(t, 4, errs[0].Line)
	assert.ErrorIs(t, errs[0], parse.ErrMalformedAmount)
	assert.Equal(t, 5, errs[1].Line)
	assert.ErrorIs(t, errs[1], parse.ErrLineTooShort)
}

func TestParseBlock_RoundTrip(t *testing.T) {
	// Re-parsing an entry's OriginalLine reproduces its code and amount.
	p := newParser()

	entries, errs := p.ParseBlock("Д1 Жанна 2200\nR7 Oleg Ivanov 1300,50\nд17 юля 1000")
	require.Empty(t, errs)

	for _, e := range entries {
		again, err := p.ParseLine(e.OriginalLine, e.Line)
		require.NoError(t, err)
		assert.Equal(t, e.Code, again.Code)
		assert.True(t, e.Amount.Equal(again.Amount))
	}
}

func TestBlockTotal(t *testing.T) {
	p := newParser()

	entries, errs := p.ParseBlock("D1 Anna 100,50\nD2 Vera 200")
	require.Empty(t, errs)
	assert.Equal(t, "300.50", parse.BlockTotal(entries).StringFixed(2))
}
