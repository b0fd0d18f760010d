package ledger_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/payout-ledger/ledger"
)

func TestParseDate(t *testing.T) {
	d, err := ledger.ParseDate("2025-11-03")
	require.NoError(t, err)
	assert.Equal(t, ledger.Date("2025-11-03"), d)

	for _, bad := range []string{"2025-13-03", "2025-02-30", "03.11.2025", "", "2025-11-3"} {
		_, err := ledger.ParseDate(bad)
		assert.ErrorIs(t, err, ledger.ErrInvalidDate, "input %q", bad)
	}
}

func TestParseShortDate(t *testing.T) {
	cases := map[string]ledger.Date{
		"30,10": "2025-10-30",
		"30.10": "2025-10-30",
		"3,1":   "2025-01-03",
	}
	for input, want := range cases {
		d, err := ledger.ParseShortDate(input, 2025)
		require.NoError(t, err, "input %q", input)
		assert.Equal(t, want, d, "input %q", input)
	}

	for _, bad := range []string{"31,2", "1,13", "30", "x,10", "30,10,2025"} {
		_, err := ledger.ParseShortDate(bad, 2025)
		assert.ErrorIs(t, err, ledger.ErrInvalidDate, "input %q", bad)
	}
}

func TestPeriods(t *testing.T) {
	p, err := ledger.NewPeriod("2025-11-03", "2025-11-09")
	require.NoError(t, err)
	assert.True(t, p.Contains("2025-11-03"))
	assert.True(t, p.Contains("2025-11-09"))
	assert.False(t, p.Contains("2025-11-10"))
	assert.Equal(t, "2025-11-03..2025-11-09", p.String())

	_, err = ledger.NewPeriod("2025-11-09", "2025-11-03")
	assert.ErrorIs(t, err, ledger.ErrInvalidPeriod)

	single := ledger.Day("2025-11-03")
	assert.Equal(t, "2025-11-03", single.String())
}

func TestParseShortRange(t *testing.T) {
	p, err := ledger.ParseShortRange("30,10-1,11", 2025)
	require.NoError(t, err)
	assert.Equal(t, ledger.Date("2025-10-30"), p.From)
	assert.Equal(t, ledger.Date("2025-11-01"), p.To)

	_, err = ledger.ParseShortRange("30,10", 2025)
	assert.ErrorIs(t, err, ledger.ErrInvalidPeriod)
}

func TestParsePeriod(t *testing.T) {
	p, err := ledger.ParsePeriod("2025-11-03..2025-11-09")
	require.NoError(t, err)
	assert.Equal(t, ledger.Date("2025-11-03"), p.From)
	assert.Equal(t, ledger.Date("2025-11-09"), p.To)

	_, err = ledger.ParsePeriod("2025-11-03")
	assert.ErrorIs(t, err, ledger.ErrInvalidPeriod)
}

func TestWeekOf(t *testing.T) {
	// 2025-11-05 is a Wednesday; its week runs Mon 11-03 .. Sun 11-09.
	week := ledger.WeekOf("2025-11-05")
	assert.Equal(t, ledger.Date("2025-11-03"), week.From)
	assert.Equal(t, ledger.Date("2025-11-09"), week.To)

	// a Monday is its own week start
	week = ledger.WeekOf("2025-11-03")
	assert.Equal(t, ledger.Date("2025-11-03"), week.From)
}
