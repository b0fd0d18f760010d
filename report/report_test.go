package report_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/payout-ledger/ledger"
	"github.com/warp/payout-ledger/report"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func op(code, name string, channel ledger.Channel, amount string) ledger.Operation {
	return ledger.Operation{
		Club:         "Москвич",
		Date:         "2025-11-03",
		Code:         code,
		Channel:      channel,
		NameSnapshot: name,
		Amount:       decimal.RequireFromString(amount),
	}
}

func period(t *testing.T) ledger.Period {
	p, err := ledger.NewPeriod("2025-11-03", "2025-11-09")
	require.NoError(t, err)
	return p
}

// =============================================================================
// PAYOUT FORMULA
// =============================================================================

func TestComputeTotals_FormulaExample(t *testing.T) {
	// cash 1000.00, non-cash 500.00 -> deduction 50.00, payout 1450.00
	totals := report.ComputeTotals(
		decimal.RequireFromString("1000"),
		decimal.RequireFromString("500"),
	)

	assert.Equal(t, "1000.00", totals.Cash.StringFixed(2))
	assert.Equal(t, "500.00", totals.NonCash.StringFixed(2))
	assert.Equal(t, "50.00", totals.Deduction.StringFixed(2))
	assert.Equal(t, "1450.00", totals.Payout.StringFixed(2))
}

// =============================================================================
// AGREEMENT AND SENSITIVITY
// =============================================================================

func TestBuild_TwoPathsAgree(t *testing.T) {
	// GIVEN: operations spanning several codes and both channels
	// WHEN: the report is built
	// THEN: the row path and the direct recalculation agree, check_ok=true

	ops := []ledger.Operation{
		op("D1", "Жанна", ledger.ChannelCash, "2200"),
		op("D1", "Жанна", ledger.ChannelNonCash, "300.50"),
		op("R7", "Oleg Ivanov", ledger.ChannelNonCash, "1300.50"),
		op("SB5", "Иван", ledger.ChannelCash, "800"),
		op("R7", "Oleg Ivanov", ledger.ChannelCash, "99.99"),
	}

	rep := report.Build("Москвич", period(t), ops)

	assert.True(t, rep.CheckOK)
	assert.Equal(t, rep.TotalsByRows.Cash.StringFixed(2), rep.TotalsRecalc.Cash.StringFixed(2))
	assert.Equal(t, rep.TotalsByRows.NonCash.StringFixed(2), rep.TotalsRecalc.NonCash.StringFixed(2))
	assert.Equal(t, "3099.99", rep.TotalsByRows.Cash.StringFixed(2))
	assert.Equal(t, "1601.00", rep.TotalsByRows.NonCash.StringFixed(2))

	// rows are ordered by code
	require.Len(t, rep.Rows, 3)
	assert.Equal(t, "D1", rep.Rows[0].Code)
	assert.Equal(t, "R7", rep.Rows[1].Code)
	assert.Equal(t, "SB5", rep.Rows[2].Code)
}

func TestBuild_SensitiveToCorruptedGrouping(t *testing.T) {
	// GIVEN: a grouping step that dropped one row
	// WHEN: row totals are compared against the direct recalculation
	// THEN: the check fails

	ops := []ledger.Operation{
		op("D1", "Жанна", ledger.ChannelCash, "2200"),
		op("R7", "Oleg Ivanov", ledger.ChannelNonCash, "1300.50"),
		op("SB5", "Иван", ledger.ChannelCash, "800"),
	}

	rows := report.BuildRows(ops)
	require.Len(t, rows, 3)
	corrupted := rows[1:] // drop one employee from the grouped path

	byRows := report.TotalsFromRows(corrupted)
	recalc := report.RecalcTotals(ops)

	assert.False(t, report.Reconcile(byRows, recalc))
}

func TestBuild_Empty(t *testing.T) {
	rep := report.Build("Москвич", period(t), nil)

	assert.True(t, rep.CheckOK)
	assert.Empty(t, rep.Rows)
	assert.Equal(t, "0.00", rep.TotalsByRows.Payout.StringFixed(2))
}

// =============================================================================
// ROWS
// =============================================================================

func TestBuildRows_PerRowFormula(t *testing.T) {
	ops := []ledger.Operation{
		op("D1", "Жанна", ledger.ChannelCash, "1000"),
		op("D1", "Жанна", ledger.ChannelNonCash, "500"),
	}

	rows := report.BuildRows(ops)
	require.Len(t, rows, 1)

	row := rows[0]
	assert.Equal(t, "1000.00", row.Cash.StringFixed(2))
	assert.Equal(t, "500.00", row.NonCash.StringFixed(2))
	assert.Equal(t, "50.00", row.Deduction.StringFixed(2))
	assert.Equal(t, "1450.00", row.Payout.StringFixed(2))
	assert.False(t, row.NameConflict)
}

func TestBuildRows_FlagsNameConflict(t *testing.T) {
	// One code entered under two display names keeps the first name and is
	// flagged for human review.
	ops := []ledger.Operation{
		op("D1", "Жанна", ledger.ChannelCash, "100"),
		op("D1", "Zhanna", ledger.ChannelNonCash, "200"),
	}

	rows := report.BuildRows(ops)
	require.Len(t, rows, 1)
	assert.Equal(t, "Жанна", rows[0].Name)
	assert.True(t, rows[0].NameConflict)
}

func TestReconcile_RoundingIsExact(t *testing.T) {
	// Per-row rounding drift must not trip the check: totals compare the
	// summed channel subtotals, both rounded to two places.
	ops := []ledger.Operation{
		op("D1", "A", ledger.ChannelNonCash, "0.05"),
		op("D2", "B", ledger.ChannelNonCash, "0.05"),
	}

	rep := report.Build("Москвич", period(t), ops)
	assert.True(t, rep.CheckOK)
	assert.Equal(t, "0.10", rep.TotalsByRows.NonCash.StringFixed(2))
	assert.Equal(t, "0.01", rep.TotalsByRows.Deduction.StringFixed(2))
}
