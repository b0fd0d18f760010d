/*
Package report computes period payout reports with a built-in cross-check.

PURPOSE:
  Given the Operations of one club over one period, produce per-employee
  rows and grand totals, then verify the totals by recomputing them a second
  way. The two paths are independent on purpose: the row path groups by
  employee code and sums the groups; the recalc path sums the raw Operation
  sequence directly, sharing no intermediate value with the grouping. If the
  two disagree, the report is still returned in full but flagged, and the
  caller decides how loudly to warn.

PAYOUT FORMULA:
  deduction = round(non_cash_total * 0.10, 2)
  payout    = round(cash_total + (non_cash_total - deduction), 2)

  The authoritative totals are the row-path totals. The deduction and payout
  on each row are display values derived from that row's subtotals; the
  grand deduction/payout are derived from the summed channel totals, not by
  summing the per-row columns, so the consistency check can never trip on
  per-row rounding drift.

READ-ONLY:
  This package never touches the store. It is safe to call repeatedly and
  concurrently for the same or different periods.
*/
package report

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/warp/payout-ledger/ledger"
)

// deductionRate is the fixed 10% withheld from non-cash payouts.
var deductionRate = decimal.New(1, -1)

// =============================================================================
// ROWS AND TOTALS
// =============================================================================

// Row is one employee's subtotals over the period.
type Row struct {
	Code         string
	Name         string
	NameConflict bool // the code was entered under more than one display name
	Cash         decimal.Decimal
	NonCash      decimal.Decimal
	Deduction    decimal.Decimal // display value: 10% of this row's non-cash
	Payout       decimal.Decimal // display value: this row's formula result
}

// Totals is one set of grand totals with the payout formula applied.
type Totals struct {
	Cash      decimal.Decimal
	NonCash   decimal.Decimal
	Deduction decimal.Decimal
	Payout    decimal.Decimal
}

// ComputeTotals applies the payout formula to a pair of channel totals.
func ComputeTotals(cash, nonCash decimal.Decimal) Totals {
	cash = ledger.Round2(cash)
	nonCash = ledger.Round2(nonCash)
	deduction := ledger.Round2(nonCash.Mul(deductionRate))
	payout := ledger.Round2(cash.Add(nonCash.Sub(deduction)))
	return Totals{Cash: cash, NonCash: nonCash, Deduction: deduction, Payout: payout}
}

// Report is a derived, non-persisted view over one club and period.
type Report struct {
	Club         string
	Period       ledger.Period
	Rows         []Row
	TotalsByRows Totals // authoritative
	TotalsRecalc Totals // independent recomputation
	CheckOK      bool
}

// =============================================================================
// BUILD - The two computation paths and their reconciliation
// =============================================================================

// Build produces the full report for a set of Operations.
func Build(club string, period ledger.Period, ops []ledger.Operation) Report {
	rows := BuildRows(ops)
	byRows := TotalsFromRows(rows)
	recalc := RecalcTotals(ops)
	return Report{
		Club:         club,
		Period:       period,
		Rows:         rows,
		TotalsByRows: byRows,
		TotalsRecalc: recalc,
		CheckOK:      Reconcile(byRows, recalc),
	}
}

// BuildRows groups Operations by employee code and sums per channel,
// returning one row per code ordered by code.
func BuildRows(ops []ledger.Operation) []Row {
	type group struct {
		firstName string
		names     map[string]bool
		cash      decimal.Decimal
		nonCash   decimal.Decimal
	}
	groups := make(map[string]*group)

	for _, op := range ops {
		g, ok := groups[op.Code]
		if !ok {
			g = &group{
				firstName: op.NameSnapshot,
				names:     make(map[string]bool),
				cash:      decimal.Zero,
				nonCash:   decimal.Zero,
			}
			groups[op.Code] = g
		}
		g.names[op.NameSnapshot] = true
		switch op.Channel {
		case ledger.ChannelCash:
			g.cash = g.cash.Add(op.Amount)
		case ledger.ChannelNonCash:
			g.nonCash = g.nonCash.Add(op.Amount)
		}
	}

	codes := make([]string, 0, len(groups))
	for code := range groups {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	rows := make([]Row, 0, len(codes))
	for _, code := range codes {
		g := groups[code]
		cash := ledger.Round2(g.cash)
		nonCash := ledger.Round2(g.nonCash)
		deduction := ledger.Round2(nonCash.Mul(deductionRate))
		rows = append(rows, Row{
			Code:         code,
			Name:         g.firstName,
			NameConflict: len(g.names) > 1,
			Cash:         cash,
			NonCash:      nonCash,
			Deduction:    deduction,
			Payout:       ledger.Round2(cash.Add(nonCash.Sub(deduction))),
		})
	}
	return rows
}

// TotalsFromRows sums the per-row channel subtotals and applies the payout
// formula to the sums.
func TotalsFromRows(rows []Row) Totals {
	cash, nonCash := decimal.Zero, decimal.Zero
	for _, r := range rows {
		cash = cash.Add(r.Cash)
		nonCash = nonCash.Add(r.NonCash)
	}
	return ComputeTotals(cash, nonCash)
}

// RecalcTotals sums amounts directly over the ungrouped Operation sequence.
// It deliberately reuses nothing from BuildRows; it exists to catch a
// grouping or aggregation bug in the row path.
func RecalcTotals(ops []ledger.Operation) Totals {
	cash, nonCash := decimal.Zero, decimal.Zero
	for _, op := range ops {
		switch op.Channel {
		case ledger.ChannelCash:
			cash = cash.Add(op.Amount)
		case ledger.ChannelNonCash:
			nonCash = nonCash.Add(op.Amount)
		}
	}
	return ComputeTotals(cash, nonCash)
}

// Reconcile compares the channel totals of the two paths with exact
// equality after two-decimal rounding.
func Reconcile(byRows, recalc Totals) bool {
	return ledger.AmountsEqual(byRows.Cash, recalc.Cash) &&
		ledger.AmountsEqual(byRows.NonCash, recalc.NonCash)
}
