/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  JSON structures for the REST boundary. These types decouple the domain
  model from the wire contract. Amounts travel as strings with two decimal
  places ("1300.50") so no client ever round-trips money through float64.

NAMING CONVENTION:
  - *Request: request body types from clients
  - *DTO:     response types returned to clients

VALIDATION:
  Validation happens in handlers, not in DTOs. DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: uses these types
*/
package api

import (
	"time"

	"github.com/warp/payout-ledger/ledger"
	"github.com/warp/payout-ledger/parse"
	"github.com/warp/payout-ledger/report"
)

// =============================================================================
// PARSE AND INGEST
// =============================================================================

// ParseRequest carries a raw multi-line text block.
type ParseRequest struct {
	Text string `json:"text"`
}

// EntryDTO is one successfully parsed line.
type EntryDTO struct {
	Line   int    `json:"line"`
	Code   string `json:"code"`
	Name   string `json:"name"`
	Amount string `json:"amount"`
}

// ParseErrorDTO is one failed line: its number and a human-readable reason.
type ParseErrorDTO struct {
	Line   int    `json:"line"`
	Reason string `json:"reason"`
}

// ParseResponse reports both lists; one bad line never hides the rest.
type ParseResponse struct {
	Entries []EntryDTO      `json:"entries"`
	Errors  []ParseErrorDTO `json:"errors"`
}

// IngestRequest parses a text block and persists the results for one
// club/date/channel. Aggregate defaults to true (amounts accumulate).
type IngestRequest struct {
	Club      string `json:"club"`
	Date      string `json:"date"`
	Channel   string `json:"channel"`
	Text      string `json:"text"`
	Aggregate *bool  `json:"aggregate,omitempty"`
}

// UpsertResultDTO reports what happened to one parsed line.
type UpsertResultDTO struct {
	Code    string `json:"code"`
	Name    string `json:"name"`
	Amount  string `json:"amount"`
	Outcome string `json:"outcome"` // "created", "aggregated" or "replaced"
	Total   string `json:"total"`   // stored amount after the upsert
}

// IngestResponse summarizes a persisted block.
type IngestResponse struct {
	Club     string            `json:"club"`
	Date     string            `json:"date"`
	Channel  string            `json:"channel"`
	Accepted int               `json:"accepted"`
	Total    string            `json:"total"` // sum of accepted amounts
	Results  []UpsertResultDTO `json:"results"`
	Errors   []ParseErrorDTO   `json:"errors"`
}

// =============================================================================
// OPERATIONS
// =============================================================================

// OperationDTO represents a stored Operation.
type OperationDTO struct {
	Club         string `json:"club"`
	Date         string `json:"date"`
	Code         string `json:"code"`
	Channel      string `json:"channel"`
	Name         string `json:"name"`
	Amount       string `json:"amount"`
	OriginalLine string `json:"original_line,omitempty"`
	CreatedAt    string `json:"created_at,omitempty"`
}

// UpdateOperationRequest corrects the amount of one Operation.
type UpdateOperationRequest struct {
	Club    string `json:"club"`
	Date    string `json:"date"`
	Code    string `json:"code"`
	Channel string `json:"channel"`
	Amount  string `json:"amount"`
}

// EditLogEntryDTO represents one audit record.
type EditLogEntryDTO struct {
	ID       string  `json:"id"`
	Code     string  `json:"code"`
	Channel  string  `json:"channel"`
	Action   string  `json:"action"`
	OldValue string  `json:"old_value"`
	NewValue *string `json:"new_value"` // null on delete
	EditedAt string  `json:"edited_at"`
}

// MutationResponse confirms a correction or deletion.
type MutationResponse struct {
	Entry EditLogEntryDTO `json:"entry"`
}

// =============================================================================
// REPORTS
// =============================================================================

type ReportRowDTO struct {
	Code         string `json:"code"`
	Name         string `json:"name"`
	NameConflict bool   `json:"name_conflict,omitempty"`
	Cash         string `json:"cash"`
	NonCash      string `json:"noncash"`
	Deduction    string `json:"deduction"`
	Payout       string `json:"payout"`
}

type TotalsDTO struct {
	Cash      string `json:"cash"`
	NonCash   string `json:"noncash"`
	Deduction string `json:"deduction"`
	Payout    string `json:"payout"`
}

type ReportDTO struct {
	Club         string         `json:"club"`
	Period       string         `json:"period"`
	Rows         []ReportRowDTO `json:"rows"`
	TotalsByRows TotalsDTO      `json:"totals_by_rows"`
	TotalsRecalc TotalsDTO      `json:"totals_recalc"`
	CheckOK      bool           `json:"check_ok"`
}

// =============================================================================
// CONVERSIONS
// =============================================================================

func toEntryDTO(e parse.Entry) EntryDTO {
	return EntryDTO{
		Line:   e.Line,
		Code:   e.Code,
		Name:   e.Name,
		Amount: e.Amount.StringFixed(2),
	}
}

func toParseErrorDTOs(errs []*parse.ParseError) []ParseErrorDTO {
	out := make([]ParseErrorDTO, 0, len(errs))
	for _, e := range errs {
		out = append(out, ParseErrorDTO{Line: e.Line, Reason: e.Error()})
	}
	return out
}

func toOperationDTO(op ledger.Operation) OperationDTO {
	dto := OperationDTO{
		Club:         op.Club,
		Date:         string(op.Date),
		Code:         op.Code,
		Channel:      string(op.Channel),
		Name:         op.NameSnapshot,
		Amount:       op.Amount.StringFixed(2),
		OriginalLine: op.OriginalLine,
	}
	if !op.CreatedAt.IsZero() {
		dto.CreatedAt = op.CreatedAt.UTC().Format(time.RFC3339)
	}
	return dto
}

func toEditLogEntryDTO(e ledger.EditLogEntry) EditLogEntryDTO {
	dto := EditLogEntryDTO{
		ID:       e.ID,
		Code:     e.Code,
		Channel:  string(e.Channel),
		Action:   string(e.Action),
		OldValue: e.OldValue.StringFixed(2),
		EditedAt: e.EditedAt.UTC().Format(time.RFC3339),
	}
	if e.NewValue != nil {
		s := e.NewValue.StringFixed(2)
		dto.NewValue = &s
	}
	return dto
}

func toTotalsDTO(t report.Totals) TotalsDTO {
	return TotalsDTO{
		Cash:      t.Cash.StringFixed(2),
		NonCash:   t.NonCash.StringFixed(2),
		Deduction: t.Deduction.StringFixed(2),
		Payout:    t.Payout.StringFixed(2),
	}
}

func toReportDTO(r report.Report) ReportDTO {
	rows := make([]ReportRowDTO, 0, len(r.Rows))
	for _, row := range r.Rows {
		rows = append(rows, ReportRowDTO{
			Code:         row.Code,
			Name:         row.Name,
			NameConflict: row.NameConflict,
			Cash:         row.Cash.StringFixed(2),
			NonCash:      row.NonCash.StringFixed(2),
			Deduction:    row.Deduction.StringFixed(2),
			Payout:       row.Payout.StringFixed(2),
		})
	}
	return ReportDTO{
		Club:         r.Club,
		Period:       r.Period.String(),
		Rows:         rows,
		TotalsByRows: toTotalsDTO(r.TotalsByRows),
		TotalsRecalc: toTotalsDTO(r.TotalsRecalc),
		CheckOK:      r.CheckOK,
	}
}
