/*
handlers.go - HTTP handlers for the payout ledger

PURPOSE:
  Exposes the ingestion and reporting engine over REST. This is the seam
  the messaging front end calls: it sends raw text blocks plus a club,
  channel and date, and gets back structured results it can format for the
  operator. Handlers do HTTP parsing, validation and error mapping, then
  delegate to the parse, ledger and report packages.

ENDPOINTS:
  GET    /api/health                         Liveness
  POST   /api/parse                          Parse a block, persist nothing
  POST   /api/blocks                         Parse a block and upsert results
  GET    /api/operations?club&date           List one day's operations
  PUT    /api/operations                     Correct an amount (audited)
  DELETE /api/operations?club&date&code&channel  Delete (audited)
  GET    /api/report?club&from&to            Reconciled period report
  GET    /api/editlog?club&date              Audit entries for a day
  GET    /api/employees/{code}/payments?from&to[&club]  Payment history

ERROR HANDLING:
  - 400: malformed dates/periods/amounts, unknown club or channel
  - 404: correction or deletion of a missing operation
  - 500: the store failed to commit; no partial state was left behind

  A report whose consistency check fails is NOT an error: the report is
  returned with check_ok=false and the front end decides how to warn.

SEE ALSO:
  - dto.go: request/response shapes
  - server.go: router and middleware
*/
package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/warp/payout-ledger/ledger"
	"github.com/warp/payout-ledger/parse"
	"github.com/warp/payout-ledger/report"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds the dependencies shared by all endpoints.
type Handler struct {
	Store   ledger.Store
	Catalog *ledger.Catalog
	Parser  *parse.Parser
	Log     zerolog.Logger
}

func NewHandler(store ledger.Store, catalog *ledger.Catalog, parser *parse.Parser, log zerolog.Logger) *Handler {
	return &Handler{Store: store, Catalog: catalog, Parser: parser, Log: log}
}

// =============================================================================
// PARSE AND INGEST
// =============================================================================

// Parse runs block parsing only. Pure: nothing is persisted.
func (h *Handler) Parse(w http.ResponseWriter, r *http.Request) {
	var req ParseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	entries, parseErrs := h.Parser.ParseBlock(req.Text)
	resp := ParseResponse{
		Entries: make([]EntryDTO, 0, len(entries)),
		Errors:  toParseErrorDTOs(parseErrs),
	}
	for _, e := range entries {
		resp.Entries = append(resp.Entries, toEntryDTO(e))
	}
	respondJSON(w, http.StatusOK, resp)
}

// IngestBlock parses a block and upserts every valid line for the given
// club, date and channel. Parse failures are reported per line and do not
// abort the valid lines; a store failure aborts the call.
func (h *Handler) IngestBlock(w http.ResponseWriter, r *http.Request) {
	var req IngestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	club, err := h.Catalog.ResolveClub(req.Club)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	channel, err := h.Catalog.ResolveChannel(req.Channel)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	date, err := ledger.ParseDate(req.Date)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	aggregate := true
	if req.Aggregate != nil {
		aggregate = *req.Aggregate
	}

	entries, parseErrs := h.Parser.ParseBlock(req.Text)

	resp := IngestResponse{
		Club:    club,
		Date:    string(date),
		Channel: string(channel),
		Results: make([]UpsertResultDTO, 0, len(entries)),
		Errors:  toParseErrorDTOs(parseErrs),
	}

	total := decimal.Zero
	for _, e := range entries {
		op := ledger.Operation{
			Club:         club,
			Date:         date,
			Code:         e.Code,
			Channel:      channel,
			NameSnapshot: e.Name,
			Amount:       e.Amount,
			OriginalLine: e.OriginalLine,
		}
		outcome, err := h.Store.AddOrUpdate(r.Context(), op, aggregate)
		if err != nil {
			h.Log.Error().Err(err).Str("code", e.Code).Msg("block ingest failed")
			respondError(w, http.StatusInternalServerError, "store failure, retry the whole block")
			return
		}
		resp.Results = append(resp.Results, UpsertResultDTO{
			Code:    e.Code,
			Name:    e.Name,
			Amount:  e.Amount.StringFixed(2),
			Outcome: outcomeLabel(outcome),
			Total:   outcome.NewAmount.StringFixed(2),
		})
		total = total.Add(e.Amount)
	}
	resp.Accepted = len(entries)
	resp.Total = total.StringFixed(2)
	respondJSON(w, http.StatusOK, resp)
}

func outcomeLabel(o ledger.UpsertOutcome) string {
	switch {
	case o.Created:
		return "created"
	case o.Aggregated:
		return "aggregated"
	default:
		return "replaced"
	}
}

// =============================================================================
// OPERATIONS
// =============================================================================

// ListOperations returns one day's operations for a club.
func (h *Handler) ListOperations(w http.ResponseWriter, r *http.Request) {
	club, err := h.Catalog.ResolveClub(r.URL.Query().Get("club"))
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	date, err := ledger.ParseDate(r.URL.Query().Get("date"))
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	ops, err := h.Store.OperationsByDate(r.Context(), club, date)
	if err != nil {
		h.Log.Error().Err(err).Msg("list operations failed")
		respondError(w, http.StatusInternalServerError, "store failure")
		return
	}
	respondJSON(w, http.StatusOK, operationDTOs(ops))
}

// UpdateOperation corrects a stored amount. Audited.
func (h *Handler) UpdateOperation(w http.ResponseWriter, r *http.Request) {
	var req UpdateOperationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	key, ok := h.resolveKey(w, req.Club, req.Date, req.Code, req.Channel)
	if !ok {
		return
	}
	amount, err := parse.ParseAmount(req.Amount)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	entry, err := h.Store.Update(r.Context(), key, amount)
	if err != nil {
		h.respondStoreError(w, err, "update")
		return
	}
	respondJSON(w, http.StatusOK, MutationResponse{Entry: toEditLogEntryDTO(entry)})
}

// DeleteOperation removes a stored operation. Audited.
func (h *Handler) DeleteOperation(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	key, ok := h.resolveKey(w, q.Get("club"), q.Get("date"), q.Get("code"), q.Get("channel"))
	if !ok {
		return
	}

	entry, err := h.Store.Delete(r.Context(), key)
	if err != nil {
		h.respondStoreError(w, err, "delete")
		return
	}
	respondJSON(w, http.StatusOK, MutationResponse{Entry: toEditLogEntryDTO(entry)})
}

// =============================================================================
// REPORTS AND AUDIT
// =============================================================================

// GetReport builds the reconciled report for a club and period. A failed
// consistency check still returns 200; check_ok carries the verdict.
func (h *Handler) GetReport(w http.ResponseWriter, r *http.Request) {
	club, err := h.Catalog.ResolveClub(r.URL.Query().Get("club"))
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	period, ok := h.parsePeriod(w, r)
	if !ok {
		return
	}

	ops, err := h.Store.OperationsByRange(r.Context(), club, period)
	if err != nil {
		h.Log.Error().Err(err).Msg("report read failed")
		respondError(w, http.StatusInternalServerError, "store failure")
		return
	}

	rep := report.Build(club, period, ops)
	if !rep.CheckOK {
		h.Log.Warn().Str("club", club).Str("period", period.String()).Msg("report totals disagree")
	}
	respondJSON(w, http.StatusOK, toReportDTO(rep))
}

// GetEditLog returns the audit entries for a club and day.
func (h *Handler) GetEditLog(w http.ResponseWriter, r *http.Request) {
	club, err := h.Catalog.ResolveClub(r.URL.Query().Get("club"))
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	date, err := ledger.ParseDate(r.URL.Query().Get("date"))
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	entries, err := h.Store.EditLog(r.Context(), club, date)
	if err != nil {
		h.Log.Error().Err(err).Msg("edit log read failed")
		respondError(w, http.StatusInternalServerError, "store failure")
		return
	}
	dtos := make([]EditLogEntryDTO, 0, len(entries))
	for _, e := range entries {
		dtos = append(dtos, toEditLogEntryDTO(e))
	}
	respondJSON(w, http.StatusOK, dtos)
}

// EmployeePayments returns one employee's operations over a period,
// optionally limited to one club.
func (h *Handler) EmployeePayments(w http.ResponseWriter, r *http.Request) {
	code := h.Parser.Normalizer().NormalizeCode(chi.URLParam(r, "code"))
	period, ok := h.parsePeriod(w, r)
	if !ok {
		return
	}

	club := ""
	if raw := r.URL.Query().Get("club"); raw != "" {
		resolved, err := h.Catalog.ResolveClub(raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		club = resolved
	}

	ops, err := h.Store.PaymentsByCode(r.Context(), code, period, club)
	if err != nil {
		h.Log.Error().Err(err).Msg("payments read failed")
		respondError(w, http.StatusInternalServerError, "store failure")
		return
	}
	respondJSON(w, http.StatusOK, operationDTOs(ops))
}

// Health is a liveness probe.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// HELPERS
// =============================================================================

// resolveKey validates and canonicalizes the four parts of a natural key.
// Writes the error response itself and returns ok=false on failure.
func (h *Handler) resolveKey(w http.ResponseWriter, club, date, code, channel string) (ledger.Key, bool) {
	canonicalClub, err := h.Catalog.ResolveClub(club)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return ledger.Key{}, false
	}
	parsedDate, err := ledger.ParseDate(date)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return ledger.Key{}, false
	}
	resolvedChannel, err := h.Catalog.ResolveChannel(channel)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return ledger.Key{}, false
	}
	return ledger.Key{
		Club:    canonicalClub,
		Date:    parsedDate,
		Code:    h.Parser.Normalizer().NormalizeCode(code),
		Channel: resolvedChannel,
	}, true
}

// parsePeriod reads from/to query params; a missing "to" means a single
// day. Writes the error response itself on failure.
func (h *Handler) parsePeriod(w http.ResponseWriter, r *http.Request) (ledger.Period, bool) {
	from, err := ledger.ParseDate(r.URL.Query().Get("from"))
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return ledger.Period{}, false
	}
	rawTo := r.URL.Query().Get("to")
	if rawTo == "" {
		return ledger.Day(from), true
	}
	to, err := ledger.ParseDate(rawTo)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return ledger.Period{}, false
	}
	period, err := ledger.NewPeriod(from, to)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return ledger.Period{}, false
	}
	return period, true
}

func (h *Handler) respondStoreError(w http.ResponseWriter, err error, op string) {
	if ledger.IsNotFound(err) {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}
	h.Log.Error().Err(err).Str("op", op).Msg("store mutation failed")
	respondError(w, http.StatusInternalServerError, "store failure, no changes were made")
}

func operationDTOs(ops []ledger.Operation) []OperationDTO {
	dtos := make([]OperationDTO, 0, len(ops))
	for _, op := range ops {
		dtos = append(dtos, toOperationDTO(op))
	}
	return dtos
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
