/*
store.go - Persistence interface for operations and the edit log

PURPOSE:
  Defines the interface between the domain logic and storage. Two
  implementations exist: store/sqlite (production, embedded database) and
  ledger/store (in-memory, for tests and dev mode).

UPSERT SEMANTICS (AddOrUpdate):
  - No row for the natural key: insert, CreatedAt = now.
  - Row exists, aggregate=true:  amount += new amount. Models "more payouts
    accumulated for the same day/channel".
  - Row exists, aggregate=false: amount = new amount. Models "re-entering
    the day's total".
  Either branch replaces NameSnapshot and OriginalLine (most-recent-wins)
  and preserves CreatedAt. Neither branch writes an EditLogEntry: upserts
  are data arriving, not corrections. The distinction is deliberate.

AUDIT CONTRACT (Update / Delete):
  Explicit corrections and deletions require the row to exist and append
  exactly one EditLogEntry inside the same atomic mutation. The edit log is
  append-only: implementations expose no way to modify or remove entries.

CONCURRENCY CONTRACT:
  Upserts on the same natural key are linearizable: the read-modify-write
  may not interleave so that an aggregation is lost. Corrections and
  deletions are atomic per key relative to concurrent upserts. Reads take a
  consistent snapshot and never observe a half-written row. A failed write
  leaves the prior state unchanged.

READ ORDERING:
  Point and range reads return Operations ordered by date, code, channel so
  downstream processing is deterministic. An empty range yields an empty
  slice, not an error.
*/
package ledger

import (
	"context"

	"github.com/shopspring/decimal"
)

// =============================================================================
// UPSERT OUTCOME
// =============================================================================

// UpsertOutcome reports what AddOrUpdate did, so the caller can phrase a
// precise confirmation ("added", "100 + 50 = 150", "100 -> 50").
type UpsertOutcome struct {
	Created    bool // no prior row existed
	Aggregated bool // prior amount was added to, rather than replaced
	OldAmount  decimal.Decimal
	NewAmount  decimal.Decimal
}

// =============================================================================
// STORE - Interface for operation persistence
// =============================================================================

type Store interface {
	// AddOrUpdate inserts the Operation or merges it into the existing row
	// for its natural key, per the upsert semantics above.
	AddOrUpdate(ctx context.Context, op Operation, aggregate bool) (UpsertOutcome, error)

	// Update sets the amount of an existing Operation and appends an
	// EditLogEntry with action "update". Returns NotFoundError if no row
	// exists for the key.
	Update(ctx context.Context, key Key, amount decimal.Decimal) (EditLogEntry, error)

	// Delete removes an existing Operation and appends an EditLogEntry with
	// action "delete" and a nil NewValue. Returns NotFoundError if no row
	// exists for the key.
	Delete(ctx context.Context, key Key) (EditLogEntry, error)

	// OperationsByDate returns all Operations for a club on one day,
	// ordered by code then channel.
	OperationsByDate(ctx context.Context, club string, date Date) ([]Operation, error)

	// OperationsByRange returns all Operations for a club in the inclusive
	// period, ordered by date, code, channel.
	OperationsByRange(ctx context.Context, club string, period Period) ([]Operation, error)

	// PaymentsByCode returns all Operations for one employee code in the
	// period. An empty club searches every club; results are ordered by
	// club, date, channel.
	PaymentsByCode(ctx context.Context, code string, period Period, club string) ([]Operation, error)

	// EditLog returns the audit entries recorded for a club and day,
	// oldest first.
	EditLog(ctx context.Context, club string, date Date) ([]EditLogEntry, error)
}
