/*
Package ledger contains the core domain model for the payout ledger.

PURPOSE:
  This package defines the entities shared by every layer of the system:
  the Operation (one payout fact), the EditLogEntry (immutable audit record
  of a correction or deletion), and the natural key that identifies an
  Operation. It also defines the Store interface implemented by the SQLite
  and in-memory backends.

KEY CONCEPTS IN THIS FILE (types.go):
  - Operation: one payout per (club, date, code, channel)
  - Key: the natural key of an Operation
  - Channel: payment channel (cash / non-cash)
  - EditLogEntry: append-only audit record for explicit mutations

DESIGN PRINCIPLES:
  1. Natural keys: an Operation is identified by (club, date, code, channel),
     never by a surrogate id. At most one row exists per key.
  2. Precision: amounts are decimal.Decimal, rounded to two places at the
     edges. No float64 in domain code.
  3. Auditability: corrections and deletions always leave an EditLogEntry.
     Aggregate upserts intentionally do not (see store.go).
  4. Identity vs display: the employee code is identity; name_snapshot is
     whatever the operator typed last and carries no authority.

SEE ALSO:
  - store.go: persistence interface and upsert semantics
  - errors.go: sentinel and structured errors
  - date.go: Date and Period types
*/
package ledger

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// CHANNEL - Payment channel (part of the natural key)
// =============================================================================

type Channel string

const (
	ChannelCash    Channel = "cash"
	ChannelNonCash Channel = "noncash"
)

// Channels lists the valid channels in their reporting order.
func Channels() []Channel {
	return []Channel{ChannelCash, ChannelNonCash}
}

func (c Channel) Valid() bool {
	return c == ChannelCash || c == ChannelNonCash
}

// =============================================================================
// KEY - Natural key of an Operation
// =============================================================================

// Key identifies exactly one Operation. At most one Operation exists per Key;
// inserting a duplicate merges into the existing row.
type Key struct {
	Club    string
	Date    Date
	Code    string
	Channel Channel
}

func (k Key) String() string {
	return fmt.Sprintf("%s/%s/%s/%s", k.Club, k.Date, k.Code, k.Channel)
}

// =============================================================================
// OPERATION - One payout fact
// =============================================================================

type Operation struct {
	Club         string
	Date         Date
	Code         string // normalized employee code (identity)
	Channel      Channel
	NameSnapshot string // display name as typed, most-recent-wins
	Amount       decimal.Decimal
	OriginalLine string // untouched source text, kept for audit
	CreatedAt    time.Time
}

func (o Operation) Key() Key {
	return Key{Club: o.Club, Date: o.Date, Code: o.Code, Channel: o.Channel}
}

// =============================================================================
// EDIT LOG - Append-only audit trail
// =============================================================================

type EditAction string

const (
	EditUpdate EditAction = "update"
	EditDelete EditAction = "delete"
)

// EditLogEntry records an explicit mutation of an Operation. Entries are
// written exactly once and never updated or deleted, and they outlive the
// Operation they describe.
type EditLogEntry struct {
	ID       string
	Club     string
	Date     Date
	Code     string
	Channel  Channel
	Action   EditAction
	OldValue decimal.Decimal
	NewValue *decimal.Decimal // nil on delete
	EditedAt time.Time
}

// =============================================================================
// MONEY HELPERS
// =============================================================================

// Round2 rounds a monetary value to two decimal places. Both report total
// paths round through this helper so the reconciliation check compares
// identically rounded values.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// AmountsEqual compares two monetary values after rounding to two places.
// This is exact equality on the rounded values, not an epsilon comparison.
func AmountsEqual(a, b decimal.Decimal) bool {
	return Round2(a).Equal(Round2(b))
}
