// Package store provides an in-memory ledger.Store implementation for
// testing and dev mode.
package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/warp/payout-ledger/ledger"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

// Memory holds Operations keyed by their natural key plus the append-only
// edit log. All mutations run under one mutex, which makes each call
// trivially atomic; the critical sections are map operations only.
type Memory struct {
	mu    sync.RWMutex
	ops   map[ledger.Key]ledger.Operation
	edits []ledger.EditLogEntry
}

func NewMemory() *Memory {
	return &Memory{ops: make(map[ledger.Key]ledger.Operation)}
}

// AddOrUpdate inserts or merges under the natural key. No audit entry on
// this path, matching the store contract.
func (m *Memory) AddOrUpdate(_ context.Context, op ledger.Operation, aggregate bool) (ledger.UpsertOutcome, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := op.Key()
	existing, ok := m.ops[key]
	if !ok {
		op.Amount = ledger.Round2(op.Amount)
		op.CreatedAt = time.Now().UTC()
		m.ops[key] = op
		return ledger.UpsertOutcome{Created: true, NewAmount: op.Amount}, nil
	}

	newAmount := ledger.Round2(op.Amount)
	if aggregate {
		newAmount = ledger.Round2(existing.Amount.Add(op.Amount))
	}
	outcome := ledger.UpsertOutcome{
		Aggregated: aggregate,
		OldAmount:  existing.Amount,
		NewAmount:  newAmount,
	}

	existing.Amount = newAmount
	existing.NameSnapshot = op.NameSnapshot
	existing.OriginalLine = op.OriginalLine
	// CreatedAt keeps the first-insertion time
	m.ops[key] = existing
	return outcome, nil
}

// Update corrects the amount of an existing row and records the audit entry.
func (m *Memory) Update(_ context.Context, key ledger.Key, amount decimal.Decimal) (ledger.EditLogEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.ops[key]
	if !ok {
		return ledger.EditLogEntry{}, &ledger.NotFoundError{Key: key}
	}

	newAmount := ledger.Round2(amount)
	entry := ledger.EditLogEntry{
		ID:       uuid.NewString(),
		Club:     key.Club,
		Date:     key.Date,
		Code:     key.Code,
		Channel:  key.Channel,
		Action:   ledger.EditUpdate,
		OldValue: existing.Amount,
		NewValue: &newAmount,
		EditedAt: time.Now().UTC(),
	}

	existing.Amount = newAmount
	m.ops[key] = existing
	m.edits = append(m.edits, entry)
	return entry, nil
}

// Delete removes an existing row and records the audit entry.
func (m *Memory) Delete(_ context.Context, key ledger.Key) (ledger.EditLogEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.ops[key]
	if !ok {
		return ledger.EditLogEntry{}, &ledger.NotFoundError{Key: key}
	}

	entry := ledger.EditLogEntry{
		ID:       uuid.NewString(),
		Club:     key.Club,
		Date:     key.Date,
		Code:     key.Code,
		Channel:  key.Channel,
		Action:   ledger.EditDelete,
		OldValue: existing.Amount,
		EditedAt: time.Now().UTC(),
	}

	delete(m.ops, key)
	m.edits = append(m.edits, entry)
	return entry, nil
}

func (m *Memory) OperationsByDate(_ context.Context, club string, date ledger.Date) ([]ledger.Operation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []ledger.Operation
	for key, op := range m.ops {
		if key.Club == club && key.Date == date {
			out = append(out, op)
		}
	}
	sortOperations(out)
	return out, nil
}

func (m *Memory) OperationsByRange(_ context.Context, club string, period ledger.Period) ([]ledger.Operation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []ledger.Operation
	for key, op := range m.ops {
		if key.Club == club && period.Contains(key.Date) {
			out = append(out, op)
		}
	}
	sortOperations(out)
	return out, nil
}

func (m *Memory) PaymentsByCode(_ context.Context, code string, period ledger.Period, club string) ([]ledger.Operation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []ledger.Operation
	for key, op := range m.ops {
		if key.Code != code || !period.Contains(key.Date) {
			continue
		}
		if club != "" && key.Club != club {
			continue
		}
		out = append(out, op)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Club != b.Club {
			return a.Club < b.Club
		}
		if a.Date != b.Date {
			return a.Date < b.Date
		}
		return a.Channel < b.Channel
	})
	return out, nil
}

func (m *Memory) EditLog(_ context.Context, club string, date ledger.Date) ([]ledger.EditLogEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []ledger.EditLogEntry
	for _, entry := range m.edits {
		if entry.Club == club && entry.Date == date {
			out = append(out, entry)
		}
	}
	return out, nil
}

func sortOperations(ops []ledger.Operation) {
	sort.Slice(ops, func(i, j int) bool {
		a, b := ops[i], ops[j]
		if a.Date != b.Date {
			return a.Date < b.Date
		}
		if a.Code != b.Code {
			return a.Code < b.Code
		}
		return a.Channel < b.Channel
	})
}
