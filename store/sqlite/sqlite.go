/*
Package sqlite provides the SQLite-backed implementation of ledger.Store.

PURPOSE:
  The system assumes a single authoritative embedded store, so SQLite is the
  production backend. The same SQL shapes would port to PostgreSQL with only
  dialect changes.

KEY TABLES:
  operations: one row per (club, date, code, channel), enforced by the
              primary key. Amounts are stored as decimal text.
  edit_log:   append-only audit of corrections and deletions. No UPDATE or
              DELETE statement in this package ever touches it.

INDEXES:
  - primary key (club, date, code, channel): the upsert target
  - idx_operations_club_date: point and range reads
  - idx_operations_code: employee payment history
  - idx_edit_log_club_date: audit views

CONCURRENCY:
  Upserts, corrections and deletions run their read-modify-write inside one
  database transaction under a write lock, so two concurrent upserts on the
  same natural key cannot lose an aggregation. Reads take the read lock and
  see only committed rows. SQLite is opened in WAL mode: readers do not
  block the writer and a failed transaction rolls back completely, leaving
  the prior row (or absence of one) unchanged.

USAGE:
  store, err := sqlite.New("./payouts.db", log)
  if err != nil { ... }
  defer store.Close()

SEE ALSO:
  - ledger/store.go: interface and semantics
  - ledger/store/memory.go: in-memory implementation for tests
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/warp/payout-ledger/ledger"
)

// Store implements ledger.Store on SQLite.
type Store struct {
	db  *sql.DB
	mu  sync.RWMutex
	log zerolog.Logger
}

// New opens (or creates) the database at dbPath and migrates the schema.
// Use ":memory:" for an in-memory database.
func New(dbPath string, log zerolog.Logger) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// SQLite allows one writer; a single pooled connection also keeps
	// ":memory:" databases from silently splitting per connection.
	db.SetMaxOpenConns(1)

	s := &Store{db: db, log: log}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	log.Info().Str("path", dbPath).Msg("payout store ready")
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	-- Payout facts, one per natural key
	CREATE TABLE IF NOT EXISTS operations (
		club TEXT NOT NULL,
		date TEXT NOT NULL,
		code TEXT NOT NULL,
		channel TEXT NOT NULL,
		name_snapshot TEXT NOT NULL,
		amount TEXT NOT NULL,
		original_line TEXT,
		created_at TEXT NOT NULL,
		PRIMARY KEY (club, date, code, channel)
	);

	CREATE INDEX IF NOT EXISTS idx_operations_club_date
		ON operations(club, date);
	CREATE INDEX IF NOT EXISTS idx_operations_code
		ON operations(code);

	-- Append-only audit of explicit corrections and deletions
	CREATE TABLE IF NOT EXISTS edit_log (
		id TEXT PRIMARY KEY,
		club TEXT NOT NULL,
		date TEXT NOT NULL,
		code TEXT NOT NULL,
		channel TEXT NOT NULL,
		action TEXT NOT NULL,
		old_value TEXT NOT NULL,
		new_value TEXT,
		edited_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_edit_log_club_date
		ON edit_log(club, date);
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// UPSERT
// =============================================================================

// AddOrUpdate inserts or merges an Operation under its natural key. The
// SELECT and the INSERT/UPDATE run in one transaction so concurrent upserts
// on the same key serialize instead of losing an aggregation. No audit
// entry is written on this path.
func (s *Store) AddOrUpdate(ctx context.Context, op ledger.Operation, aggregate bool) (ledger.UpsertOutcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return ledger.UpsertOutcome{}, &ledger.StoreError{Op: "upsert", Err: err}
	}
	defer tx.Rollback()

	var existing string
	err = tx.QueryRowContext(ctx,
		`SELECT amount FROM operations WHERE club = ? AND date = ? AND code = ? AND channel = ?`,
		op.Club, string(op.Date), op.Code, string(op.Channel),
	).Scan(&existing)

	var outcome ledger.UpsertOutcome
	switch {
	case errors.Is(err, sql.ErrNoRows):
		amount := ledger.Round2(op.Amount)
		_, err = tx.ExecContext(ctx,
			`INSERT INTO operations (club, date, code, channel, name_snapshot, amount, original_line, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			op.Club, string(op.Date), op.Code, string(op.Channel),
			op.NameSnapshot, amount.String(), op.OriginalLine,
			time.Now().UTC().Format(time.RFC3339),
		)
		if err != nil {
			return ledger.UpsertOutcome{}, &ledger.StoreError{Op: "upsert", Err: err}
		}
		outcome = ledger.UpsertOutcome{Created: true, NewAmount: amount}

	case err != nil:
		return ledger.UpsertOutcome{}, &ledger.StoreError{Op: "upsert", Err: err}

	default:
		oldAmount, perr := decimal.NewFromString(existing)
		if perr != nil {
			return ledger.UpsertOutcome{}, &ledger.StoreError{Op: "upsert", Err: perr}
		}
		newAmount := ledger.Round2(op.Amount)
		if aggregate {
			newAmount = ledger.Round2(oldAmount.Add(op.Amount))
		}
		// created_at is the first-insertion time and is preserved here
		_, err = tx.ExecContext(ctx,
			`UPDATE operations SET amount = ?, name_snapshot = ?, original_line = ?
			 WHERE club = ? AND date = ? AND code = ? AND channel = ?`,
			newAmount.String(), op.NameSnapshot, op.OriginalLine,
			op.Club, string(op.Date), op.Code, string(op.Channel),
		)
		if err != nil {
			return ledger.UpsertOutcome{}, &ledger.StoreError{Op: "upsert", Err: err}
		}
		outcome = ledger.UpsertOutcome{Aggregated: aggregate, OldAmount: oldAmount, NewAmount: newAmount}
	}

	if err := tx.Commit(); err != nil {
		return ledger.UpsertOutcome{}, &ledger.StoreError{Op: "upsert", Err: err}
	}
	return outcome, nil
}

// =============================================================================
// CORRECTION AND DELETION - The audited mutations
// =============================================================================

// Update corrects the amount of an existing Operation, appending the audit
// entry in the same transaction.
func (s *Store) Update(ctx context.Context, key ledger.Key, amount decimal.Decimal) (ledger.EditLogEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return ledger.EditLogEntry{}, &ledger.StoreError{Op: "update", Err: err}
	}
	defer tx.Rollback()

	oldAmount, err := amountForKey(ctx, tx, key)
	if err != nil {
		return ledger.EditLogEntry{}, err
	}

	newAmount := ledger.Round2(amount)
	_, err = tx.ExecContext(ctx,
		`UPDATE operations SET amount = ? WHERE club = ? AND date = ? AND code = ? AND channel = ?`,
		newAmount.String(), key.Club, string(key.Date), key.Code, string(key.Channel),
	)
	if err != nil {
		return ledger.EditLogEntry{}, &ledger.StoreError{Op: "update", Err: err}
	}

	entry := ledger.EditLogEntry{
		ID:       uuid.NewString(),
		Club:     key.Club,
		Date:     key.Date,
		Code:     key.Code,
		Channel:  key.Channel,
		Action:   ledger.EditUpdate,
		OldValue: oldAmount,
		NewValue: &newAmount,
		EditedAt: time.Now().UTC(),
	}
	if err := appendEdit(ctx, tx, entry); err != nil {
		return ledger.EditLogEntry{}, err
	}
	if err := tx.Commit(); err != nil {
		return ledger.EditLogEntry{}, &ledger.StoreError{Op: "update", Err: err}
	}
	return entry, nil
}

// Delete removes an existing Operation, appending the audit entry in the
// same transaction. The audit row outlives the deleted Operation.
func (s *Store) Delete(ctx context.Context, key ledger.Key) (ledger.EditLogEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return ledger.EditLogEntry{}, &ledger.StoreError{Op: "delete", Err: err}
	}
	defer tx.Rollback()

	oldAmount, err := amountForKey(ctx, tx, key)
	if err != nil {
		return ledger.EditLogEntry{}, err
	}

	_, err = tx.ExecContext(ctx,
		`DELETE FROM operations WHERE club = ? AND date = ? AND code = ? AND channel = ?`,
		key.Club, string(key.Date), key.Code, string(key.Channel),
	)
	if err != nil {
		return ledger.EditLogEntry{}, &ledger.StoreError{Op: "delete", Err: err}
	}

	entry := ledger.EditLogEntry{
		ID:       uuid.NewString(),
		Club:     key.Club,
		Date:     key.Date,
		Code:     key.Code,
		Channel:  key.Channel,
		Action:   ledger.EditDelete,
		OldValue: oldAmount,
		EditedAt: time.Now().UTC(),
	}
	if err := appendEdit(ctx, tx, entry); err != nil {
		return ledger.EditLogEntry{}, err
	}
	if err := tx.Commit(); err != nil {
		return ledger.EditLogEntry{}, &ledger.StoreError{Op: "delete", Err: err}
	}
	return entry, nil
}

func amountForKey(ctx context.Context, tx *sql.Tx, key ledger.Key) (decimal.Decimal, error) {
	var raw string
	err := tx.QueryRowContext(ctx,
		`SELECT amount FROM operations WHERE club = ? AND date = ? AND code = ? AND channel = ?`,
		key.Club, string(key.Date), key.Code, string(key.Channel),
	).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return decimal.Zero, &ledger.NotFoundError{Key: key}
	}
	if err != nil {
		return decimal.Zero, &ledger.StoreError{Op: "lookup", Err: err}
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, &ledger.StoreError{Op: "lookup", Err: err}
	}
	return d, nil
}

func appendEdit(ctx context.Context, tx *sql.Tx, entry ledger.EditLogEntry) error {
	var newValue any
	if entry.NewValue != nil {
		newValue = entry.NewValue.String()
	}
	_, err := tx.ExecContext(ctx,
		`INSERT INTO edit_log (id, club, date, code, channel, action, old_value, new_value, edited_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.Club, string(entry.Date), entry.Code, string(entry.Channel),
		string(entry.Action), entry.OldValue.String(), newValue,
		entry.EditedAt.Format(time.RFC3339),
	)
	if err != nil {
		return &ledger.StoreError{Op: "edit-log append", Err: err}
	}
	return nil
}

// =============================================================================
// READS
// =============================================================================

const operationColumns = `club, date, code, channel, name_snapshot, amount, original_line, created_at`

func (s *Store) OperationsByDate(ctx context.Context, club string, date ledger.Date) ([]ledger.Operation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryOperations(ctx,
		`SELECT `+operationColumns+` FROM operations
		 WHERE club = ? AND date = ?
		 ORDER BY code, channel`,
		club, string(date))
}

func (s *Store) OperationsByRange(ctx context.Context, club string, period ledger.Period) ([]ledger.Operation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryOperations(ctx,
		`SELECT `+operationColumns+` FROM operations
		 WHERE club = ? AND date >= ? AND date <= ?
		 ORDER BY date, code, channel`,
		club, string(period.From), string(period.To))
}

func (s *Store) PaymentsByCode(ctx context.Context, code string, period ledger.Period, club string) ([]ledger.Operation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if club != "" {
		return s.queryOperations(ctx,
			`SELECT `+operationColumns+` FROM operations
			 WHERE code = ? AND date >= ? AND date <= ? AND club = ?
			 ORDER BY date, channel`,
			code, string(period.From), string(period.To), club)
	}
	return s.queryOperations(ctx,
		`SELECT `+operationColumns+` FROM operations
		 WHERE code = ? AND date >= ? AND date <= ?
		 ORDER BY club, date, channel`,
		code, string(period.From), string(period.To))
}

func (s *Store) EditLog(ctx context.Context, club string, date ledger.Date) ([]ledger.EditLogEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, club, date, code, channel, action, old_value, new_value, edited_at
		 FROM edit_log
		 WHERE club = ? AND date = ?
		 ORDER BY edited_at, id`,
		club, string(date))
	if err != nil {
		return nil, &ledger.StoreError{Op: "edit-log query", Err: err}
	}
	defer rows.Close()

	var entries []ledger.EditLogEntry
	for rows.Next() {
		entry, err := scanEdit(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, &ledger.StoreError{Op: "edit-log query", Err: err}
	}
	return entries, nil
}

func (s *Store) queryOperations(ctx context.Context, query string, args ...any) ([]ledger.Operation, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, &ledger.StoreError{Op: "query", Err: err}
	}
	defer rows.Close()

	var ops []ledger.Operation
	for rows.Next() {
		op, err := scanOperation(rows)
		if err != nil {
			return nil, err
		}
		ops = append(ops, op)
	}
	if err := rows.Err(); err != nil {
		return nil, &ledger.StoreError{Op: "query", Err: err}
	}
	return ops, nil
}

func scanOperation(rows *sql.Rows) (ledger.Operation, error) {
	var (
		op           ledger.Operation
		date         string
		channel      string
		amount       string
		originalLine sql.NullString
		createdAt    string
	)
	err := rows.Scan(&op.Club, &date, &op.Code, &channel, &op.NameSnapshot, &amount, &originalLine, &createdAt)
	if err != nil {
		return op, &ledger.StoreError{Op: "scan", Err: err}
	}

	op.Date = ledger.Date(date)
	op.Channel = ledger.Channel(channel)
	op.Amount, err = decimal.NewFromString(amount)
	if err != nil {
		return op, &ledger.StoreError{Op: "scan", Err: err}
	}
	op.OriginalLine = originalLine.String
	op.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return op, nil
}

func scanEdit(rows *sql.Rows) (ledger.EditLogEntry, error) {
	var (
		entry    ledger.EditLogEntry
		date     string
		channel  string
		action   string
		oldValue string
		newValue sql.NullString
		editedAt string
	)
	err := rows.Scan(&entry.ID, &entry.Club, &date, &entry.Code, &channel, &action, &oldValue, &newValue, &editedAt)
	if err != nil {
		return entry, &ledger.StoreError{Op: "scan", Err: err}
	}

	entry.Date = ledger.Date(date)
	entry.Channel = ledger.Channel(channel)
	entry.Action = ledger.EditAction(action)
	entry.OldValue, err = decimal.NewFromString(oldValue)
	if err != nil {
		return entry, &ledger.StoreError{Op: "scan", Err: err}
	}
	if newValue.Valid {
		d, err := decimal.NewFromString(newValue.String)
		if err != nil {
			return entry, &ledger.StoreError{Op: "scan", Err: err}
		}
		entry.NewValue = &d
	}
	entry.EditedAt, _ = time.Parse(time.RFC3339, editedAt)
	return entry, nil
}
