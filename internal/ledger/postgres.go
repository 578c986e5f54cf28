package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresLedger persists accounts and their postings in PostgreSQL. It is an
// optional backend; sessions default to the in-memory ledger.
//
// Schema:
//
//	CREATE TABLE accounts (
//	    id      UUID PRIMARY KEY,
//	    code    TEXT UNIQUE NOT NULL,
//	    balance BIGINT NOT NULL DEFAULT 0
//	);
//	CREATE TABLE entries (
//	    id         UUID PRIMARY KEY,
//	    account_id UUID NOT NULL REFERENCES accounts(id) ON DELETE CASCADE,
//	    kind       TEXT NOT NULL,
//	    amount     BIGINT NOT NULL,
//	    balance    BIGINT NOT NULL,
//	    created_at TIMESTAMPTZ NOT NULL
//	);
type PostgresLedger struct {
	db *pgxpool.Pool
}

// NewPostgres constructs a Postgres-backed ledger implementation.
func NewPostgres(db *pgxpool.Pool) *PostgresLedger {
	return &PostgresLedger{db: db}
}

// Open guarantees an account row exists for the provided code.
func (l *PostgresLedger) Open(ctx context.Context, code string) error {
	_, err := l.db.Exec(ctx, `INSERT INTO accounts (id, code, balance) VALUES ($1, $2, 0)
        ON CONFLICT (code) DO NOTHING`, uuid.New(), code)
	return err
}

// Balance returns the current balance for the specified account code.
func (l *PostgresLedger) Balance(ctx context.Context, code string) (int64, error) {
	var balance int64
	err := l.db.QueryRow(ctx, `SELECT balance FROM accounts WHERE code = $1`, code).Scan(&balance)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrUnknownAccount
	}
	return balance, err
}

// Deposit credits the account inside a transaction and appends the entry.
func (l *PostgresLedger) Deposit(ctx context.Context, code string, amount int64) (Entry, error) {
	return l.post(ctx, code, KindDeposit, amount)
}

// Withdraw debits the account inside a transaction and appends the entry.
func (l *PostgresLedger) Withdraw(ctx context.Context, code string, amount int64) (Entry, error) {
	return l.post(ctx, code, KindWithdrawal, amount)
}

func (l *PostgresLedger) post(ctx context.Context, code, kind string, amount int64) (Entry, error) {
	if amount <= 0 {
		return Entry{}, ErrInvalidAmount
	}

	tx, err := l.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return Entry{}, err
	}
	defer tx.Rollback(ctx) // nolint:errcheck

	var (
		accountID uuid.UUID
		balance   int64
	)
	err = tx.QueryRow(ctx, `SELECT id, balance FROM accounts WHERE code = $1 FOR UPDATE`, code).
		Scan(&accountID, &balance)
	if errors.Is(err, pgx.ErrNoRows) {
		return Entry{}, ErrUnknownAccount
	}
	if err != nil {
		return Entry{}, err
	}

	if kind == KindWithdrawal {
		if amount > balance {
			return Entry{}, ErrInsufficientFunds
		}
		balance -= amount
	} else {
		balance += amount
	}

	entry := Entry{
		ID:        uuid.NewString(),
		Kind:      kind,
		Amount:    amount,
		Balance:   balance,
		CreatedAt: time.Now().UTC(),
	}

	if _, err := tx.Exec(ctx, `UPDATE accounts SET balance = $1 WHERE id = $2`, balance, accountID); err != nil {
		return Entry{}, err
	}
	if _, err := tx.Exec(ctx, `INSERT INTO entries (id, account_id, kind, amount, balance, created_at)
        VALUES ($1, $2, $3, $4, $5, $6)`,
		entry.ID, accountID, entry.Kind, entry.Amount, entry.Balance, entry.CreatedAt); err != nil {
		return Entry{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return Entry{}, err
	}
	return entry, nil
}

// History returns up to limit entries for the account, most recent first.
func (l *PostgresLedger) History(ctx context.Context, code string, limit int) ([]Entry, error) {
	var accountID uuid.UUID
	err := l.db.QueryRow(ctx, `SELECT id FROM accounts WHERE code = $1`, code).Scan(&accountID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrUnknownAccount
	}
	if err != nil {
		return nil, err
	}

	query := `SELECT id, kind, amount, balance, created_at FROM entries
        WHERE account_id = $1 ORDER BY created_at DESC, id DESC`
	args := []any{accountID}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}

	rows, err := l.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			id        uuid.UUID
			entry     Entry
			createdAt time.Time
		)
		if err := rows.Scan(&id, &entry.Kind, &entry.Amount, &entry.Balance, &createdAt); err != nil {
			return nil, err
		}
		entry.ID = id.String()
		entry.CreatedAt = createdAt.UTC()
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// Drop removes the account and its entries.
func (l *PostgresLedger) Drop(ctx context.Context, code string) error {
	_, err := l.db.Exec(ctx, `DELETE FROM accounts WHERE code = $1`, code)
	return err
}
