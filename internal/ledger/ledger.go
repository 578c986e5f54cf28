package ledger

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrInvalidAmount occurs when a posting amount is zero or negative.
	ErrInvalidAmount = errors.New("amount must be positive")

	// ErrInsufficientFunds occurs when a withdrawal exceeds the available balance.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrUnknownAccount occurs when the referenced account has not been opened.
	ErrUnknownAccount = errors.New("unknown account")
)

const (
	// KindDeposit marks a credit posting.
	KindDeposit = "deposit"
	// KindWithdrawal marks a debit posting.
	KindWithdrawal = "withdrawal"
)

// Entry is one committed posting. Balance is the running account balance
// after the posting was applied.
type Entry struct {
	ID        string
	Kind      string
	Amount    int64
	Balance   int64
	CreatedAt time.Time
}

// Ledger defines the contract implemented by ledger backends. Amounts are in
// the smallest currency unit. Every successful posting appends exactly one
// Entry; rejected postings leave the account untouched.
type Ledger interface {
	// Open creates the account with a zero balance if it does not exist.
	Open(ctx context.Context, code string) error
	// Balance returns the current balance.
	Balance(ctx context.Context, code string) (int64, error)
	// Deposit credits amount and returns the committed entry.
	Deposit(ctx context.Context, code string, amount int64) (Entry, error)
	// Withdraw debits amount and returns the committed entry.
	Withdraw(ctx context.Context, code string, amount int64) (Entry, error)
	// History returns up to limit entries, most recent first. A non-positive
	// limit returns the full log.
	History(ctx context.Context, code string, limit int) ([]Entry, error)
	// Drop discards the account and its log entirely.
	Drop(ctx context.Context, code string) error
}
