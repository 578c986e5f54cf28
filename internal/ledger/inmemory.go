package ledger

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

type memoryAccount struct {
	balance int64
	entries []Entry
}

type inMemoryLedger struct {
	mu       sync.RWMutex
	accounts map[string]*memoryAccount
}

// NewInMemory creates a concurrency-safe in-memory ledger. It is the default
// backend; nothing survives a process restart.
func NewInMemory() Ledger {
	return &inMemoryLedger{accounts: make(map[string]*memoryAccount)}
}

func (l *inMemoryLedger) Open(_ context.Context, code string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, exists := l.accounts[code]; !exists {
		l.accounts[code] = &memoryAccount{}
	}
	return nil
}

func (l *inMemoryLedger) Balance(_ context.Context, code string) (int64, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	acct, exists := l.accounts[code]
	if !exists {
		return 0, ErrUnknownAccount
	}
	return acct.balance, nil
}

func (l *inMemoryLedger) Deposit(_ context.Context, code string, amount int64) (Entry, error) {
	if amount <= 0 {
		return Entry{}, ErrInvalidAmount
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	acct, exists := l.accounts[code]
	if !exists {
		return Entry{}, ErrUnknownAccount
	}

	acct.balance += amount
	entry := Entry{
		ID:        uuid.NewString(),
		Kind:      KindDeposit,
		Amount:    amount,
		Balance:   acct.balance,
		CreatedAt: time.Now().UTC(),
	}
	acct.entries = append(acct.entries, entry)
	return entry, nil
}

func (l *inMemoryLedger) Withdraw(_ context.Context, code string, amount int64) (Entry, error) {
	if amount <= 0 {
		return Entry{}, ErrInvalidAmount
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	acct, exists := l.accounts[code]
	if !exists {
		return Entry{}, ErrUnknownAccount
	}
	if amount > acct.balance {
		return Entry{}, ErrInsufficientFunds
	}

	acct.balance -= amount
	entry := Entry{
		ID:        uuid.NewString(),
		Kind:      KindWithdrawal,
		Amount:    amount,
		Balance:   acct.balance,
		CreatedAt: time.Now().UTC(),
	}
	acct.entries = append(acct.entries, entry)
	return entry, nil
}

func (l *inMemoryLedger) History(_ context.Context, code string, limit int) ([]Entry, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	acct, exists := l.accounts[code]
	if !exists {
		return nil, ErrUnknownAccount
	}

	n := len(acct.entries)
	if limit <= 0 || limit > n {
		limit = n
	}

	out := make([]Entry, 0, limit)
	for i := n - 1; i >= n-limit; i-- {
		out = append(out, acct.entries[i])
	}
	return out, nil
}

func (l *inMemoryLedger) Drop(_ context.Context, code string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.accounts, code)
	return nil
}
