package ledger

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
)

func TestInMemoryLedger_DepositWithdrawSequence(t *testing.T) {
	l := NewInMemory()
	ctx := context.Background()

	if err := l.Open(ctx, "session:a"); err != nil {
		t.Fatalf("open account: %v", err)
	}

	entry, err := l.Deposit(ctx, "session:a", 1_000)
	if err != nil {
		t.Fatalf("deposit failed: %v", err)
	}
	if entry.Kind != KindDeposit || entry.Balance != 1_000 {
		t.Fatalf("unexpected deposit entry: %+v", entry)
	}

	entry, err = l.Withdraw(ctx, "session:a", 300)
	if err != nil {
		t.Fatalf("withdraw failed: %v", err)
	}
	if entry.Kind != KindWithdrawal || entry.Balance != 700 {
		t.Fatalf("unexpected withdrawal entry: %+v", entry)
	}

	balance, err := l.Balance(ctx, "session:a")
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if balance != 700 {
		t.Fatalf("expected balance 700, got %d", balance)
	}
}

func TestInMemoryLedger_RejectsInvalidAmounts(t *testing.T) {
	l := NewInMemory()
	ctx := context.Background()
	l.Open(ctx, "session:a")

	for _, amount := range []int64{0, -10} {
		if _, err := l.Deposit(ctx, "session:a", amount); !errors.Is(err, ErrInvalidAmount) {
			t.Fatalf("deposit %d: expected ErrInvalidAmount, got %v", amount, err)
		}
		if _, err := l.Withdraw(ctx, "session:a", amount); !errors.Is(err, ErrInvalidAmount) {
			t.Fatalf("withdraw %d: expected ErrInvalidAmount, got %v", amount, err)
		}
	}

	history, err := l.History(ctx, "session:a", 0)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 0 {
		t.Fatalf("rejected postings must not be logged, got %d entries", len(history))
	}
}

func TestInMemoryLedger_InsufficientFunds(t *testing.T) {
	l := NewInMemory()
	ctx := context.Background()
	l.Open(ctx, "session:a")
	SeedBalance(l, "session:a", 500)

	if _, err := l.Withdraw(ctx, "session:a", 501); !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("expected insufficient funds, got %v", err)
	}

	balance, _ := l.Balance(ctx, "session:a")
	if balance != 500 {
		t.Fatalf("balance changed after rejected withdrawal: %d", balance)
	}
}

func TestInMemoryLedger_HistoryMostRecentFirst(t *testing.T) {
	l := NewInMemory()
	ctx := context.Background()
	l.Open(ctx, "session:a")

	for _, amount := range []int64{100, 200, 300} {
		if _, err := l.Deposit(ctx, "session:a", amount); err != nil {
			t.Fatalf("deposit %d: %v", amount, err)
		}
	}
	if _, err := l.Withdraw(ctx, "session:a", 50); err != nil {
		t.Fatalf("withdraw: %v", err)
	}

	history, err := l.History(ctx, "session:a", 2)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(history))
	}
	if history[0].Kind != KindWithdrawal || history[0].Amount != 50 {
		t.Fatalf("expected most recent entry first, got %+v", history[0])
	}
	if history[1].Kind != KindDeposit || history[1].Amount != 300 {
		t.Fatalf("unexpected second entry: %+v", history[1])
	}

	full, err := l.History(ctx, "session:a", 0)
	if err != nil {
		t.Fatalf("full history: %v", err)
	}
	if len(full) != 4 {
		t.Fatalf("expected 4 entries, got %d", len(full))
	}
}

func TestInMemoryLedger_UnknownAccount(t *testing.T) {
	l := NewInMemory()
	ctx := context.Background()

	if _, err := l.Deposit(ctx, "nope", 100); !errors.Is(err, ErrUnknownAccount) {
		t.Fatalf("expected ErrUnknownAccount, got %v", err)
	}
	if _, err := l.Balance(ctx, "nope"); !errors.Is(err, ErrUnknownAccount) {
		t.Fatalf("expected ErrUnknownAccount, got %v", err)
	}
}

func TestInMemoryLedger_DropResets(t *testing.T) {
	l := NewInMemory()
	ctx := context.Background()
	l.Open(ctx, "session:a")
	SeedBalance(l, "session:a", 1_000)

	if err := l.Drop(ctx, "session:a"); err != nil {
		t.Fatalf("drop: %v", err)
	}
	if _, err := l.Balance(ctx, "session:a"); !errors.Is(err, ErrUnknownAccount) {
		t.Fatalf("expected account gone, got %v", err)
	}

	// Reopening starts from zero.
	l.Open(ctx, "session:a")
	balance, _ := l.Balance(ctx, "session:a")
	if balance != 0 {
		t.Fatalf("expected fresh balance 0, got %d", balance)
	}
}

func TestInMemoryLedger_ConcurrentDeposits(t *testing.T) {
	l := NewInMemory()
	ctx := context.Background()
	l.Open(ctx, "session:a")
	ledgerImpl := l.(*inMemoryLedger)

	const workers = 10
	const amount = int64(500)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if _, err := l.Deposit(ctx, "session:a", amount); err != nil {
				t.Errorf("deposit %s failed: %v", fmt.Sprintf("tx-%d", i), err)
			}
		}(i)
	}
	wg.Wait()

	acct := ledgerImpl.accounts["session:a"]
	if acct.balance != workers*amount {
		t.Fatalf("ledger not balanced after concurrency, balance=%d", acct.balance)
	}
	if len(acct.entries) != workers {
		t.Fatalf("expected %d entries, got %d", workers, len(acct.entries))
	}
}
