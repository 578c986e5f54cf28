package ledger

import "time"

// SeedBalance is a test helper that force-sets the balance for an account when
// using the in-memory ledger. The seeded amount is recorded as a deposit so
// the balance invariant still holds against the log.
func SeedBalance(l Ledger, code string, amount int64) {
	if mem, ok := l.(*inMemoryLedger); ok {
		mem.mu.Lock()
		defer mem.mu.Unlock()
		acct, exists := mem.accounts[code]
		if !exists {
			acct = &memoryAccount{}
			mem.accounts[code] = acct
		}
		acct.balance = amount
		acct.entries = []Entry{{
			ID:        "seed",
			Kind:      KindDeposit,
			Amount:    amount,
			Balance:   amount,
			CreatedAt: time.Now().UTC(),
		}}
	}
}
