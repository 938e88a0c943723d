package ledger

import (
	"context"
	"sync"

	id "coffer/pkg/domain"
	dErrors "coffer/pkg/domain-errors"
)

// InMemoryLedger simulates the host ledger. Unknown accounts have balance 0.
type InMemoryLedger struct {
	mu       sync.RWMutex
	balances map[id.AccountID]int64
}

// NewInMemoryLedger creates an empty ledger.
func NewInMemoryLedger() *InMemoryLedger {
	return &InMemoryLedger{balances: make(map[id.AccountID]int64)}
}

// Credit seeds an account balance. Test and development helper; the real host
// ledger funds accounts through its own mechanics.
func (l *InMemoryLedger) Credit(account id.AccountID, amount int64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.balances[account] += amount
}

func (l *InMemoryLedger) Transfer(_ context.Context, from, to id.AccountID, amount int64) error {
	if amount <= 0 {
		return dErrors.New(dErrors.CodeInvalidInput, "transfer amount must be positive")
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.balances[from] < amount {
		return dErrors.New(dErrors.CodeInsufficientBalance, "insufficient ledger balance")
	}
	l.balances[from] -= amount
	l.balances[to] += amount
	return nil
}

func (l *InMemoryLedger) BalanceOf(_ context.Context, account id.AccountID) (int64, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.balances[account], nil
}
