package ledger

import (
	"context"
	"sync"

	"gorm.io/gorm"

	"github.com/predixio/settle/internal/numeric"
)

// MemoryLedger is a process-local Ledger keyed by account name. It backs
// tests and single-node deployments; the durable balances live in the
// custodial system this interface fronts.
type MemoryLedger struct {
	mu       sync.Mutex
	balances map[Account]uint64
}

func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{balances: make(map[Account]uint64)}
}

// WithTx is a no-op: the memory ledger has no transactional storage.
func (l *MemoryLedger) WithTx(_ *gorm.DB) Ledger {
	return l
}

// Seed sets an account balance directly. Test helper.
func (l *MemoryLedger) Seed(account Account, amount uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.balances[account] = amount
}

func (l *MemoryLedger) Transfer(_ context.Context, from, to Account, amount uint64) error {
	if amount == 0 {
		return ErrZeroAmount
	}
	if from == to {
		return ErrSameAccount
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.balances[from] < amount {
		return ErrInsufficientFunds
	}
	next, err := numeric.Add(l.balances[to], amount)
	if err != nil {
		return err
	}
	l.balances[from] -= amount
	l.balances[to] = next
	return nil
}

func (l *MemoryLedger) Mint(_ context.Context, to Account, amount uint64) error {
	if amount == 0 {
		return ErrZeroAmount
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	next, err := numeric.Add(l.balances[to], amount)
	if err != nil {
		return err
	}
	l.balances[to] = next
	return nil
}

func (l *MemoryLedger) Burn(_ context.Context, from Account, amount uint64) error {
	if amount == 0 {
		return ErrZeroAmount
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.balances[from] < amount {
		return ErrInsufficientFunds
	}
	l.balances[from] -= amount
	return nil
}

func (l *MemoryLedger) Balance(_ context.Context, account Account) (uint64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balances[account], nil
}
