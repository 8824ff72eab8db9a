package service

import (
	"context"
	"errors"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/lucidplay/crashgate/internal/model"
)

// ErrInsufficientFunds is returned by Debit when the balance cannot cover
// the requested amount. Callers turn it into a typed rejection, never a
// fault.
var ErrInsufficientFunds = errors.New("insufficient funds")

// Ledger is the external wallet collaborator. Implementations must make
// each debit/credit atomic; any other failure is a persistence error.
type Ledger interface {
	Debit(ctx context.Context, userID string, amount decimal.Decimal) (model.WalletSnapshot, error)
	Credit(ctx context.Context, userID string, amount decimal.Decimal) (model.WalletSnapshot, error)
}

// MemoryLedger keeps balances in-process. Unseen users start at the
// configured seed balance.
type MemoryLedger struct {
	mu       sync.Mutex
	balances map[string]decimal.Decimal
	starting decimal.Decimal
}

func NewMemoryLedger(startingBalance decimal.Decimal) *MemoryLedger {
	return &MemoryLedger{
		balances: make(map[string]decimal.Decimal),
		starting: startingBalance,
	}
}

func (l *MemoryLedger) balanceLocked(userID string) decimal.Decimal {
	if b, ok := l.balances[userID]; ok {
		return b
	}
	l.balances[userID] = l.starting
	return l.starting
}

func (l *MemoryLedger) Debit(ctx context.Context, userID string, amount decimal.Decimal) (model.WalletSnapshot, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	balance := l.balanceLocked(userID)
	if balance.LessThan(amount) {
		return model.WalletSnapshot{}, ErrInsufficientFunds
	}
	balance = balance.Sub(amount)
	l.balances[userID] = balance
	return model.WalletSnapshot{UserID: userID, Balance: balance}, nil
}

func (l *MemoryLedger) Credit(ctx context.Context, userID string, amount decimal.Decimal) (model.WalletSnapshot, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	balance := l.balanceLocked(userID).Add(amount)
	l.balances[userID] = balance
	return model.WalletSnapshot{UserID: userID, Balance: balance}, nil
}

// Balance reports the current balance without mutating it. Used by tests
// and diagnostics.
func (l *MemoryLedger) Balance(userID string) decimal.Decimal {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balanceLocked(userID)
}
