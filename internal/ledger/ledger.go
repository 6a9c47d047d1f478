// Package ledger abstracts the custodial money movement the settlement
// core delegates outward. Balances are unsigned base units; an account is
// an opaque name. Implementations must make each call atomic.
package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrSameAccount       = errors.New("transfer to same account")
	ErrZeroAmount        = errors.New("zero amount")
)

// Account names a balance held by the ledger.
type Account string

// ProtocolTreasury receives swept protocol fees.
const ProtocolTreasury Account = "protocol:treasury"

// ActorAccount is the spendable balance of a bettor or provider.
func ActorAccount(id uuid.UUID) Account {
	return Account("actor:" + id.String())
}

// BetVault escrows a market's parimutuel pool.
func BetVault(marketID uuid.UUID) Account {
	return Account("market:" + marketID.String() + ":bets")
}

// LiquidityVault escrows a market's AMM reserves.
func LiquidityVault(marketID uuid.UUID) Account {
	return Account("market:" + marketID.String() + ":liquidity")
}

// LpShareAccount holds a provider's minted LP shares for one pool.
func LpShareAccount(poolID, providerID uuid.UUID) Account {
	return Account("pool:" + poolID.String() + ":shares:" + providerID.String())
}

// Ledger moves value between accounts. Services that move money while
// holding a database transaction must do so through WithTx, so the
// balance rows commit and roll back with the rest of the operation.
type Ledger interface {
	// WithTx returns a Ledger whose writes join the given transaction.
	// Implementations without transactional storage return themselves.
	WithTx(tx *gorm.DB) Ledger

	Transfer(ctx context.Context, from, to Account, amount uint64) error
	Mint(ctx context.Context, to Account, amount uint64) error
	Burn(ctx context.Context, from Account, amount uint64) error
	Balance(ctx context.Context, account Account) (uint64, error)
}

// Clock supplies the time the engine reasons about. Injected so expiry
// and resolution checks are testable.
type Clock interface {
	Now() time.Time
}

// SystemClock is the wall-clock implementation.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// FixedClock always returns the same instant.
type FixedClock struct {
	T time.Time
}

func (c FixedClock) Now() time.Time { return c.T }
