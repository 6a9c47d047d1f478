package ledger

import (
	"context"
	"math"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/predixio/settle/internal/numeric"
)

func TestMemoryLedgerTransfer(t *testing.T) {
	ctx := context.Background()

	t.Run("moves funds", func(t *testing.T) {
		l := NewMemoryLedger()
		l.Seed("a", 100)

		assert.NoError(t, l.Transfer(ctx, "a", "b", 60))

		from, _ := l.Balance(ctx, "a")
		to, _ := l.Balance(ctx, "b")
		assert.Equal(t, uint64(40), from)
		assert.Equal(t, uint64(60), to)
	})

	t.Run("insufficient funds", func(t *testing.T) {
		l := NewMemoryLedger()
		l.Seed("a", 10)
		assert.ErrorIs(t, l.Transfer(ctx, "a", "b", 11), ErrInsufficientFunds)
	})

	t.Run("zero amount", func(t *testing.T) {
		l := NewMemoryLedger()
		assert.ErrorIs(t, l.Transfer(ctx, "a", "b", 0), ErrZeroAmount)
	})

	t.Run("same account", func(t *testing.T) {
		l := NewMemoryLedger()
		l.Seed("a", 10)
		assert.ErrorIs(t, l.Transfer(ctx, "a", "a", 5), ErrSameAccount)
	})

	t.Run("destination overflow leaves source intact", func(t *testing.T) {
		l := NewMemoryLedger()
		l.Seed("a", 10)
		l.Seed("b", math.MaxUint64)

		assert.ErrorIs(t, l.Transfer(ctx, "a", "b", 5), numeric.ErrOverflow)

		from, _ := l.Balance(ctx, "a")
		assert.Equal(t, uint64(10), from)
	})
}

func TestMemoryLedgerMintBurn(t *testing.T) {
	ctx := context.Background()

	t.Run("mint", func(t *testing.T) {
		l := NewMemoryLedger()
		assert.NoError(t, l.Mint(ctx, "a", 50))
		bal, _ := l.Balance(ctx, "a")
		assert.Equal(t, uint64(50), bal)
	})

	t.Run("burn", func(t *testing.T) {
		l := NewMemoryLedger()
		l.Seed("a", 50)
		assert.NoError(t, l.Burn(ctx, "a", 20))
		bal, _ := l.Balance(ctx, "a")
		assert.Equal(t, uint64(30), bal)

		assert.ErrorIs(t, l.Burn(ctx, "a", 31), ErrInsufficientFunds)
	})
}

func TestMemoryLedgerConcurrency(t *testing.T) {
	ctx := context.Background()
	l := NewMemoryLedger()
	l.Seed("src", 1000)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				_ = l.Transfer(ctx, "src", "dst", 1)
			}
		}()
	}
	wg.Wait()

	src, _ := l.Balance(ctx, "src")
	dst, _ := l.Balance(ctx, "dst")
	assert.Equal(t, uint64(900), src)
	assert.Equal(t, uint64(100), dst)
}

func TestAccountNames(t *testing.T) {
	id := uuid.MustParse("11111111-2222-3333-4444-555555555555")

	assert.Equal(t, Account("actor:11111111-2222-3333-4444-555555555555"), ActorAccount(id))
	assert.Equal(t, Account("market:11111111-2222-3333-4444-555555555555:bets"), BetVault(id))
	assert.Equal(t, Account("market:11111111-2222-3333-4444-555555555555:liquidity"), LiquidityVault(id))
}
