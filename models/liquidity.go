package models

import (
	"math/bits"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	// MinLiquidityShares is the floor on the first LP mint.
	MinLiquidityShares = 1_000

	// DefaultWithdrawalFeeBps is charged on withdrawals from active markets.
	DefaultWithdrawalFeeBps = 30
)

// LiquidityPool holds the constant-product reserves backing a market.
// The invariant k = ReserveA * ReserveB needs 128 bits, stored as a
// hi/lo pair of unsigned words.
type LiquidityPool struct {
	ID       uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v4()" json:"id"`
	MarketID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"market_id"`

	ReserveA uint64 `gorm:"type:bigint;not null;default:0" json:"reserve_a"`
	ReserveB uint64 `gorm:"type:bigint;not null;default:0" json:"reserve_b"`
	KHi      uint64 `gorm:"type:bigint;not null;default:0" json:"-"`
	KLo      uint64 `gorm:"type:bigint;not null;default:0" json:"-"`

	LpTokenSupply      uint64 `gorm:"type:bigint;not null;default:0" json:"lp_token_supply"`
	WithdrawalFeeBps   uint32 `gorm:"not null;default:30" json:"withdrawal_fee_bps"`
	TotalFeesCollected uint64 `gorm:"type:bigint;not null;default:0" json:"total_fees_collected"`
	ActiveProviders    uint32 `gorm:"not null;default:0" json:"active_providers"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (*LiquidityPool) TableName() string {
	return "liquidity_pools"
}

func (p *LiquidityPool) BeforeCreate(_ *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// RecomputeK refreshes the stored invariant from the current reserves.
func (p *LiquidityPool) RecomputeK() {
	p.KHi, p.KLo = bits.Mul64(p.ReserveA, p.ReserveB)
}

// KBelow reports whether the current reserve product dropped below the
// stored invariant. Withdrawals shrink both sides proportionally, so a
// strictly smaller product than the recorded k after a deposit means the
// pool leaked value.
func (p *LiquidityPool) KBelow(hi, lo uint64) bool {
	curHi, curLo := bits.Mul64(p.ReserveA, p.ReserveB)
	if curHi != hi {
		return curHi < hi
	}
	return curLo < lo
}

// TotalReserves returns the pool balance available for withdrawal.
func (p *LiquidityPool) TotalReserves() uint64 {
	return p.ReserveA + p.ReserveB
}

// LiquidityPosition tracks one provider's LP share of one pool. Rows are
// never deleted; a fully withdrawn position stays behind with Active=false.
type LiquidityPosition struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v4()" json:"id"`
	PoolID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_lp_positions_pool_provider" json:"pool_id"`
	MarketID   uuid.UUID `gorm:"type:uuid;not null;index" json:"market_id"`
	ProviderID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_lp_positions_pool_provider;index" json:"provider_id"`

	Shares     uint64 `gorm:"type:bigint;not null;default:0" json:"shares"`
	DepositedA uint64 `gorm:"type:bigint;not null;default:0" json:"deposited_a"`
	DepositedB uint64 `gorm:"type:bigint;not null;default:0" json:"deposited_b"`
	Active     bool   `gorm:"not null;default:true" json:"active"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (*LiquidityPosition) TableName() string {
	return "liquidity_positions"
}

func (lp *LiquidityPosition) BeforeCreate(_ *gorm.DB) error {
	if lp.ID == uuid.Nil {
		lp.ID = uuid.New()
	}
	return nil
}

// Burn removes shares from the position, deactivating it when drained.
func (lp *LiquidityPosition) Burn(shares uint64) error {
	if !lp.Active {
		return ErrProviderInactive
	}
	if shares == 0 || shares > lp.Shares {
		return ErrInsufficientLpTokens
	}
	lp.Shares -= shares
	if lp.Shares == 0 {
		lp.Active = false
	}
	return nil
}
