package liquidity

import (
	"time"

	"github.com/google/uuid"

	"github.com/predixio/settle/models"
)

// AddLiquidityRequest is the payload for a deposit
type AddLiquidityRequest struct {
	MarketID string `json:"market_id" binding:"required,uuid"`
	AmountA  uint64 `json:"amount_a" binding:"required"`
	AmountB  uint64 `json:"amount_b" binding:"required"`

	// MinLpOut aborts the deposit if the minted shares fall short.
	MinLpOut uint64 `json:"min_lp_out"`
}

// RemoveLiquidityRequest is the payload for a withdrawal
type RemoveLiquidityRequest struct {
	MarketID string `json:"market_id" binding:"required,uuid"`
	Shares   uint64 `json:"shares" binding:"required"`

	// MinAmountOut aborts the withdrawal if the net payout falls short.
	MinAmountOut uint64 `json:"min_amount_out"`
}

// LiquidityResponse reports the outcome of a deposit
type LiquidityResponse struct {
	MarketID   uuid.UUID `json:"market_id"`
	ProviderID uuid.UUID `json:"provider_id"`

	SharesMinted uint64 `json:"shares_minted"`
	TotalShares  uint64 `json:"total_shares"`
	ConsumedA    uint64 `json:"consumed_a"`
	ConsumedB    uint64 `json:"consumed_b"`
	RefundedA    uint64 `json:"refunded_a"`
	RefundedB    uint64 `json:"refunded_b"`

	PoolReserveA  uint64 `json:"pool_reserve_a"`
	PoolReserveB  uint64 `json:"pool_reserve_b"`
	LpTokenSupply uint64 `json:"lp_token_supply"`
}

// WithdrawalResponse reports the outcome of a withdrawal
type WithdrawalResponse struct {
	MarketID   uuid.UUID `json:"market_id"`
	ProviderID uuid.UUID `json:"provider_id"`

	SharesBurned    uint64 `json:"shares_burned"`
	RemainingShares uint64 `json:"remaining_shares"`
	GrossAmount     uint64 `json:"gross_amount"`
	Fee             uint64 `json:"fee"`
	NetAmount       uint64 `json:"net_amount"`

	PoolReserveA  uint64 `json:"pool_reserve_a"`
	PoolReserveB  uint64 `json:"pool_reserve_b"`
	LpTokenSupply uint64 `json:"lp_token_supply"`
}

// PoolResponse is the API shape of a liquidity pool
type PoolResponse struct {
	ID                 uuid.UUID `json:"id"`
	MarketID           uuid.UUID `json:"market_id"`
	ReserveA           uint64    `json:"reserve_a"`
	ReserveB           uint64    `json:"reserve_b"`
	LpTokenSupply      uint64    `json:"lp_token_supply"`
	WithdrawalFeeBps   uint32    `json:"withdrawal_fee_bps"`
	TotalFeesCollected uint64    `json:"total_fees_collected"`
	ActiveProviders    uint32    `json:"active_providers"`
	CreatedAt          time.Time `json:"created_at"`
}

// PositionResponse is the API shape of a provider's LP position
type PositionResponse struct {
	ID         uuid.UUID `json:"id"`
	PoolID     uuid.UUID `json:"pool_id"`
	MarketID   uuid.UUID `json:"market_id"`
	ProviderID uuid.UUID `json:"provider_id"`
	Shares     uint64    `json:"shares"`
	DepositedA uint64    `json:"deposited_a"`
	DepositedB uint64    `json:"deposited_b"`
	Active     bool      `json:"active"`
	CreatedAt  time.Time `json:"created_at"`
}

// ToPoolResponse converts a pool entity to its API shape
func ToPoolResponse(p *models.LiquidityPool) *PoolResponse {
	return &PoolResponse{
		ID:                 p.ID,
		MarketID:           p.MarketID,
		ReserveA:           p.ReserveA,
		ReserveB:           p.ReserveB,
		LpTokenSupply:      p.LpTokenSupply,
		WithdrawalFeeBps:   p.WithdrawalFeeBps,
		TotalFeesCollected: p.TotalFeesCollected,
		ActiveProviders:    p.ActiveProviders,
		CreatedAt:          p.CreatedAt,
	}
}

// ToPositionResponse converts an LP position entity to its API shape
func ToPositionResponse(p *models.LiquidityPosition) *PositionResponse {
	return &PositionResponse{
		ID:         p.ID,
		PoolID:     p.PoolID,
		MarketID:   p.MarketID,
		ProviderID: p.ProviderID,
		Shares:     p.Shares,
		DepositedA: p.DepositedA,
		DepositedB: p.DepositedB,
		Active:     p.Active,
		CreatedAt:  p.CreatedAt,
	}
}
