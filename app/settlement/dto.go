package settlement

import (
	"time"

	"github.com/google/uuid"

	"github.com/predixio/settle/models"
)

// ResolveMarketRequest is the oracle's resolution payload
type ResolveMarketRequest struct {
	MarketID       string `json:"market_id" binding:"required,uuid"`
	WinningOutcome uint8  `json:"winning_outcome"`

	// Evidence is an opaque reference backing the resolution, capped at
	// 256 bytes.
	Evidence string `json:"evidence" binding:"max=256"`
}

// ResolutionResponse is the API shape of a market resolution
type ResolutionResponse struct {
	MarketID       uuid.UUID `json:"market_id"`
	ResolverID     uuid.UUID `json:"resolver_id"`
	WinningOutcome uint8     `json:"winning_outcome"`
	Evidence       string    `json:"evidence,omitempty"`
	TotalPool      uint64    `json:"total_pool"`
	ProtocolFee    uint64    `json:"protocol_fee"`
	CreatorFee     uint64    `json:"creator_fee"`
	WinningPool    uint64    `json:"winning_pool"`
	PayoutRatioBps uint64    `json:"payout_ratio_bps"`
	ResolvedAt     time.Time `json:"resolved_at"`
}

// ClaimResponse reports a settled claim or refund
type ClaimResponse struct {
	MarketID         uuid.UUID `json:"market_id"`
	BettorID         uuid.UUID `json:"bettor_id"`
	Payout           uint64    `json:"payout"`
	PositionsSettled int       `json:"positions_settled"`
	ClaimedAt        time.Time `json:"claimed_at"`
}

// ToResolutionResponse converts a resolution entity to its API shape
func ToResolutionResponse(r *models.MarketResolution) *ResolutionResponse {
	return &ResolutionResponse{
		MarketID:       r.MarketID,
		ResolverID:     r.ResolverID,
		WinningOutcome: r.WinningOutcome,
		Evidence:       string(r.Evidence),
		TotalPool:      r.TotalPool,
		ProtocolFee:    r.ProtocolFee,
		CreatorFee:     r.CreatorFee,
		WinningPool:    r.WinningPool,
		PayoutRatioBps: r.PayoutRatioBps,
		ResolvedAt:     r.ResolvedAt,
	}
}
