package markets

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/predixio/settle/models"
)

// CreateMarketRequest is the payload for creating a market
type CreateMarketRequest struct {
	Slug             string   `json:"slug" binding:"required,max=32"`
	Title            string   `json:"title" binding:"required,max=128"`
	Description      string   `json:"description" binding:"max=512"`
	Category         string   `json:"category" binding:"max=32"`
	OracleID         string   `json:"oracle_id" binding:"required,uuid"`
	ResolutionSource string   `json:"resolution_source" binding:"max=128"`
	CloseTime        string   `json:"close_time" binding:"required"`
	Outcomes         []string `json:"outcomes" binding:"required,min=2,dive,required,max=64"`

	CreatorFeeBps   *uint32 `json:"creator_fee_bps,omitempty"`
	PlatformFeeBps  *uint32 `json:"platform_fee_bps,omitempty"`
	MinBetAmount    *uint64 `json:"min_bet_amount,omitempty"`
	MaxBetAmount    *uint64 `json:"max_bet_amount,omitempty"`
	MaxPayoutPerBet *uint64 `json:"max_payout_per_bet,omitempty"`

	// InitialLiquidity seeds the market's AMM pool, split evenly across
	// both reserves. Must be at least the configured minimum.
	InitialLiquidity uint64 `json:"initial_liquidity" binding:"required"`
}

// CancelMarketRequest carries the audit reason for a cancellation
type CancelMarketRequest struct {
	Reason string `json:"reason" binding:"max=256"`
}

// MarketFilters represents list query parameters
type MarketFilters struct {
	Status    *models.MarketStatus `form:"status"`
	Category  string               `form:"category"`
	CreatorID *uuid.UUID           `form:"creator_id"`
	Search    string               `form:"search"`
	SortBy    string               `form:"sort_by"`
	SortOrder string               `form:"sort_order"`
	Page      int                  `form:"page"`
	PerPage   int                  `form:"per_page"`
}

// OutcomeResponse is the API shape of one market outcome
type OutcomeResponse struct {
	OutcomeIndex       uint8           `json:"outcome_index"`
	Label              string          `json:"label"`
	TotalAmount        uint64          `json:"total_amount"`
	BetCount           uint32          `json:"bet_count"`
	CurrentOddsBps     uint64          `json:"current_odds_bps"`
	ImpliedProbability decimal.Decimal `json:"implied_probability"`
}

// MarketResponse is the API shape of a market
type MarketResponse struct {
	ID               uuid.UUID           `json:"id"`
	Slug             string              `json:"slug"`
	Title            string              `json:"title"`
	Description      string              `json:"description"`
	Category         string              `json:"category"`
	CreatorID        uuid.UUID           `json:"creator_id"`
	OracleID         uuid.UUID           `json:"oracle_id"`
	ResolutionSource string              `json:"resolution_source"`
	Status           models.MarketStatus `json:"status"`
	CloseTime        time.Time           `json:"close_time"`
	CreatorFeeBps    uint32              `json:"creator_fee_bps"`
	PlatformFeeBps   uint32              `json:"platform_fee_bps"`
	MinBetAmount     uint64              `json:"min_bet_amount"`
	MaxBetAmount     uint64              `json:"max_bet_amount"`
	MaxPayoutPerBet  uint64              `json:"max_payout_per_bet"`
	TotalPool        uint64              `json:"total_pool"`
	TotalBets        uint32              `json:"total_bets"`
	WinningOutcome   *uint8              `json:"winning_outcome,omitempty"`
	PayoutRatioBps   uint64              `json:"payout_ratio_bps"`
	ResolvedAt       *time.Time          `json:"resolved_at,omitempty"`
	CancelledAt      *time.Time          `json:"cancelled_at,omitempty"`
	CreatedAt        time.Time           `json:"created_at"`
	Outcomes         []OutcomeResponse   `json:"outcomes"`
}

// MarketListResponse is a paginated market list
type MarketListResponse struct {
	Markets []MarketResponse `json:"markets"`
	Total   int64            `json:"total"`
	Page    int              `json:"page"`
	PerPage int              `json:"per_page"`
}

// ToMarketResponse converts a market entity to its API shape
func ToMarketResponse(m *models.Market) *MarketResponse {
	resp := &MarketResponse{
		ID:               m.ID,
		Slug:             m.Slug,
		Title:            m.Title,
		Description:      m.Description,
		Category:         m.Category,
		CreatorID:        m.CreatorID,
		OracleID:         m.OracleID,
		ResolutionSource: m.ResolutionSource,
		Status:           m.Status,
		CloseTime:        m.CloseTime,
		CreatorFeeBps:    m.CreatorFeeBps,
		PlatformFeeBps:   m.PlatformFeeBps,
		MinBetAmount:     m.MinBetAmount,
		MaxBetAmount:     m.MaxBetAmount,
		MaxPayoutPerBet:  m.MaxPayoutPerBet,
		TotalPool:        m.TotalPool,
		TotalBets:        m.TotalBets,
		WinningOutcome:   m.WinningOutcome,
		PayoutRatioBps:   m.PayoutRatioBps,
		ResolvedAt:       m.ResolvedAt,
		CancelledAt:      m.CancelledAt,
		CreatedAt:        m.CreatedAt,
		Outcomes:         make([]OutcomeResponse, 0, len(m.Outcomes)),
	}

	for i := range m.Outcomes {
		o := &m.Outcomes[i]
		resp.Outcomes = append(resp.Outcomes, OutcomeResponse{
			OutcomeIndex:       o.OutcomeIndex,
			Label:              o.Label,
			TotalAmount:        o.TotalAmount,
			BetCount:           o.BetCount,
			CurrentOddsBps:     o.CurrentOddsBps,
			ImpliedProbability: impliedProbability(o.CurrentOddsBps),
		})
	}

	return resp
}

// impliedProbability derives the display probability from bps odds.
// Informational only; never feeds settlement math.
func impliedProbability(oddsBps uint64) decimal.Decimal {
	if oddsBps == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(models.BpsDenominator)).
		Div(decimal.NewFromUint64(oddsBps)).
		Round(4)
}
