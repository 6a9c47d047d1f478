package betting

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/predixio/settle/models"
)

// PlaceBetRequest is the payload for placing a bet
type PlaceBetRequest struct {
	MarketID     string `json:"market_id" binding:"required,uuid"`
	OutcomeIndex uint8  `json:"outcome_index"`
	Amount       uint64 `json:"amount" binding:"required"`
}

// BetResponse reports the accepted stake and the quote captured for it
type BetResponse struct {
	MarketID        uuid.UUID `json:"market_id"`
	BettorID        uuid.UUID `json:"bettor_id"`
	OutcomeIndex    uint8     `json:"outcome_index"`
	Amount          uint64    `json:"amount"`
	OddsAtBetBps    uint64    `json:"odds_at_bet_bps"`
	PotentialPayout uint64    `json:"potential_payout"`

	// Cumulative position after this stake landed.
	PositionAmount uint64 `json:"position_amount"`

	MarketTotalPool uint64    `json:"market_total_pool"`
	PlacedAt        time.Time `json:"placed_at"`
}

// OutcomeOdds is one outcome's live quote
type OutcomeOdds struct {
	OutcomeIndex       uint8           `json:"outcome_index"`
	Label              string          `json:"label"`
	TotalAmount        uint64          `json:"total_amount"`
	BetCount           uint32          `json:"bet_count"`
	CurrentOddsBps     uint64          `json:"current_odds_bps"`
	ImpliedProbability decimal.Decimal `json:"implied_probability"`
}

// OddsResponse is a snapshot of a market's odds board
type OddsResponse struct {
	MarketID   uuid.UUID     `json:"market_id"`
	TotalPool  uint64        `json:"total_pool"`
	TotalBets  uint32        `json:"total_bets"`
	Outcomes   []OutcomeOdds `json:"outcomes"`
	CapturedAt time.Time     `json:"captured_at"`
}

// PositionResponse is the API shape of one bettor position
type PositionResponse struct {
	ID              uuid.UUID  `json:"id"`
	MarketID        uuid.UUID  `json:"market_id"`
	OutcomeIndex    uint8      `json:"outcome_index"`
	Amount          uint64     `json:"amount"`
	OddsAtBetBps    uint64     `json:"odds_at_bet_bps"`
	PotentialPayout uint64     `json:"potential_payout"`
	Claimed         bool       `json:"claimed"`
	ClaimedAmount   uint64     `json:"claimed_amount"`
	ClaimedAt       *time.Time `json:"claimed_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

// ToOddsResponse builds the odds board from a market snapshot
func ToOddsResponse(m *models.Market, capturedAt time.Time) *OddsResponse {
	resp := &OddsResponse{
		MarketID:   m.ID,
		TotalPool:  m.TotalPool,
		TotalBets:  m.TotalBets,
		Outcomes:   make([]OutcomeOdds, 0, len(m.Outcomes)),
		CapturedAt: capturedAt,
	}
	for i := range m.Outcomes {
		o := &m.Outcomes[i]
		resp.Outcomes = append(resp.Outcomes, OutcomeOdds{
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

// ToPositionResponse converts a position entity to its API shape
func ToPositionResponse(p *models.Position) PositionResponse {
	return PositionResponse{
		ID:              p.ID,
		MarketID:        p.MarketID,
		OutcomeIndex:    p.OutcomeIndex,
		Amount:          p.Amount,
		OddsAtBetBps:    p.OddsAtBetBps,
		PotentialPayout: p.PotentialPayout,
		Claimed:         p.Claimed,
		ClaimedAmount:   p.ClaimedAmount,
		ClaimedAt:       p.ClaimedAt,
		CreatedAt:       p.CreatedAt,
	}
}

func impliedProbability(oddsBps uint64) decimal.Decimal {
	if oddsBps == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(models.BpsDenominator)).
		Div(decimal.NewFromUint64(oddsBps)).
		Round(4)
}
