package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Position accumulates a bettor's stake on one outcome of one market.
// There is at most one row per (market, bettor, outcome); repeated bets on
// the same outcome add to Amount. Claimed is monotonic: once set it never
// clears, which is what makes claims and refunds exactly-once.
type Position struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v4()" json:"id"`
	MarketID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_positions_market_bettor_outcome" json:"market_id"`
	BettorID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_positions_market_bettor_outcome;index" json:"bettor_id"`
	OutcomeIndex uint8     `gorm:"not null;uniqueIndex:idx_positions_market_bettor_outcome" json:"outcome_index"`

	Amount          uint64 `gorm:"type:bigint;not null;default:0" json:"amount"`
	OddsAtBetBps    uint64 `gorm:"type:bigint;not null;default:0" json:"odds_at_bet_bps"`
	PotentialPayout uint64 `gorm:"type:bigint;not null;default:0" json:"potential_payout"`

	Claimed       bool       `gorm:"not null;default:false" json:"claimed"`
	ClaimedAmount uint64     `gorm:"type:bigint;not null;default:0" json:"claimed_amount"`
	ClaimedAt     *time.Time `gorm:"type:timestamptz" json:"claimed_at,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (*Position) TableName() string {
	return "positions"
}

func (p *Position) BeforeCreate(_ *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// AddStake folds a new bet into the position. Amount accumulates;
// OddsAtBetBps and PotentialPayout are informational snapshots of the
// most recent bet only. Settlement reads Amount and ignores both.
func (p *Position) AddStake(amount, oddsBps, potentialPayout uint64) {
	p.Amount += amount
	p.OddsAtBetBps = oddsBps
	p.PotentialPayout = potentialPayout
}

// Claim marks the position settled with the given payout. A position can
// be claimed exactly once, winnings or refund alike.
func (p *Position) Claim(payout uint64, now time.Time) error {
	if p.Claimed {
		return ErrAlreadyClaimed
	}
	p.Claimed = true
	p.ClaimedAmount = payout
	p.ClaimedAt = &now
	return nil
}

// Validate performs entity-level validation.
func (p *Position) Validate() error {
	if p.MarketID == uuid.Nil {
		return ErrInvalidMarketID
	}
	if p.BettorID == uuid.Nil {
		return ErrInvalidPosition
	}
	if p.Amount == 0 {
		return ErrInvalidBetAmount
	}
	return nil
}
