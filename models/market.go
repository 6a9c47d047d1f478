package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/predixio/settle/internal/validator"
)

// MarketStatus represents the current lifecycle state of a market
type MarketStatus string

const (
	MarketStatusActive    MarketStatus = "active"
	MarketStatusPaused    MarketStatus = "paused"
	MarketStatusResolved  MarketStatus = "resolved"
	MarketStatusCancelled MarketStatus = "cancelled"
)

const (
	// BpsDenominator is the basis-point scale used for all fees and odds.
	BpsDenominator = 10_000

	MaxCreatorFeeBps  = 1_000
	MaxPlatformFeeBps = 500

	MaxSlugLength             = 32
	MaxTitleLength            = 128
	MaxDescriptionLength      = 512
	MaxCategoryLength         = 32
	MaxResolutionSourceLength = 128

	// MaxMarketHorizon bounds how far in the future a market may close.
	MaxMarketHorizon = 365 * 24 * time.Hour

	// MinInitialLiquidity is the smallest AMM seed accepted at creation.
	MinInitialLiquidity = 1_000
)

// Outcome is one side of a market with its running parimutuel totals.
// OutcomeIndex is stable for the life of the market and is what bets,
// resolutions and claims refer to.
type Outcome struct {
	ID             uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v4()" json:"id"`
	MarketID       uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_outcomes_market_index" json:"market_id"`
	OutcomeIndex   uint8     `gorm:"not null;uniqueIndex:idx_outcomes_market_index" json:"outcome_index"`
	Label          string    `gorm:"type:varchar(64);not null" json:"label"`
	TotalAmount    uint64    `gorm:"type:bigint;not null;default:0" json:"total_amount"`
	BetCount       uint32    `gorm:"not null;default:0" json:"bet_count"`
	CurrentOddsBps uint64    `gorm:"type:bigint;not null;default:10000" json:"current_odds_bps"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (*Outcome) TableName() string {
	return "outcomes"
}

func (o *Outcome) BeforeCreate(_ *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

// Market represents a prediction market. All monetary fields are unsigned
// base units; all fee and odds fields are basis points.
type Market struct {
	ID               uuid.UUID    `gorm:"type:uuid;primary_key;default:uuid_generate_v4()" json:"id"`
	Slug             string       `gorm:"type:varchar(32);not null;uniqueIndex" json:"slug"`
	Title            string       `gorm:"type:varchar(128);not null" json:"title"`
	Description      string       `gorm:"type:varchar(512);not null" json:"description"`
	Category         string       `gorm:"type:varchar(32);not null;index" json:"category"`
	CreatorID        uuid.UUID    `gorm:"type:uuid;not null;index" json:"creator_id"`
	OracleID         uuid.UUID    `gorm:"type:uuid;not null" json:"oracle_id"`
	ResolutionSource string       `gorm:"type:varchar(128);not null" json:"resolution_source"`
	Status           MarketStatus `gorm:"type:varchar(20);not null;default:'active';index" json:"status"`
	CloseTime        time.Time    `gorm:"type:timestamptz;not null;index" json:"close_time"`

	CreatorFeeBps  uint32 `gorm:"not null;default:0" json:"creator_fee_bps"`
	PlatformFeeBps uint32 `gorm:"not null;default:0" json:"platform_fee_bps"`

	MinBetAmount    uint64 `gorm:"type:bigint;not null;default:1" json:"min_bet_amount"`
	MaxBetAmount    uint64 `gorm:"type:bigint;not null;default:0" json:"max_bet_amount"`
	MaxPayoutPerBet uint64 `gorm:"type:bigint;not null;default:0" json:"max_payout_per_bet"`

	TotalPool uint64     `gorm:"type:bigint;not null;default:0" json:"total_pool"`
	TotalBets uint32     `gorm:"not null;default:0" json:"total_bets"`
	LastBetAt *time.Time `gorm:"type:timestamptz" json:"last_bet_at,omitempty"`

	WinningOutcome *uint8     `json:"winning_outcome,omitempty"`
	PayoutRatioBps uint64     `gorm:"type:bigint;not null;default:0" json:"payout_ratio_bps"`
	TotalClaimed   uint64     `gorm:"type:bigint;not null;default:0" json:"total_claimed"`
	ResolvedAt     *time.Time `gorm:"type:timestamptz" json:"resolved_at,omitempty"`
	CancelledAt    *time.Time `gorm:"type:timestamptz" json:"cancelled_at,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	Outcomes []Outcome `gorm:"foreignKey:MarketID;constraint:OnDelete:CASCADE" json:"outcomes,omitempty"`
}

func (*Market) TableName() string {
	return "markets"
}

func (m *Market) BeforeCreate(_ *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// IsTerminal reports whether the market reached a final state.
func (m *Market) IsTerminal() bool {
	return m.Status == MarketStatusResolved || m.Status == MarketStatusCancelled
}

// CanBet checks whether a bet placed at now is accepted.
func (m *Market) CanBet(now time.Time) error {
	if m.Status != MarketStatusActive {
		return ErrMarketNotActive
	}
	if !now.Before(m.CloseTime) {
		return ErrMarketExpired
	}
	return nil
}

// Pause moves an active market to paused.
func (m *Market) Pause() error {
	if m.Status != MarketStatusActive {
		return ErrMarketNotActive
	}
	m.Status = MarketStatusPaused
	return nil
}

// Resume moves a paused market back to active.
func (m *Market) Resume() error {
	if m.Status != MarketStatusPaused {
		return ErrMarketNotPaused
	}
	m.Status = MarketStatusActive
	return nil
}

// CanResolve checks the resolution preconditions at now: the market must
// be active and past its close time.
func (m *Market) CanResolve(now time.Time) error {
	switch m.Status {
	case MarketStatusResolved:
		return ErrMarketAlreadyResolved
	case MarketStatusActive:
	default:
		return ErrMarketNotActive
	}
	if now.Before(m.CloseTime) {
		return ErrMarketNotExpired
	}
	return nil
}

// Resolve records the winning outcome. Pool accounting (fee sweep, payout
// ratio) is applied by the settlement service before this market is saved.
func (m *Market) Resolve(winningOutcome uint8, now time.Time) error {
	if err := m.CanResolve(now); err != nil {
		return err
	}
	if int(winningOutcome) >= len(m.Outcomes) {
		return ErrInvalidOutcome
	}
	m.Status = MarketStatusResolved
	m.WinningOutcome = &winningOutcome
	m.ResolvedAt = &now
	return nil
}

// Cancel voids the market. Allowed from active or paused, and only while
// the close time has not passed; after that the market must go through
// resolution so losing stakes cannot be converted into refunds.
func (m *Market) Cancel(now time.Time) error {
	if m.IsTerminal() {
		return ErrMarketTerminal
	}
	if !now.Before(m.CloseTime) {
		return ErrMarketExpired
	}
	m.Status = MarketStatusCancelled
	m.CancelledAt = &now
	return nil
}

// OutcomeAt returns the outcome with the given index, or nil.
func (m *Market) OutcomeAt(index uint8) *Outcome {
	for i := range m.Outcomes {
		if m.Outcomes[i].OutcomeIndex == index {
			return &m.Outcomes[i]
		}
	}
	return nil
}

// ValidateBetAmount checks a stake against the market's bounds.
// MaxBetAmount of zero means no upper bound.
func (m *Market) ValidateBetAmount(amount uint64) error {
	if amount == 0 {
		return ErrInvalidBetAmount
	}
	if amount < m.MinBetAmount {
		return ErrBetBelowMinimum
	}
	if m.MaxBetAmount > 0 && amount > m.MaxBetAmount {
		return ErrBetAboveMaximum
	}
	return nil
}

// Validate performs entity-level validation for creation.
func (m *Market) Validate(now time.Time) error {
	if len(m.Slug) > MaxSlugLength || !validator.IsSlug(m.Slug) {
		return ErrInvalidMarketSlug
	}
	if m.Title == "" || len(m.Title) > MaxTitleLength {
		return ErrInvalidMarketTitle
	}
	if len(m.Description) > MaxDescriptionLength {
		return ErrDescriptionTooLong
	}
	if len(m.Category) > MaxCategoryLength {
		return ErrCategoryTooLong
	}
	if len(m.ResolutionSource) > MaxResolutionSourceLength {
		return ErrResolutionSourceTooLong
	}
	if m.CreatorID == uuid.Nil {
		return ErrInvalidCreatorID
	}
	if m.OracleID == uuid.Nil {
		return ErrInvalidOracleID
	}
	if !m.CloseTime.After(now) {
		return ErrInvalidCloseTime
	}
	if m.CloseTime.After(now.Add(MaxMarketHorizon)) {
		return ErrHorizonTooFar
	}
	if m.CreatorFeeBps > MaxCreatorFeeBps {
		return ErrCreatorFeeTooHigh
	}
	if m.PlatformFeeBps > MaxPlatformFeeBps {
		return ErrPlatformFeeTooHigh
	}
	if m.MinBetAmount == 0 {
		return ErrInvalidBetBounds
	}
	if m.MaxBetAmount > 0 && m.MaxBetAmount < m.MinBetAmount {
		return ErrInvalidBetBounds
	}
	if len(m.Outcomes) < 2 {
		return ErrInvalidOutcomeCount
	}
	labels := make([]string, 0, len(m.Outcomes))
	for i := range m.Outcomes {
		if m.Outcomes[i].Label == "" || len(m.Outcomes[i].Label) > 64 {
			return ErrInvalidOutcomeLabel
		}
		labels = append(labels, m.Outcomes[i].Label)
	}
	if !validator.NoDuplicates(labels) {
		return ErrInvalidOutcomeLabel
	}
	return nil
}
