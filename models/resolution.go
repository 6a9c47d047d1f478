package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MaxEvidenceLength bounds the oracle evidence payload in bytes.
const MaxEvidenceLength = 256

// MarketResolution is the immutable audit record written when an oracle
// resolves a market. One row per market.
type MarketResolution struct {
	ID             uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v4()" json:"id"`
	MarketID       uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"market_id"`
	ResolverID     uuid.UUID `gorm:"type:uuid;not null" json:"resolver_id"`
	WinningOutcome uint8     `gorm:"not null" json:"winning_outcome"`
	Evidence       []byte    `gorm:"type:bytea" json:"evidence,omitempty"`

	TotalPool      uint64 `gorm:"type:bigint;not null" json:"total_pool"`
	ProtocolFee    uint64 `gorm:"type:bigint;not null" json:"protocol_fee"`
	CreatorFee     uint64 `gorm:"type:bigint;not null;default:0" json:"creator_fee"`
	WinningPool    uint64 `gorm:"type:bigint;not null" json:"winning_pool"`
	PayoutRatioBps uint64 `gorm:"type:bigint;not null" json:"payout_ratio_bps"`

	ResolvedAt time.Time `gorm:"type:timestamptz;not null" json:"resolved_at"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (*MarketResolution) TableName() string {
	return "market_resolutions"
}

func (r *MarketResolution) BeforeCreate(_ *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// Validate performs entity-level validation.
func (r *MarketResolution) Validate() error {
	if r.MarketID == uuid.Nil {
		return ErrInvalidMarketID
	}
	if r.ResolverID == uuid.Nil {
		return ErrInvalidOracleID
	}
	if len(r.Evidence) > MaxEvidenceLength {
		return ErrEvidenceTooLarge
	}
	return nil
}
