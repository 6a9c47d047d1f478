package betting

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/predixio/settle/models"
)

// Repository defines the data access interface for the betting module
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	// GetMarketForUpdate loads a market and its outcomes under a row lock
	// so concurrent bets against the same market serialize.
	GetMarketForUpdate(ctx context.Context, id uuid.UUID) (*models.Market, error)
	GetMarket(ctx context.Context, id uuid.UUID) (*models.Market, error)
	UpdateMarket(ctx context.Context, market *models.Market) error
	UpdateOutcome(ctx context.Context, outcome *models.Outcome) error

	GetPosition(ctx context.Context, marketID, bettorID uuid.UUID, outcomeIndex uint8) (*models.Position, error)
	GetPositionsByBettor(ctx context.Context, marketID, bettorID uuid.UUID) ([]models.Position, error)
	SavePosition(ctx context.Context, position *models.Position) error
}

// Service defines the betting business logic interface
type Service interface {
	PlaceBet(ctx context.Context, bettorID uuid.UUID, req *PlaceBetRequest) (*BetResponse, error)
	GetOdds(ctx context.Context, marketID uuid.UUID) (*OddsResponse, error)
	GetPositions(ctx context.Context, bettorID, marketID uuid.UUID) ([]PositionResponse, error)
}
