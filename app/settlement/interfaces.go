package settlement

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/predixio/settle/models"
)

// Repository defines the data access interface for the settlement module
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	GetMarketForUpdate(ctx context.Context, id uuid.UUID) (*models.Market, error)
	UpdateMarket(ctx context.Context, market *models.Market) error

	CreateResolution(ctx context.Context, resolution *models.MarketResolution) error
	GetResolution(ctx context.Context, marketID uuid.UUID) (*models.MarketResolution, error)

	// GetPositionsForUpdate loads a bettor's positions under row locks so
	// the claimed flag check-then-set cannot race.
	GetPositionsForUpdate(ctx context.Context, marketID, bettorID uuid.UUID) ([]models.Position, error)
	SavePosition(ctx context.Context, position *models.Position) error
}

// Service defines the settlement business logic interface
type Service interface {
	ResolveMarket(ctx context.Context, resolverID uuid.UUID, req *ResolveMarketRequest) (*ResolutionResponse, error)
	ClaimWinnings(ctx context.Context, bettorID, marketID uuid.UUID) (*ClaimResponse, error)
	ClaimRefund(ctx context.Context, bettorID, marketID uuid.UUID) (*ClaimResponse, error)
	GetResolution(ctx context.Context, marketID uuid.UUID) (*ResolutionResponse, error)
}
