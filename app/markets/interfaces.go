package markets

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/predixio/settle/models"
)

// Repository defines the interface for market data access
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	GetAll(ctx context.Context, filters *MarketFilters) ([]models.Market, int64, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Market, error)
	GetBySlug(ctx context.Context, slug string) (*models.Market, error)
	Create(ctx context.Context, market *models.Market) error
	Update(ctx context.Context, market *models.Market) error

	CreatePool(ctx context.Context, pool *models.LiquidityPool) error
	CreateLiquidityPosition(ctx context.Context, position *models.LiquidityPosition) error
}

// Service defines the interface for market lifecycle logic
type Service interface {
	CreateMarket(ctx context.Context, creatorID uuid.UUID, req *CreateMarketRequest) (*MarketResponse, error)
	GetMarket(ctx context.Context, id uuid.UUID) (*MarketResponse, error)
	GetMarkets(ctx context.Context, filters *MarketFilters) (*MarketListResponse, error)
	PauseMarket(ctx context.Context, id uuid.UUID) (*MarketResponse, error)
	ResumeMarket(ctx context.Context, id uuid.UUID) (*MarketResponse, error)
	CancelMarket(ctx context.Context, actorID, id uuid.UUID) (*MarketResponse, error)
}
