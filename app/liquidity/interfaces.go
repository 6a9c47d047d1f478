package liquidity

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/predixio/settle/models"
)

// Repository defines the data access interface for the liquidity module
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	GetMarket(ctx context.Context, id uuid.UUID) (*models.Market, error)

	// GetPoolForUpdate loads a market's pool under a row lock so deposits
	// and withdrawals against the same pool serialize.
	GetPoolForUpdate(ctx context.Context, marketID uuid.UUID) (*models.LiquidityPool, error)
	GetPool(ctx context.Context, marketID uuid.UUID) (*models.LiquidityPool, error)
	UpdatePool(ctx context.Context, pool *models.LiquidityPool) error

	GetPosition(ctx context.Context, poolID, providerID uuid.UUID) (*models.LiquidityPosition, error)
	SavePosition(ctx context.Context, position *models.LiquidityPosition) error
}

// Service defines the liquidity business logic interface
type Service interface {
	AddLiquidity(ctx context.Context, providerID uuid.UUID, req *AddLiquidityRequest) (*LiquidityResponse, error)
	RemoveLiquidity(ctx context.Context, providerID uuid.UUID, req *RemoveLiquidityRequest) (*WithdrawalResponse, error)
	GetPool(ctx context.Context, marketID uuid.UUID) (*PoolResponse, error)
	GetPosition(ctx context.Context, providerID, marketID uuid.UUID) (*PositionResponse, error)
}
