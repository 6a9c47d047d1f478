package liquidity

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/predixio/settle/models"
)

type repository struct {
	db *gorm.DB
}

// NewRepository creates a new liquidity repository
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{db: tx}
}

func (r *repository) GetMarket(ctx context.Context, id uuid.UUID) (*models.Market, error) {
	var market models.Market
	err := r.db.WithContext(ctx).First(&market, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &market, nil
}

func (r *repository) GetPoolForUpdate(ctx context.Context, marketID uuid.UUID) (*models.LiquidityPool, error) {
	var pool models.LiquidityPool
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&pool, "market_id = ?", marketID).Error
	if err != nil {
		return nil, err
	}
	return &pool, nil
}

func (r *repository) GetPool(ctx context.Context, marketID uuid.UUID) (*models.LiquidityPool, error) {
	var pool models.LiquidityPool
	err := r.db.WithContext(ctx).First(&pool, "market_id = ?", marketID).Error
	if err != nil {
		return nil, err
	}
	return &pool, nil
}

func (r *repository) UpdatePool(ctx context.Context, pool *models.LiquidityPool) error {
	return r.db.WithContext(ctx).Save(pool).Error
}

func (r *repository) GetPosition(ctx context.Context, poolID, providerID uuid.UUID) (*models.LiquidityPosition, error) {
	var position models.LiquidityPosition
	err := r.db.WithContext(ctx).
		First(&position, "pool_id = ? AND provider_id = ?", poolID, providerID).Error
	if err != nil {
		return nil, err
	}
	return &position, nil
}

func (r *repository) SavePosition(ctx context.Context, position *models.LiquidityPosition) error {
	return r.db.WithContext(ctx).Save(position).Error
}
