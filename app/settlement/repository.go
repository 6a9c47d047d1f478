package settlement

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

// NewRepository creates a new settlement repository
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{db: tx}
}

func (r *repository) GetMarketForUpdate(ctx context.Context, id uuid.UUID) (*models.Market, error) {
	var market models.Market
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Preload("Outcomes", func(db *gorm.DB) *gorm.DB {
			return db.Order("outcome_index ASC")
		}).
		First(&market, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &market, nil
}

func (r *repository) UpdateMarket(ctx context.Context, market *models.Market) error {
	return r.db.WithContext(ctx).Omit("Outcomes").Save(market).Error
}

func (r *repository) CreateResolution(ctx context.Context, resolution *models.MarketResolution) error {
	return r.db.WithContext(ctx).Create(resolution).Error
}

func (r *repository) GetResolution(ctx context.Context, marketID uuid.UUID) (*models.MarketResolution, error) {
	var resolution models.MarketResolution
	err := r.db.WithContext(ctx).First(&resolution, "market_id = ?", marketID).Error
	if err != nil {
		return nil, err
	}
	return &resolution, nil
}

func (r *repository) GetPositionsForUpdate(ctx context.Context, marketID, bettorID uuid.UUID) ([]models.Position, error) {
	var positions []models.Position
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("market_id = ? AND bettor_id = ?", marketID, bettorID).
		Order("outcome_index ASC").
		Find(&positions).Error
	if err != nil {
		return nil, err
	}
	return positions, nil
}

func (r *repository) SavePosition(ctx context.Context, position *models.Position) error {
	return r.db.WithContext(ctx).Save(position).Error
}
