package markets

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/predixio/settle/models"
)

// repository implements the Repository interface using GORM
type repository struct {
	db *gorm.DB
}

// NewRepository creates a new market repository
func NewRepository(db *gorm.DB) Repository {
	return &repository{
		db: db,
	}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{db: tx}
}

// GetAll returns markets with filters and pagination
func (r *repository) GetAll(ctx context.Context, filters *MarketFilters) ([]models.Market, int64, error) {
	var markets []models.Market
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Market{})
	query = r.applyFilters(query, filters)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = r.applySorting(query, filters)
	query = r.applyPagination(query, filters)
	query = query.Preload("Outcomes")

	err := query.Find(&markets).Error
	return markets, total, err
}

// GetByID returns a market by ID with its outcomes
func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Market, error) {
	var market models.Market
	err := r.db.WithContext(ctx).
		Preload("Outcomes", func(db *gorm.DB) *gorm.DB {
			return db.Order("outcome_index ASC")
		}).
		Where("id = ?", id).
		First(&market).Error
	if err != nil {
		return nil, err
	}
	return &market, nil
}

// GetBySlug returns a market by its slug
func (r *repository) GetBySlug(ctx context.Context, slug string) (*models.Market, error) {
	var market models.Market
	err := r.db.WithContext(ctx).
		Preload("Outcomes", func(db *gorm.DB) *gorm.DB {
			return db.Order("outcome_index ASC")
		}).
		Where("slug = ?", slug).
		First(&market).Error
	if err != nil {
		return nil, err
	}
	return &market, nil
}

// Create creates a new market with its outcomes
func (r *repository) Create(ctx context.Context, market *models.Market) error {
	return r.db.WithContext(ctx).Create(market).Error
}

// Update updates an existing market
func (r *repository) Update(ctx context.Context, market *models.Market) error {
	return r.db.WithContext(ctx).Save(market).Error
}

// CreatePool creates the liquidity pool backing a market
func (r *repository) CreatePool(ctx context.Context, pool *models.LiquidityPool) error {
	return r.db.WithContext(ctx).Create(pool).Error
}

// CreateLiquidityPosition creates the creator's seed LP position
func (r *repository) CreateLiquidityPosition(ctx context.Context, position *models.LiquidityPosition) error {
	return r.db.WithContext(ctx).Create(position).Error
}

func (r *repository) applyFilters(query *gorm.DB, filters *MarketFilters) *gorm.DB {
	if filters == nil {
		return query
	}

	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}

	if filters.Category != "" {
		query = query.Where("category = ?", filters.Category)
	}

	if filters.CreatorID != nil {
		query = query.Where("creator_id = ?", *filters.CreatorID)
	}

	if filters.Search != "" {
		searchTerm := "%" + strings.ToLower(filters.Search) + "%"
		query = query.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ?", searchTerm, searchTerm)
	}

	return query
}

func (r *repository) applySorting(query *gorm.DB, filters *MarketFilters) *gorm.DB {
	sortBy := filters.SortBy
	if sortBy == "" {
		sortBy = "created_at"
	}

	sortOrder := filters.SortOrder
	if sortOrder == "" {
		sortOrder = "desc"
	}

	// Validate sort fields to prevent SQL injection
	validSortFields := map[string]bool{
		"created_at": true,
		"updated_at": true,
		"close_time": true,
		"total_pool": true,
		"title":      true,
	}

	if !validSortFields[sortBy] {
		sortBy = "created_at"
	}

	if sortOrder != "asc" && sortOrder != "desc" {
		sortOrder = "desc"
	}

	return query.Order(fmt.Sprintf("%s %s", sortBy, sortOrder))
}

func (r *repository) applyPagination(query *gorm.DB, filters *MarketFilters) *gorm.DB {
	page := filters.Page
	if page < 1 {
		page = 1
	}

	perPage := filters.PerPage
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	offset := (page - 1) * perPage
	return query.Offset(offset).Limit(perPage)
}
