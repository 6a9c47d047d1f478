package markets

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/predixio/settle/internal/ledger"
	"github.com/predixio/settle/internal/logger"
	"github.com/predixio/settle/internal/numeric"
	"github.com/predixio/settle/internal/sanitizer"
	"github.com/predixio/settle/models"
)

// service implements the Service interface
type service struct {
	db        *gorm.DB
	repo      Repository
	config    *Config
	ledger    ledger.Ledger
	clock     ledger.Clock
	sanitizer sanitizer.HTMLStripperer
	log       logger.Logger
	validator *validator.Validate
}

// NewService creates a new market lifecycle service
func NewService(
	db *gorm.DB,
	repo Repository,
	config *Config,
	ldg ledger.Ledger,
	clock ledger.Clock,
	strip sanitizer.HTMLStripperer,
	log logger.Logger,
) Service {
	return &service{
		db:        db,
		repo:      repo,
		config:    config,
		ledger:    ldg,
		clock:     clock,
		sanitizer: strip,
		log:       log,
		validator: validator.New(),
	}
}

// CreateMarket validates and persists a new market, escrows the creator's
// initial liquidity and seeds the AMM pool with it, half per reserve.
func (s *service) CreateMarket(ctx context.Context, creatorID uuid.UUID, req *CreateMarketRequest) (*MarketResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, fmt.Errorf("validation error: %w", err)
	}

	now := s.clock.Now()

	closeTime, err := time.Parse(time.RFC3339, req.CloseTime)
	if err != nil {
		return nil, models.ErrInvalidCloseTime
	}
	if closeTime.Before(now.Add(s.config.MinMarketDuration)) {
		return nil, models.ErrInvalidCloseTime
	}

	oracleID, err := uuid.Parse(req.OracleID)
	if err != nil {
		return nil, models.ErrInvalidOracleID
	}

	if len(req.Outcomes) > s.config.MaxOutcomes {
		return nil, models.ErrInvalidOutcomeCount
	}

	if req.InitialLiquidity < s.config.MinInitialLiquidity {
		return nil, models.ErrInsufficientLiquidity
	}

	market := s.buildMarket(creatorID, oracleID, closeTime, req)
	if err := market.Validate(now); err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repoTx := s.repo.WithTx(tx)
		ledgerTx := s.ledger.WithTx(tx)

		if err := repoTx.Create(ctx, market); err != nil {
			return fmt.Errorf("create market: %w", err)
		}

		pool, position, err := s.seedPool(market, creatorID, req.InitialLiquidity)
		if err != nil {
			return err
		}
		if err := repoTx.CreatePool(ctx, pool); err != nil {
			return fmt.Errorf("create liquidity pool: %w", err)
		}
		position.PoolID = pool.ID
		if err := repoTx.CreateLiquidityPosition(ctx, position); err != nil {
			return fmt.Errorf("create seed position: %w", err)
		}

		if err := ledgerTx.Transfer(ctx,
			ledger.ActorAccount(creatorID),
			ledger.LiquidityVault(market.ID),
			req.InitialLiquidity); err != nil {
			return fmt.Errorf("escrow initial liquidity: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("market created", map[string]interface{}{
		"market_id": market.ID,
		"slug":      market.Slug,
		"creator":   creatorID,
	})

	return ToMarketResponse(market), nil
}

func (s *service) buildMarket(creatorID, oracleID uuid.UUID, closeTime time.Time, req *CreateMarketRequest) *models.Market {
	market := &models.Market{
		Slug:             req.Slug,
		Title:            s.sanitizer.StripHTML(req.Title),
		Description:      s.sanitizer.StripHTML(req.Description),
		Category:         s.sanitizer.StripHTML(req.Category),
		CreatorID:        creatorID,
		OracleID:         oracleID,
		ResolutionSource: s.sanitizer.StripHTML(req.ResolutionSource),
		Status:           models.MarketStatusActive,
		CloseTime:        closeTime,
		CreatorFeeBps:    s.config.DefaultCreatorFeeBps,
		PlatformFeeBps:   s.config.DefaultPlatformFeeBps,
		MinBetAmount:     s.config.DefaultMinBetAmount,
		MaxBetAmount:     s.config.DefaultMaxBetAmount,
		MaxPayoutPerBet:  s.config.DefaultMaxPayoutPerBet,
	}

	if req.CreatorFeeBps != nil {
		market.CreatorFeeBps = *req.CreatorFeeBps
	}
	if req.PlatformFeeBps != nil {
		market.PlatformFeeBps = *req.PlatformFeeBps
	}
	if req.MinBetAmount != nil {
		market.MinBetAmount = *req.MinBetAmount
	}
	if req.MaxBetAmount != nil {
		market.MaxBetAmount = *req.MaxBetAmount
	}
	if req.MaxPayoutPerBet != nil {
		market.MaxPayoutPerBet = *req.MaxPayoutPerBet
	}

	for i, label := range req.Outcomes {
		market.Outcomes = append(market.Outcomes, models.Outcome{
			OutcomeIndex:   uint8(i),
			Label:          s.sanitizer.StripHTML(label),
			CurrentOddsBps: models.BpsDenominator,
		})
	}

	return market
}

// seedPool splits the initial liquidity across both reserves and mints
// the creator's first LP shares.
func (s *service) seedPool(market *models.Market, creatorID uuid.UUID, amount uint64) (*models.LiquidityPool, *models.LiquidityPosition, error) {
	reserveA := amount / 2
	reserveB := amount - reserveA

	shares := numeric.Max(models.MinLiquidityShares, numeric.SqrtProduct(reserveA, reserveB))

	pool := &models.LiquidityPool{
		MarketID:         market.ID,
		ReserveA:         reserveA,
		ReserveB:         reserveB,
		LpTokenSupply:    shares,
		WithdrawalFeeBps: models.DefaultWithdrawalFeeBps,
		ActiveProviders:  1,
	}
	pool.RecomputeK()

	position := &models.LiquidityPosition{
		MarketID:   market.ID,
		ProviderID: creatorID,
		Shares:     shares,
		DepositedA: reserveA,
		DepositedB: reserveB,
		Active:     true,
	}

	return pool, position, nil
}

// GetMarket returns one market
func (s *service) GetMarket(ctx context.Context, id uuid.UUID) (*MarketResponse, error) {
	market, err := s.loadMarket(ctx, id)
	if err != nil {
		return nil, err
	}
	return ToMarketResponse(market), nil
}

// GetMarkets returns a filtered market list
func (s *service) GetMarkets(ctx context.Context, filters *MarketFilters) (*MarketListResponse, error) {
	markets, total, err := s.repo.GetAll(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("list markets: %w", err)
	}

	resp := &MarketListResponse{
		Markets: make([]MarketResponse, 0, len(markets)),
		Total:   total,
		Page:    1,
		PerPage: 20,
	}
	if filters != nil {
		if filters.Page > 0 {
			resp.Page = filters.Page
		}
		if filters.PerPage > 0 {
			resp.PerPage = filters.PerPage
		}
	}
	for i := range markets {
		resp.Markets = append(resp.Markets, *ToMarketResponse(&markets[i]))
	}
	return resp, nil
}

// PauseMarket suspends betting on an active market
func (s *service) PauseMarket(ctx context.Context, id uuid.UUID) (*MarketResponse, error) {
	return s.transition(ctx, id, func(m *models.Market) error { return m.Pause() })
}

// ResumeMarket reopens a paused market
func (s *service) ResumeMarket(ctx context.Context, id uuid.UUID) (*MarketResponse, error) {
	return s.transition(ctx, id, func(m *models.Market) error { return m.Resume() })
}

// CancelMarket voids a market. Only its creator or oracle may cancel.
func (s *service) CancelMarket(ctx context.Context, actorID, id uuid.UUID) (*MarketResponse, error) {
	market, err := s.loadMarket(ctx, id)
	if err != nil {
		return nil, err
	}

	if actorID != market.CreatorID && actorID != market.OracleID {
		return nil, models.ErrForbidden
	}

	if err := market.Cancel(s.clock.Now()); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, market); err != nil {
		return nil, fmt.Errorf("update market: %w", err)
	}

	s.log.Info("market cancelled", map[string]interface{}{
		"market_id": market.ID,
		"actor":     actorID,
	})

	return ToMarketResponse(market), nil
}

func (s *service) transition(ctx context.Context, id uuid.UUID, apply func(*models.Market) error) (*MarketResponse, error) {
	market, err := s.loadMarket(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := apply(market); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, market); err != nil {
		return nil, fmt.Errorf("update market: %w", err)
	}
	return ToMarketResponse(market), nil
}

func (s *service) loadMarket(ctx context.Context, id uuid.UUID) (*models.Market, error) {
	market, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrRecordNotFound
		}
		return nil, fmt.Errorf("get market %s: %w", id, err)
	}
	return market, nil
}
