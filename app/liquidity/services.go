package liquidity

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/predixio/settle/internal/ledger"
	"github.com/predixio/settle/internal/logger"
	"github.com/predixio/settle/internal/numeric"
	"github.com/predixio/settle/models"
)

// service implements the Service interface
type service struct {
	db     *gorm.DB
	repo   Repository
	config *Config
	ledger ledger.Ledger
	clock  ledger.Clock
	log    logger.Logger
}

// NewService creates a new liquidity service
func NewService(
	db *gorm.DB,
	repo Repository,
	config *Config,
	ldg ledger.Ledger,
	clock ledger.Clock,
	log logger.Logger,
) Service {
	return &service{
		db:     db,
		repo:   repo,
		config: config,
		ledger: ldg,
		clock:  clock,
		log:    log,
	}
}

// AddLiquidity deposits into a market's pool and mints LP shares. With
// RefundExcess off, both sides of a lopsided deposit are consumed in full
// even though only the scarcer side priced the mint.
func (s *service) AddLiquidity(ctx context.Context, providerID uuid.UUID, req *AddLiquidityRequest) (*LiquidityResponse, error) {
	marketID, err := uuid.Parse(req.MarketID)
	if err != nil {
		return nil, models.ErrInvalidMarketID
	}
	if req.AmountA == 0 || req.AmountB == 0 {
		return nil, models.ErrInvalidLiquidityAmount
	}

	var resp *LiquidityResponse
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repoTx := s.repo.WithTx(tx)
		ledgerTx := s.ledger.WithTx(tx)

		market, err := s.loadMarket(ctx, repoTx, marketID)
		if err != nil {
			return err
		}
		if market.Status != models.MarketStatusActive {
			return models.ErrMarketNotActive
		}

		pool, err := s.loadPoolForUpdate(ctx, repoTx, marketID)
		if err != nil {
			return err
		}

		minted, consumedA, consumedB, err := s.priceDeposit(pool, req.AmountA, req.AmountB)
		if err != nil {
			return err
		}
		if minted < req.MinLpOut {
			return models.ErrSlippageExceeded
		}

		deposit, err := numeric.Add(consumedA, consumedB)
		if err != nil {
			return err
		}
		if err := ledgerTx.Transfer(ctx,
			ledger.ActorAccount(providerID),
			ledger.LiquidityVault(market.ID),
			deposit); err != nil {
			return fmt.Errorf("escrow deposit: %w", err)
		}

		pool.ReserveA, err = numeric.Add(pool.ReserveA, consumedA)
		if err != nil {
			return err
		}
		pool.ReserveB, err = numeric.Add(pool.ReserveB, consumedB)
		if err != nil {
			return err
		}
		pool.LpTokenSupply, err = numeric.Add(pool.LpTokenSupply, minted)
		if err != nil {
			return err
		}
		pool.RecomputeK()

		position, err := repoTx.GetPosition(ctx, pool.ID, providerID)
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("load position: %w", err)
			}
			position = &models.LiquidityPosition{
				PoolID:     pool.ID,
				MarketID:   market.ID,
				ProviderID: providerID,
				Active:     true,
			}
			pool.ActiveProviders++
		} else if !position.Active {
			position.Active = true
			pool.ActiveProviders++
		}
		position.Shares += minted
		position.DepositedA += consumedA
		position.DepositedB += consumedB

		if err := ledgerTx.Mint(ctx, ledger.LpShareAccount(pool.ID, providerID), minted); err != nil {
			return fmt.Errorf("mint shares: %w", err)
		}

		if err := repoTx.SavePosition(ctx, position); err != nil {
			return fmt.Errorf("save position: %w", err)
		}
		if err := repoTx.UpdatePool(ctx, pool); err != nil {
			return fmt.Errorf("update pool: %w", err)
		}

		resp = &LiquidityResponse{
			MarketID:      market.ID,
			ProviderID:    providerID,
			SharesMinted:  minted,
			TotalShares:   position.Shares,
			ConsumedA:     consumedA,
			ConsumedB:     consumedB,
			RefundedA:     req.AmountA - consumedA,
			RefundedB:     req.AmountB - consumedB,
			PoolReserveA:  pool.ReserveA,
			PoolReserveB:  pool.ReserveB,
			LpTokenSupply: pool.LpTokenSupply,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("liquidity added", map[string]interface{}{
		"market_id": marketID,
		"provider":  providerID,
		"minted":    resp.SharesMinted,
	})
	return resp, nil
}

// priceDeposit computes the minted shares and how much of each side the
// pool consumes.
func (s *service) priceDeposit(pool *models.LiquidityPool, amountA, amountB uint64) (minted, consumedA, consumedB uint64, err error) {
	if pool.LpTokenSupply == 0 {
		return InitialShares(amountA, amountB), amountA, amountB, nil
	}

	minted, err = SubsequentShares(amountA, amountB, pool.LpTokenSupply, pool.ReserveA, pool.ReserveB)
	if err != nil {
		return 0, 0, 0, err
	}
	if minted == 0 {
		return 0, 0, 0, models.ErrInvalidLiquidityAmount
	}

	if !s.config.RefundExcess {
		return minted, amountA, amountB, nil
	}

	// Only the binding side is consumed in full; the other side is
	// trimmed to the pool's current ratio.
	byA, err := numeric.MulDiv(amountA, pool.LpTokenSupply, pool.ReserveA)
	if err != nil {
		return 0, 0, 0, err
	}
	byB, err := numeric.MulDiv(amountB, pool.LpTokenSupply, pool.ReserveB)
	if err != nil {
		return 0, 0, 0, err
	}
	if byA <= byB {
		consumedA = amountA
		consumedB, err = numeric.MulDiv(amountA, pool.ReserveB, pool.ReserveA)
	} else {
		consumedB = amountB
		consumedA, err = numeric.MulDiv(amountB, pool.ReserveA, pool.ReserveB)
	}
	if err != nil {
		return 0, 0, 0, err
	}
	return minted, consumedA, consumedB, nil
}

// RemoveLiquidity burns LP shares for a proportional slice of the
// reserves. Withdrawals from a market still taking bets pay the pool's
// withdrawal fee; terminal markets pay out whole.
func (s *service) RemoveLiquidity(ctx context.Context, providerID uuid.UUID, req *RemoveLiquidityRequest) (*WithdrawalResponse, error) {
	marketID, err := uuid.Parse(req.MarketID)
	if err != nil {
		return nil, models.ErrInvalidMarketID
	}
	if req.Shares == 0 {
		return nil, models.ErrInvalidLiquidityAmount
	}

	var resp *WithdrawalResponse
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repoTx := s.repo.WithTx(tx)
		ledgerTx := s.ledger.WithTx(tx)

		market, err := s.loadMarket(ctx, repoTx, marketID)
		if err != nil {
			return err
		}
		pool, err := s.loadPoolForUpdate(ctx, repoTx, marketID)
		if err != nil {
			return err
		}

		position, err := repoTx.GetPosition(ctx, pool.ID, providerID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.ErrInsufficientLpTokens
			}
			return fmt.Errorf("load position: %w", err)
		}
		if req.Shares > position.Shares {
			return models.ErrInsufficientLpTokens
		}

		outA, outB, err := WithdrawalAmounts(pool.ReserveA, pool.ReserveB, req.Shares, pool.LpTokenSupply)
		if err != nil {
			return err
		}
		gross, err := numeric.Add(outA, outB)
		if err != nil {
			return err
		}
		net, fee, err := WithdrawalFee(gross, pool.WithdrawalFeeBps, !market.IsTerminal())
		if err != nil {
			return err
		}
		if net < req.MinAmountOut {
			return models.ErrSlippageExceeded
		}

		if err := position.Burn(req.Shares); err != nil {
			return err
		}
		if !position.Active {
			pool.ActiveProviders--
		}

		pool.ReserveA -= outA
		pool.ReserveB -= outB
		pool.LpTokenSupply -= req.Shares
		pool.TotalFeesCollected += fee
		pool.RecomputeK()

		if err := ledgerTx.Transfer(ctx,
			ledger.LiquidityVault(market.ID),
			ledger.ActorAccount(providerID),
			net); err != nil {
			return fmt.Errorf("pay withdrawal: %w", err)
		}
		if err := ledgerTx.Burn(ctx, ledger.LpShareAccount(pool.ID, providerID), req.Shares); err != nil {
			return fmt.Errorf("burn shares: %w", err)
		}

		if err := repoTx.SavePosition(ctx, position); err != nil {
			return fmt.Errorf("save position: %w", err)
		}
		if err := repoTx.UpdatePool(ctx, pool); err != nil {
			return fmt.Errorf("update pool: %w", err)
		}

		resp = &WithdrawalResponse{
			MarketID:        market.ID,
			ProviderID:      providerID,
			SharesBurned:    req.Shares,
			RemainingShares: position.Shares,
			GrossAmount:     gross,
			Fee:             fee,
			NetAmount:       net,
			PoolReserveA:    pool.ReserveA,
			PoolReserveB:    pool.ReserveB,
			LpTokenSupply:   pool.LpTokenSupply,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("liquidity removed", map[string]interface{}{
		"market_id": marketID,
		"provider":  providerID,
		"burned":    resp.SharesBurned,
		"net":       resp.NetAmount,
	})
	return resp, nil
}

// GetPool returns a market's pool state
func (s *service) GetPool(ctx context.Context, marketID uuid.UUID) (*PoolResponse, error) {
	pool, err := s.repo.GetPool(ctx, marketID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrPoolNotFound
		}
		return nil, fmt.Errorf("load pool: %w", err)
	}
	return ToPoolResponse(pool), nil
}

// GetPosition returns the provider's LP position on a market
func (s *service) GetPosition(ctx context.Context, providerID, marketID uuid.UUID) (*PositionResponse, error) {
	pool, err := s.repo.GetPool(ctx, marketID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrPoolNotFound
		}
		return nil, fmt.Errorf("load pool: %w", err)
	}
	position, err := s.repo.GetPosition(ctx, pool.ID, providerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrRecordNotFound
		}
		return nil, fmt.Errorf("load position: %w", err)
	}
	return ToPositionResponse(position), nil
}

func (s *service) loadMarket(ctx context.Context, repo Repository, id uuid.UUID) (*models.Market, error) {
	market, err := repo.GetMarket(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrRecordNotFound
		}
		return nil, fmt.Errorf("load market: %w", err)
	}
	return market, nil
}

func (s *service) loadPoolForUpdate(ctx context.Context, repo Repository, marketID uuid.UUID) (*models.LiquidityPool, error) {
	pool, err := repo.GetPoolForUpdate(ctx, marketID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrPoolNotFound
		}
		return nil, fmt.Errorf("load pool: %w", err)
	}
	return pool, nil
}
