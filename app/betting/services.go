package betting

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/predixio/settle/internal/cache"
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
	odds   cache.Cache[OddsResponse]
	log    logger.Logger
}

// NewService creates a new betting service
func NewService(
	db *gorm.DB,
	repo Repository,
	config *Config,
	ldg ledger.Ledger,
	clock ledger.Clock,
	odds cache.Cache[OddsResponse],
	log logger.Logger,
) Service {
	return &service{
		db:     db,
		repo:   repo,
		config: config,
		ledger: ldg,
		clock:  clock,
		odds:   odds,
		log:    log,
	}
}

// PlaceBet escrows the stake and records it against the bettor's position.
// The market row is locked for the duration so concurrent bets serialize and
// odds are recomputed from a consistent pool snapshot.
func (s *service) PlaceBet(ctx context.Context, bettorID uuid.UUID, req *PlaceBetRequest) (*BetResponse, error) {
	marketID, err := uuid.Parse(req.MarketID)
	if err != nil {
		return nil, models.ErrInvalidMarketID
	}

	now := s.clock.Now()
	var resp *BetResponse

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repoTx := s.repo.WithTx(tx)
		ledgerTx := s.ledger.WithTx(tx)

		market, err := repoTx.GetMarketForUpdate(ctx, marketID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.ErrRecordNotFound
			}
			return fmt.Errorf("load market: %w", err)
		}

		if err := market.CanBet(now); err != nil {
			return err
		}
		if err := market.ValidateBetAmount(req.Amount); err != nil {
			return err
		}

		outcome := market.OutcomeAt(req.OutcomeIndex)
		if outcome == nil {
			return models.ErrInvalidOutcome
		}

		// Quote against the pools as they stand before this stake.
		opposing, err := OpposingPool(market.Outcomes, req.OutcomeIndex)
		if err != nil {
			return err
		}
		oddsAtBet, err := OddsAtBet(outcome.TotalAmount, opposing)
		if err != nil {
			return err
		}
		payout, err := PotentialPayout(req.Amount, outcome.TotalAmount, opposing, market.MaxPayoutPerBet)
		if err != nil {
			return err
		}

		if err := ledgerTx.Transfer(ctx,
			ledger.ActorAccount(bettorID),
			ledger.BetVault(market.ID),
			req.Amount); err != nil {
			return fmt.Errorf("escrow stake: %w", err)
		}

		position, err := repoTx.GetPosition(ctx, market.ID, bettorID, req.OutcomeIndex)
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("load position: %w", err)
			}
			position = &models.Position{
				MarketID:     market.ID,
				BettorID:     bettorID,
				OutcomeIndex: req.OutcomeIndex,
			}
		}
		position.AddStake(req.Amount, oddsAtBet, payout)
		if err := repoTx.SavePosition(ctx, position); err != nil {
			return fmt.Errorf("save position: %w", err)
		}

		outcome.TotalAmount, err = numeric.Add(outcome.TotalAmount, req.Amount)
		if err != nil {
			return err
		}
		outcome.BetCount++

		market.TotalPool, err = numeric.Add(market.TotalPool, req.Amount)
		if err != nil {
			return err
		}
		market.TotalBets++
		market.LastBetAt = &now

		if err := RecomputeOdds(market); err != nil {
			return err
		}
		for i := range market.Outcomes {
			if err := repoTx.UpdateOutcome(ctx, &market.Outcomes[i]); err != nil {
				return fmt.Errorf("update outcome: %w", err)
			}
		}
		if err := repoTx.UpdateMarket(ctx, market); err != nil {
			return fmt.Errorf("update market: %w", err)
		}

		resp = &BetResponse{
			MarketID:        market.ID,
			BettorID:        bettorID,
			OutcomeIndex:    req.OutcomeIndex,
			Amount:          req.Amount,
			OddsAtBetBps:    oddsAtBet,
			PotentialPayout: payout,
			PositionAmount:  position.Amount,
			MarketTotalPool: market.TotalPool,
			PlacedAt:        now,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.odds.Delete(ctx, oddsKey(marketID)); err != nil && !errors.Is(err, cache.ErrCacheMiss) {
		s.log.Error(err, map[string]interface{}{
			"operation": "invalidate odds cache",
			"market_id": marketID,
		})
	}

	s.log.Info("bet placed", map[string]interface{}{
		"market_id": marketID,
		"bettor":    bettorID,
		"outcome":   req.OutcomeIndex,
		"amount":    req.Amount,
	})

	return resp, nil
}

// GetOdds returns the market's odds board, served from cache when fresh.
func (s *service) GetOdds(ctx context.Context, marketID uuid.UUID) (*OddsResponse, error) {
	if snapshot, err := s.odds.Get(ctx, oddsKey(marketID)); err == nil {
		return &snapshot, nil
	}

	market, err := s.repo.GetMarket(ctx, marketID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrRecordNotFound
		}
		return nil, fmt.Errorf("load market: %w", err)
	}

	resp := ToOddsResponse(market, s.clock.Now())
	if err := s.odds.Set(ctx, oddsKey(marketID), *resp, s.config.OddsCacheTTL); err != nil {
		s.log.Error(err, map[string]interface{}{
			"operation": "cache odds snapshot",
			"market_id": marketID,
		})
	}
	return resp, nil
}

// GetPositions lists the bettor's positions on one market
func (s *service) GetPositions(ctx context.Context, bettorID, marketID uuid.UUID) ([]PositionResponse, error) {
	positions, err := s.repo.GetPositionsByBettor(ctx, marketID, bettorID)
	if err != nil {
		return nil, fmt.Errorf("list positions: %w", err)
	}

	out := make([]PositionResponse, 0, len(positions))
	for i := range positions {
		out = append(out, ToPositionResponse(&positions[i]))
	}
	return out, nil
}

func oddsKey(marketID uuid.UUID) string {
	return "odds:" + marketID.String()
}
