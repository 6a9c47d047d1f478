package settlement

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
	ledger ledger.Ledger
	clock  ledger.Clock
	log    logger.Logger
}

// NewService creates a new settlement service
func NewService(
	db *gorm.DB,
	repo Repository,
	ldg ledger.Ledger,
	clock ledger.Clock,
	log logger.Logger,
) Service {
	return &service{
		db:     db,
		repo:   repo,
		ledger: ldg,
		clock:  clock,
		log:    log,
	}
}

// ResolveMarket settles an expired market: the oracle's outcome is
// recorded, fees are swept out of the bet vault, and the payout ratio the
// winners will claim against is fixed. If nobody backed the winning
// outcome the remaining pool goes to the treasury.
func (s *service) ResolveMarket(ctx context.Context, resolverID uuid.UUID, req *ResolveMarketRequest) (*ResolutionResponse, error) {
	marketID, err := uuid.Parse(req.MarketID)
	if err != nil {
		return nil, models.ErrInvalidMarketID
	}
	if len(req.Evidence) > models.MaxEvidenceLength {
		return nil, models.ErrEvidenceTooLarge
	}

	now := s.clock.Now()
	var resp *ResolutionResponse

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

		if resolverID != market.OracleID {
			return models.ErrUnauthorizedResolver
		}

		winner := market.OutcomeAt(req.WinningOutcome)
		if winner == nil {
			return models.ErrInvalidOutcome
		}

		if err := market.Resolve(req.WinningOutcome, now); err != nil {
			return err
		}

		acc, err := Settle(market.TotalPool, winner.TotalAmount, market.PlatformFeeBps, market.CreatorFeeBps)
		if err != nil {
			return err
		}
		market.PayoutRatioBps = acc.RatioBps

		vault := ledger.BetVault(market.ID)
		if acc.ProtocolFee > 0 {
			if err := ledgerTx.Transfer(ctx, vault, ledger.ProtocolTreasury, acc.ProtocolFee); err != nil {
				return fmt.Errorf("sweep protocol fee: %w", err)
			}
		}
		if acc.CreatorFee > 0 {
			if err := ledgerTx.Transfer(ctx, vault, ledger.ActorAccount(market.CreatorID), acc.CreatorFee); err != nil {
				return fmt.Errorf("pay creator fee: %w", err)
			}
		}
		if acc.WinningPool == 0 && acc.Remaining > 0 {
			if err := ledgerTx.Transfer(ctx, vault, ledger.ProtocolTreasury, acc.Remaining); err != nil {
				return fmt.Errorf("retain unclaimed pool: %w", err)
			}
		}

		resolution := &models.MarketResolution{
			MarketID:       market.ID,
			ResolverID:     resolverID,
			WinningOutcome: req.WinningOutcome,
			Evidence:       []byte(req.Evidence),
			TotalPool:      acc.TotalPool,
			ProtocolFee:    acc.ProtocolFee,
			CreatorFee:     acc.CreatorFee,
			WinningPool:    acc.WinningPool,
			PayoutRatioBps: acc.RatioBps,
			ResolvedAt:     now,
		}
		if err := resolution.Validate(); err != nil {
			return err
		}
		if err := repoTx.CreateResolution(ctx, resolution); err != nil {
			return fmt.Errorf("create resolution: %w", err)
		}
		if err := repoTx.UpdateMarket(ctx, market); err != nil {
			return fmt.Errorf("update market: %w", err)
		}

		resp = ToResolutionResponse(resolution)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("market resolved", map[string]interface{}{
		"market_id": marketID,
		"outcome":   req.WinningOutcome,
		"ratio_bps": resp.PayoutRatioBps,
	})
	return resp, nil
}

// ClaimWinnings settles every unclaimed position the bettor holds on a
// resolved market. Winning positions pay their share of the net pool;
// losing ones pay nothing but are marked claimed all the same, so a claim
// happens exactly once either way.
func (s *service) ClaimWinnings(ctx context.Context, bettorID, marketID uuid.UUID) (*ClaimResponse, error) {
	return s.claim(ctx, bettorID, marketID, func(market *models.Market, position *models.Position) (uint64, error) {
		if market.Status != models.MarketStatusResolved {
			return 0, models.ErrMarketNotResolved
		}
		payout, err := PositionPayout(position, *market.WinningOutcome, market.PayoutRatioBps)
		if err != nil {
			return 0, err
		}
		if position.OutcomeIndex == *market.WinningOutcome && payout == 0 && position.Amount > 0 {
			return 0, models.ErrNoWinnings
		}
		return payout, nil
	})
}

// ClaimRefund returns every unclaimed stake the bettor holds on a
// cancelled market, in full.
func (s *service) ClaimRefund(ctx context.Context, bettorID, marketID uuid.UUID) (*ClaimResponse, error) {
	return s.claim(ctx, bettorID, marketID, func(market *models.Market, position *models.Position) (uint64, error) {
		if market.Status != models.MarketStatusCancelled {
			return 0, models.ErrMarketNotCancelled
		}
		return position.Amount, nil
	})
}

func (s *service) claim(ctx context.Context, bettorID, marketID uuid.UUID,
	payoutFor func(*models.Market, *models.Position) (uint64, error)) (*ClaimResponse, error) {
	now := s.clock.Now()
	var resp *ClaimResponse

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repoTx := s.repo.WithTx(tx)
		ledgerTx := s.ledger.WithTx(tx)

		market, err := repoTx.GetMarketForUpdate(ctx, marketID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.ErrRecordNotFound
			}
			return fmt.Errorf("load market: %w", err)
		}

		positions, err := repoTx.GetPositionsForUpdate(ctx, marketID, bettorID)
		if err != nil {
			return fmt.Errorf("load positions: %w", err)
		}
		if len(positions) == 0 {
			return models.ErrInvalidPosition
		}

		var total uint64
		settled := 0
		for i := range positions {
			position := &positions[i]
			if position.Claimed {
				continue
			}
			payout, err := payoutFor(market, position)
			if err != nil {
				return err
			}
			if err := position.Claim(payout, now); err != nil {
				return err
			}
			total, err = numeric.Add(total, payout)
			if err != nil {
				return err
			}
			if err := repoTx.SavePosition(ctx, position); err != nil {
				return fmt.Errorf("save position: %w", err)
			}
			settled++
		}
		if settled == 0 {
			return models.ErrAlreadyClaimed
		}

		if total > 0 {
			if err := ledgerTx.Transfer(ctx,
				ledger.BetVault(market.ID),
				ledger.ActorAccount(bettorID),
				total); err != nil {
				return fmt.Errorf("pay claim: %w", err)
			}
			market.TotalClaimed, err = numeric.Add(market.TotalClaimed, total)
			if err != nil {
				return err
			}
			if err := repoTx.UpdateMarket(ctx, market); err != nil {
				return fmt.Errorf("update market: %w", err)
			}
		}

		resp = &ClaimResponse{
			MarketID:         market.ID,
			BettorID:         bettorID,
			Payout:           total,
			PositionsSettled: settled,
			ClaimedAt:        now,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("claim settled", map[string]interface{}{
		"market_id": marketID,
		"bettor":    bettorID,
		"payout":    resp.Payout,
	})
	return resp, nil
}

// GetResolution returns the audit record for a resolved market
func (s *service) GetResolution(ctx context.Context, marketID uuid.UUID) (*ResolutionResponse, error) {
	resolution, err := s.repo.GetResolution(ctx, marketID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrRecordNotFound
		}
		return nil, fmt.Errorf("load resolution: %w", err)
	}
	return ToResolutionResponse(resolution), nil
}
