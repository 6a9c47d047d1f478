package betting

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/predixio/settle/internal/cache"
	"github.com/predixio/settle/internal/ledger"
	"github.com/predixio/settle/internal/logger"
	"github.com/predixio/settle/models"
)

// fakeRepository holds one market and its positions in memory.
type fakeRepository struct {
	market    *models.Market
	positions map[string]*models.Position
}

func newFakeRepository(market *models.Market) *fakeRepository {
	return &fakeRepository{
		market:    market,
		positions: make(map[string]*models.Position),
	}
}

func positionKey(marketID, bettorID uuid.UUID, outcomeIndex uint8) string {
	return marketID.String() + "/" + bettorID.String() + "/" + string(rune(outcomeIndex))
}

func (f *fakeRepository) WithTx(_ *gorm.DB) Repository { return f }

func (f *fakeRepository) GetMarketForUpdate(_ context.Context, id uuid.UUID) (*models.Market, error) {
	if f.market == nil || f.market.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	return f.market, nil
}

func (f *fakeRepository) GetMarket(ctx context.Context, id uuid.UUID) (*models.Market, error) {
	return f.GetMarketForUpdate(ctx, id)
}

func (f *fakeRepository) UpdateMarket(_ context.Context, market *models.Market) error {
	f.market = market
	return nil
}

func (f *fakeRepository) UpdateOutcome(_ context.Context, _ *models.Outcome) error {
	return nil
}

func (f *fakeRepository) GetPosition(_ context.Context, marketID, bettorID uuid.UUID, outcomeIndex uint8) (*models.Position, error) {
	p, ok := f.positions[positionKey(marketID, bettorID, outcomeIndex)]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return p, nil
}

func (f *fakeRepository) GetPositionsByBettor(_ context.Context, marketID, bettorID uuid.UUID) ([]models.Position, error) {
	var out []models.Position
	for _, p := range f.positions {
		if p.MarketID == marketID && p.BettorID == bettorID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakeRepository) SavePosition(_ context.Context, position *models.Position) error {
	if position.ID == uuid.Nil {
		position.ID = uuid.New()
	}
	f.positions[positionKey(position.MarketID, position.BettorID, position.OutcomeIndex)] = position
	return nil
}

type bettingFixture struct {
	svc    Service
	repo   *fakeRepository
	ledger *ledger.MemoryLedger
	clock  ledger.FixedClock
	market *models.Market
	bettor uuid.UUID
}

func newBettingFixture(t *testing.T) *bettingFixture {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{})
	require.NoError(t, err)

	// Every bet attempt opens a transaction; failed ones roll back.
	// Unordered expectations cover both shapes, leftovers are fine.
	mock.MatchExpectationsInOrder(false)
	for i := 0; i < 4; i++ {
		mock.ExpectBegin()
		mock.ExpectCommit()
		mock.ExpectRollback()
	}

	clock := ledger.FixedClock{T: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	market := &models.Market{
		ID:           uuid.New(),
		Slug:         "cup-final",
		Status:       models.MarketStatusActive,
		CloseTime:    clock.T.Add(24 * time.Hour),
		MinBetAmount: 100,
		Outcomes: []models.Outcome{
			{ID: uuid.New(), OutcomeIndex: 0, Label: "Home", CurrentOddsBps: 10_000},
			{ID: uuid.New(), OutcomeIndex: 1, Label: "Away", CurrentOddsBps: 10_000},
		},
	}

	repo := newFakeRepository(market)
	ldg := ledger.NewMemoryLedger()
	bettor := uuid.New()
	ldg.Seed(ledger.ActorAccount(bettor), 100_000)

	svc := NewService(gormDB, repo, GetDefaultConfig(), ldg, clock,
		cache.NewCache[OddsResponse](cache.MemoryBackend), logger.NewNullLogger())

	return &bettingFixture{svc: svc, repo: repo, ledger: ldg, clock: clock, market: market, bettor: bettor}
}

func (f *bettingFixture) placeBet(outcome uint8, amount uint64) (*BetResponse, error) {
	return f.svc.PlaceBet(context.Background(), f.bettor, &PlaceBetRequest{
		MarketID:     f.market.ID.String(),
		OutcomeIndex: outcome,
		Amount:       amount,
	})
}

func TestPlaceBet(t *testing.T) {
	t.Run("first bet quotes 2x and escrows the stake", func(t *testing.T) {
		f := newBettingFixture(t)

		resp, err := f.placeBet(0, 1_000)
		require.NoError(t, err)

		assert.Equal(t, uint64(20_000), resp.OddsAtBetBps)
		assert.Equal(t, uint64(2_000), resp.PotentialPayout)
		assert.Equal(t, uint64(1_000), resp.MarketTotalPool)

		vault, _ := f.ledger.Balance(context.Background(), ledger.BetVault(f.market.ID))
		assert.Equal(t, uint64(1_000), vault)

		// The lone backed outcome holds the whole pool, so odds clamp to 1x.
		assert.Equal(t, uint64(10_000), f.repo.market.Outcomes[0].CurrentOddsBps)
		assert.Equal(t, uint64(10_000), f.repo.market.Outcomes[1].CurrentOddsBps)
	})

	t.Run("opposing stake moves the odds", func(t *testing.T) {
		f := newBettingFixture(t)

		_, err := f.placeBet(0, 3_000)
		require.NoError(t, err)

		resp, err := f.placeBet(1, 1_000)
		require.NoError(t, err)

		// Quoted on pre-bet pools: (0 + 3000) / 3000 opposing.
		assert.Equal(t, uint64(10_000), resp.OddsAtBetBps)
		assert.Equal(t, uint64(1_000), resp.PotentialPayout)

		// Post-bet board: 4000 total over 3000 and 1000.
		assert.Equal(t, uint64(13_333), f.repo.market.Outcomes[0].CurrentOddsBps)
		assert.Equal(t, uint64(40_000), f.repo.market.Outcomes[1].CurrentOddsBps)
		assert.Equal(t, uint32(2), f.repo.market.TotalBets)
	})

	t.Run("repeat bets accumulate one position", func(t *testing.T) {
		f := newBettingFixture(t)

		_, err := f.placeBet(0, 1_000)
		require.NoError(t, err)
		resp, err := f.placeBet(0, 500)
		require.NoError(t, err)

		assert.Equal(t, uint64(1_500), resp.PositionAmount)

		positions, err := f.svc.GetPositions(context.Background(), f.bettor, f.market.ID)
		require.NoError(t, err)
		require.Len(t, positions, 1)
		assert.Equal(t, uint64(1_500), positions[0].Amount)
	})

	t.Run("zero amount leaves state untouched", func(t *testing.T) {
		f := newBettingFixture(t)

		_, err := f.placeBet(0, 0)
		assert.ErrorIs(t, err, models.ErrInvalidBetAmount)

		balance, _ := f.ledger.Balance(context.Background(), ledger.ActorAccount(f.bettor))
		assert.Equal(t, uint64(100_000), balance)
		assert.Equal(t, uint64(0), f.repo.market.TotalPool)
	})

	t.Run("stake below minimum", func(t *testing.T) {
		f := newBettingFixture(t)
		_, err := f.placeBet(0, 50)
		assert.ErrorIs(t, err, models.ErrBetBelowMinimum)
	})

	t.Run("unknown outcome", func(t *testing.T) {
		f := newBettingFixture(t)
		_, err := f.placeBet(7, 1_000)
		assert.ErrorIs(t, err, models.ErrInvalidOutcome)
	})

	t.Run("payout cap rejects before escrow", func(t *testing.T) {
		f := newBettingFixture(t)
		f.market.MaxPayoutPerBet = 1_500

		_, err := f.placeBet(0, 1_000)
		assert.ErrorIs(t, err, models.ErrPayoutTooHigh)

		balance, _ := f.ledger.Balance(context.Background(), ledger.ActorAccount(f.bettor))
		assert.Equal(t, uint64(100_000), balance)
	})

	t.Run("closed market rejects bets", func(t *testing.T) {
		f := newBettingFixture(t)
		f.market.CloseTime = f.clock.T.Add(-time.Minute)

		_, err := f.placeBet(0, 1_000)
		assert.ErrorIs(t, err, models.ErrMarketExpired)
	})

	t.Run("paused market rejects bets", func(t *testing.T) {
		f := newBettingFixture(t)
		f.market.Status = models.MarketStatusPaused

		_, err := f.placeBet(0, 1_000)
		assert.ErrorIs(t, err, models.ErrMarketNotActive)
	})

	t.Run("insufficient funds aborts the bet", func(t *testing.T) {
		f := newBettingFixture(t)

		_, err := f.svc.PlaceBet(context.Background(), uuid.New(), &PlaceBetRequest{
			MarketID:     f.market.ID.String(),
			OutcomeIndex: 0,
			Amount:       1_000,
		})
		assert.ErrorIs(t, err, ledger.ErrInsufficientFunds)
		assert.Equal(t, uint64(0), f.repo.market.TotalPool)
	})
}

func TestGetOdds(t *testing.T) {
	t.Run("serves cached snapshot until invalidated", func(t *testing.T) {
		f := newBettingFixture(t)

		first, err := f.svc.GetOdds(context.Background(), f.market.ID)
		require.NoError(t, err)
		assert.Equal(t, uint64(0), first.TotalPool)

		// Mutate behind the cache; the snapshot should not change.
		f.repo.market.TotalPool = 999
		cached, err := f.svc.GetOdds(context.Background(), f.market.ID)
		require.NoError(t, err)
		assert.Equal(t, uint64(0), cached.TotalPool)
		f.repo.market.TotalPool = 0

		// A bet invalidates the snapshot.
		_, err = f.placeBet(0, 1_000)
		require.NoError(t, err)

		fresh, err := f.svc.GetOdds(context.Background(), f.market.ID)
		require.NoError(t, err)
		assert.Equal(t, uint64(1_000), fresh.TotalPool)
	})

	t.Run("unknown market", func(t *testing.T) {
		f := newBettingFixture(t)
		_, err := f.svc.GetOdds(context.Background(), uuid.New())
		assert.ErrorIs(t, err, models.ErrRecordNotFound)
	})
}
