package settlement

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/predixio/settle/internal/ledger"
	"github.com/predixio/settle/internal/logger"
	"github.com/predixio/settle/models"
)

// fakeRepository keeps one market, its positions and its resolution in
// memory.
type fakeRepository struct {
	market     *models.Market
	positions  []*models.Position
	resolution *models.MarketResolution
}

func (f *fakeRepository) WithTx(_ *gorm.DB) Repository { return f }

func (f *fakeRepository) GetMarketForUpdate(_ context.Context, id uuid.UUID) (*models.Market, error) {
	if f.market == nil || f.market.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	return f.market, nil
}

func (f *fakeRepository) UpdateMarket(_ context.Context, market *models.Market) error {
	f.market = market
	return nil
}

func (f *fakeRepository) CreateResolution(_ context.Context, resolution *models.MarketResolution) error {
	f.resolution = resolution
	return nil
}

func (f *fakeRepository) GetResolution(_ context.Context, marketID uuid.UUID) (*models.MarketResolution, error) {
	if f.resolution == nil || f.resolution.MarketID != marketID {
		return nil, gorm.ErrRecordNotFound
	}
	return f.resolution, nil
}

func (f *fakeRepository) GetPositionsForUpdate(_ context.Context, marketID, bettorID uuid.UUID) ([]models.Position, error) {
	var out []models.Position
	for _, p := range f.positions {
		if p.MarketID == marketID && p.BettorID == bettorID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakeRepository) SavePosition(_ context.Context, position *models.Position) error {
	for i, p := range f.positions {
		if p.MarketID == position.MarketID && p.BettorID == position.BettorID &&
			p.OutcomeIndex == position.OutcomeIndex {
			f.positions[i] = position
			return nil
		}
	}
	f.positions = append(f.positions, position)
	return nil
}

// failingUpdateRepo delegates to the in-memory repository but refuses
// market updates.
type failingUpdateRepo struct {
	*fakeRepository
	err error
}

func (r *failingUpdateRepo) WithTx(_ *gorm.DB) Repository { return r }

func (r *failingUpdateRepo) UpdateMarket(_ context.Context, _ *models.Market) error {
	return r.err
}

var errLedgerOutsideTx = errors.New("ledger call outside transaction")

// txScopedLedger rejects any balance move not made through WithTx. The
// service must route every transfer through the transaction-bound
// instance or the move would commit independently of the domain writes.
type txScopedLedger struct {
	*ledger.MemoryLedger
	inTx bool
}

func (l *txScopedLedger) WithTx(_ *gorm.DB) ledger.Ledger {
	return &txScopedLedger{MemoryLedger: l.MemoryLedger, inTx: true}
}

func (l *txScopedLedger) Transfer(ctx context.Context, from, to ledger.Account, amount uint64) error {
	if !l.inTx {
		return errLedgerOutsideTx
	}
	return l.MemoryLedger.Transfer(ctx, from, to, amount)
}

func (l *txScopedLedger) Mint(ctx context.Context, to ledger.Account, amount uint64) error {
	if !l.inTx {
		return errLedgerOutsideTx
	}
	return l.MemoryLedger.Mint(ctx, to, amount)
}

func (l *txScopedLedger) Burn(ctx context.Context, from ledger.Account, amount uint64) error {
	if !l.inTx {
		return errLedgerOutsideTx
	}
	return l.MemoryLedger.Burn(ctx, from, amount)
}

type settlementFixture struct {
	db     *gorm.DB
	svc    Service
	repo   *fakeRepository
	ledger *txScopedLedger
	clock  ledger.FixedClock
	market *models.Market
	oracle uuid.UUID
}

// newSettlementFixture builds a market that closed an hour ago with two
// outcomes and a 2% platform fee.
func newSettlementFixture(t *testing.T) *settlementFixture {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{})
	require.NoError(t, err)

	mock.MatchExpectationsInOrder(false)
	for i := 0; i < 6; i++ {
		mock.ExpectBegin()
		mock.ExpectCommit()
		mock.ExpectRollback()
	}

	clock := ledger.FixedClock{T: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	oracle := uuid.New()
	market := &models.Market{
		ID:             uuid.New(),
		Slug:           "cup-final",
		Status:         models.MarketStatusActive,
		OracleID:       oracle,
		CreatorID:      uuid.New(),
		CloseTime:      clock.T.Add(-time.Hour),
		PlatformFeeBps: 200,
		Outcomes: []models.Outcome{
			{OutcomeIndex: 0, Label: "Yes"},
			{OutcomeIndex: 1, Label: "No"},
		},
	}

	repo := &fakeRepository{market: market}
	ldg := &txScopedLedger{MemoryLedger: ledger.NewMemoryLedger()}

	svc := NewService(gormDB, repo, ldg, clock, logger.NewNullLogger())
	return &settlementFixture{db: gormDB, svc: svc, repo: repo, ledger: ldg, clock: clock, market: market, oracle: oracle}
}

// stake records a settled bet directly in the fixture's market state.
func (f *settlementFixture) stake(bettorID uuid.UUID, outcome uint8, amount uint64) {
	f.market.Outcomes[outcome].TotalAmount += amount
	f.market.TotalPool += amount
	f.repo.positions = append(f.repo.positions, &models.Position{
		ID:           uuid.New(),
		MarketID:     f.market.ID,
		BettorID:     bettorID,
		OutcomeIndex: outcome,
		Amount:       amount,
	})
	f.ledger.Seed(ledger.BetVault(f.market.ID), f.market.TotalPool)
}

func (f *settlementFixture) resolve(resolverID uuid.UUID, outcome uint8) (*ResolutionResponse, error) {
	return f.svc.ResolveMarket(context.Background(), resolverID, &ResolveMarketRequest{
		MarketID:       f.market.ID.String(),
		WinningOutcome: outcome,
		Evidence:       "official result feed",
	})
}

func TestResolveMarket(t *testing.T) {
	t.Run("sweeps fee and fixes the payout ratio", func(t *testing.T) {
		f := newSettlementFixture(t)
		yes, no := uuid.New(), uuid.New()
		f.stake(yes, 0, 1_000)
		f.stake(no, 1, 1_000)

		resp, err := f.resolve(f.oracle, 0)
		require.NoError(t, err)

		assert.Equal(t, uint64(2_000), resp.TotalPool)
		assert.Equal(t, uint64(40), resp.ProtocolFee)
		assert.Equal(t, uint64(1_000), resp.WinningPool)
		assert.Equal(t, uint64(19_600), resp.PayoutRatioBps)

		treasury, _ := f.ledger.Balance(context.Background(), ledger.ProtocolTreasury)
		assert.Equal(t, uint64(40), treasury)
		assert.Equal(t, models.MarketStatusResolved, f.repo.market.Status)
		assert.Equal(t, uint64(19_600), f.repo.market.PayoutRatioBps)
	})

	t.Run("creator fee paid out at resolution", func(t *testing.T) {
		f := newSettlementFixture(t)
		f.market.CreatorFeeBps = 100
		f.stake(uuid.New(), 0, 5_000)
		f.stake(uuid.New(), 1, 5_000)

		resp, err := f.resolve(f.oracle, 0)
		require.NoError(t, err)
		assert.Equal(t, uint64(100), resp.CreatorFee)

		creator, _ := f.ledger.Balance(context.Background(), ledger.ActorAccount(f.market.CreatorID))
		assert.Equal(t, uint64(100), creator)
	})

	t.Run("empty winning pool retained by treasury", func(t *testing.T) {
		f := newSettlementFixture(t)
		f.stake(uuid.New(), 1, 2_000)

		resp, err := f.resolve(f.oracle, 0)
		require.NoError(t, err)
		assert.Equal(t, uint64(0), resp.PayoutRatioBps)

		treasury, _ := f.ledger.Balance(context.Background(), ledger.ProtocolTreasury)
		assert.Equal(t, uint64(2_000), treasury)

		vault, _ := f.ledger.Balance(context.Background(), ledger.BetVault(f.market.ID))
		assert.Equal(t, uint64(0), vault)
	})

	t.Run("only the oracle may resolve", func(t *testing.T) {
		f := newSettlementFixture(t)
		f.stake(uuid.New(), 0, 1_000)

		_, err := f.resolve(uuid.New(), 0)
		assert.ErrorIs(t, err, models.ErrUnauthorizedResolver)
	})

	t.Run("cannot resolve before close", func(t *testing.T) {
		f := newSettlementFixture(t)
		f.market.CloseTime = f.clock.T.Add(time.Hour)

		_, err := f.resolve(f.oracle, 0)
		assert.ErrorIs(t, err, models.ErrMarketNotExpired)
	})

	t.Run("cannot resolve a paused market", func(t *testing.T) {
		f := newSettlementFixture(t)
		f.market.Status = models.MarketStatusPaused

		_, err := f.resolve(f.oracle, 0)
		assert.ErrorIs(t, err, models.ErrMarketNotActive)
	})

	t.Run("cannot resolve twice", func(t *testing.T) {
		f := newSettlementFixture(t)
		f.stake(uuid.New(), 0, 1_000)

		_, err := f.resolve(f.oracle, 0)
		require.NoError(t, err)
		_, err = f.resolve(f.oracle, 0)
		assert.ErrorIs(t, err, models.ErrMarketAlreadyResolved)
	})

	t.Run("oversized evidence", func(t *testing.T) {
		f := newSettlementFixture(t)
		_, err := f.svc.ResolveMarket(context.Background(), f.oracle, &ResolveMarketRequest{
			MarketID:       f.market.ID.String(),
			WinningOutcome: 0,
			Evidence:       strings.Repeat("x", models.MaxEvidenceLength+1),
		})
		assert.ErrorIs(t, err, models.ErrEvidenceTooLarge)
	})

	t.Run("unknown outcome", func(t *testing.T) {
		f := newSettlementFixture(t)
		_, err := f.resolve(f.oracle, 7)
		assert.ErrorIs(t, err, models.ErrInvalidOutcome)
	})
}

func TestClaimWinnings(t *testing.T) {
	t.Run("sole winner takes the net pool", func(t *testing.T) {
		f := newSettlementFixture(t)
		winner, loser := uuid.New(), uuid.New()
		f.stake(winner, 0, 1_000)
		f.stake(loser, 1, 1_000)

		_, err := f.resolve(f.oracle, 0)
		require.NoError(t, err)

		claim, err := f.svc.ClaimWinnings(context.Background(), winner, f.market.ID)
		require.NoError(t, err)
		assert.Equal(t, uint64(1_960), claim.Payout)

		balance, _ := f.ledger.Balance(context.Background(), ledger.ActorAccount(winner))
		assert.Equal(t, uint64(1_960), balance)
		assert.Equal(t, uint64(1_960), f.repo.market.TotalClaimed)
	})

	t.Run("losing claim settles for nothing", func(t *testing.T) {
		f := newSettlementFixture(t)
		winner, loser := uuid.New(), uuid.New()
		f.stake(winner, 0, 1_000)
		f.stake(loser, 1, 1_000)

		_, err := f.resolve(f.oracle, 0)
		require.NoError(t, err)

		claim, err := f.svc.ClaimWinnings(context.Background(), loser, f.market.ID)
		require.NoError(t, err)
		assert.Equal(t, uint64(0), claim.Payout)
		assert.Equal(t, 1, claim.PositionsSettled)

		balance, _ := f.ledger.Balance(context.Background(), ledger.ActorAccount(loser))
		assert.Equal(t, uint64(0), balance)
	})

	t.Run("second claim is rejected", func(t *testing.T) {
		f := newSettlementFixture(t)
		winner := uuid.New()
		f.stake(winner, 0, 1_000)
		f.stake(uuid.New(), 1, 1_000)

		_, err := f.resolve(f.oracle, 0)
		require.NoError(t, err)

		_, err = f.svc.ClaimWinnings(context.Background(), winner, f.market.ID)
		require.NoError(t, err)
		_, err = f.svc.ClaimWinnings(context.Background(), winner, f.market.ID)
		assert.ErrorIs(t, err, models.ErrAlreadyClaimed)

		balance, _ := f.ledger.Balance(context.Background(), ledger.ActorAccount(winner))
		assert.Equal(t, uint64(1_960), balance)
	})

	t.Run("failed market update aborts the claim", func(t *testing.T) {
		f := newSettlementFixture(t)
		winner := uuid.New()
		f.stake(winner, 0, 1_000)
		f.stake(uuid.New(), 1, 1_000)

		_, err := f.resolve(f.oracle, 0)
		require.NoError(t, err)

		updateErr := errors.New("update market: connection reset")
		svc := NewService(f.db, &failingUpdateRepo{fakeRepository: f.repo, err: updateErr},
			f.ledger, f.clock, logger.NewNullLogger())

		_, err = svc.ClaimWinnings(context.Background(), winner, f.market.ID)
		assert.ErrorIs(t, err, updateErr)
	})

	t.Run("unresolved market", func(t *testing.T) {
		f := newSettlementFixture(t)
		bettor := uuid.New()
		f.stake(bettor, 0, 1_000)

		_, err := f.svc.ClaimWinnings(context.Background(), bettor, f.market.ID)
		assert.ErrorIs(t, err, models.ErrMarketNotResolved)
	})

	t.Run("no position to claim", func(t *testing.T) {
		f := newSettlementFixture(t)
		f.stake(uuid.New(), 0, 1_000)
		_, err := f.resolve(f.oracle, 0)
		require.NoError(t, err)

		_, err = f.svc.ClaimWinnings(context.Background(), uuid.New(), f.market.ID)
		assert.ErrorIs(t, err, models.ErrInvalidPosition)
	})

	t.Run("claims conserve the pool", func(t *testing.T) {
		f := newSettlementFixture(t)
		a, b, c := uuid.New(), uuid.New(), uuid.New()
		f.stake(a, 0, 1_000)
		f.stake(b, 0, 500)
		f.stake(c, 1, 500)

		resp, err := f.resolve(f.oracle, 0)
		require.NoError(t, err)

		claimA, err := f.svc.ClaimWinnings(context.Background(), a, f.market.ID)
		require.NoError(t, err)
		claimB, err := f.svc.ClaimWinnings(context.Background(), b, f.market.ID)
		require.NoError(t, err)

		// Net claims plus the swept fee equal the pool, within one unit
		// of truncation per claimant.
		distributed := claimA.Payout + claimB.Payout + resp.ProtocolFee
		assert.LessOrEqual(t, distributed, uint64(2_000))
		assert.GreaterOrEqual(t, distributed+2, uint64(2_000))

		vault, _ := f.ledger.Balance(context.Background(), ledger.BetVault(f.market.ID))
		assert.Equal(t, uint64(2_000)-distributed, vault)
	})
}

func TestClaimRefund(t *testing.T) {
	t.Run("cancelled market refunds stakes in full", func(t *testing.T) {
		f := newSettlementFixture(t)
		bettor := uuid.New()
		f.stake(bettor, 0, 1_000)
		f.stake(bettor, 1, 500)
		f.market.CloseTime = f.clock.T.Add(time.Hour)
		require.NoError(t, f.market.Cancel(f.clock.T))

		claim, err := f.svc.ClaimRefund(context.Background(), bettor, f.market.ID)
		require.NoError(t, err)
		assert.Equal(t, uint64(1_500), claim.Payout)
		assert.Equal(t, 2, claim.PositionsSettled)

		balance, _ := f.ledger.Balance(context.Background(), ledger.ActorAccount(bettor))
		assert.Equal(t, uint64(1_500), balance)
	})

	t.Run("refund requires a cancelled market", func(t *testing.T) {
		f := newSettlementFixture(t)
		bettor := uuid.New()
		f.stake(bettor, 0, 1_000)

		_, err := f.svc.ClaimRefund(context.Background(), bettor, f.market.ID)
		assert.ErrorIs(t, err, models.ErrMarketNotCancelled)
	})

	t.Run("second refund is rejected", func(t *testing.T) {
		f := newSettlementFixture(t)
		bettor := uuid.New()
		f.stake(bettor, 0, 1_000)
		f.market.CloseTime = f.clock.T.Add(time.Hour)
		require.NoError(t, f.market.Cancel(f.clock.T))

		_, err := f.svc.ClaimRefund(context.Background(), bettor, f.market.ID)
		require.NoError(t, err)
		_, err = f.svc.ClaimRefund(context.Background(), bettor, f.market.ID)
		assert.ErrorIs(t, err, models.ErrAlreadyClaimed)
	})
}

func TestGetResolution(t *testing.T) {
	f := newSettlementFixture(t)
	f.stake(uuid.New(), 0, 1_000)

	_, err := f.svc.GetResolution(context.Background(), f.market.ID)
	assert.ErrorIs(t, err, models.ErrRecordNotFound)

	_, err = f.resolve(f.oracle, 0)
	require.NoError(t, err)

	resolution, err := f.svc.GetResolution(context.Background(), f.market.ID)
	require.NoError(t, err)
	assert.Equal(t, uint8(0), resolution.WinningOutcome)
	assert.Equal(t, "official result feed", resolution.Evidence)
}
