package ledger

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/predixio/settle/tests/suites"
)

type GormLedgerTestSuite struct {
	suites.RepositoryTestSuite
	ledger *GormLedger
}

func (suite *GormLedgerTestSuite) SetupSuite() {
	if testing.Short() {
		suite.T().Skip("Skipping database integration test")
	}

	suite.AutoMigrate = true

	suite.RepositoryTestSuite.SetupSuite()

	suite.ledger = NewGormLedger(suite.DB)
}

func TestGormLedger(t *testing.T) {
	suite.Run(t, new(GormLedgerTestSuite))
}

func (suite *GormLedgerTestSuite) TestMintAndBalance() {
	ctx := context.Background()
	actor := ActorAccount(uuid.New())

	suite.AssertNoDBError(suite.ledger.Mint(ctx, actor, 10_000))

	balance, err := suite.ledger.Balance(ctx, actor)
	suite.AssertNoDBError(err)
	suite.Assert().Equal(uint64(10_000), balance)
}

func (suite *GormLedgerTestSuite) TestBalance_UnknownAccountIsZero() {
	balance, err := suite.ledger.Balance(context.Background(), ActorAccount(uuid.New()))
	suite.AssertNoDBError(err)
	suite.Assert().Equal(uint64(0), balance)
}

func (suite *GormLedgerTestSuite) TestTransfer() {
	ctx := context.Background()
	actor := ActorAccount(uuid.New())
	vault := BetVault(uuid.New())

	suite.AssertNoDBError(suite.ledger.Mint(ctx, actor, 5_000))
	suite.AssertNoDBError(suite.ledger.Transfer(ctx, actor, vault, 1_500))

	actorBalance, err := suite.ledger.Balance(ctx, actor)
	suite.AssertNoDBError(err)
	suite.Assert().Equal(uint64(3_500), actorBalance)

	vaultBalance, err := suite.ledger.Balance(ctx, vault)
	suite.AssertNoDBError(err)
	suite.Assert().Equal(uint64(1_500), vaultBalance)
}

func (suite *GormLedgerTestSuite) TestTransfer_InsufficientFunds() {
	ctx := context.Background()
	actor := ActorAccount(uuid.New())
	vault := BetVault(uuid.New())

	suite.AssertNoDBError(suite.ledger.Mint(ctx, actor, 100))

	err := suite.ledger.Transfer(ctx, actor, vault, 101)
	suite.Assert().ErrorIs(err, ErrInsufficientFunds)

	// The failed transfer must not have moved anything.
	balance, err := suite.ledger.Balance(ctx, actor)
	suite.AssertNoDBError(err)
	suite.Assert().Equal(uint64(100), balance)
}

func (suite *GormLedgerTestSuite) TestTransfer_Guards() {
	ctx := context.Background()
	actor := ActorAccount(uuid.New())

	suite.Assert().ErrorIs(suite.ledger.Transfer(ctx, actor, BetVault(uuid.New()), 0), ErrZeroAmount)
	suite.Assert().ErrorIs(suite.ledger.Transfer(ctx, actor, actor, 10), ErrSameAccount)
}

func (suite *GormLedgerTestSuite) TestTransfer_RollsBackWithCallerTransaction() {
	ctx := context.Background()
	actor := ActorAccount(uuid.New())
	vault := BetVault(uuid.New())

	suite.AssertNoDBError(suite.ledger.Mint(ctx, actor, 1_000))

	// A domain write failing after the transfer must take the balance
	// moves down with it.
	writeFailed := errors.New("write failed")
	err := suite.DB.Transaction(func(tx *gorm.DB) error {
		if err := suite.ledger.WithTx(tx).Transfer(ctx, actor, vault, 400); err != nil {
			return err
		}
		return writeFailed
	})
	suite.Assert().ErrorIs(err, writeFailed)

	actorBalance, err := suite.ledger.Balance(ctx, actor)
	suite.AssertNoDBError(err)
	suite.Assert().Equal(uint64(1_000), actorBalance)

	vaultBalance, err := suite.ledger.Balance(ctx, vault)
	suite.AssertNoDBError(err)
	suite.Assert().Equal(uint64(0), vaultBalance)
}

func (suite *GormLedgerTestSuite) TestBurn() {
	ctx := context.Background()
	shares := LpShareAccount(uuid.New(), uuid.New())

	suite.AssertNoDBError(suite.ledger.Mint(ctx, shares, 1_000))
	suite.AssertNoDBError(suite.ledger.Burn(ctx, shares, 400))

	balance, err := suite.ledger.Balance(ctx, shares)
	suite.AssertNoDBError(err)
	suite.Assert().Equal(uint64(600), balance)

	suite.Assert().ErrorIs(suite.ledger.Burn(ctx, shares, 601), ErrInsufficientFunds)
}
