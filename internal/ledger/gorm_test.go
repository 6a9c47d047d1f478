package ledger

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: logger.Discard,
	})
	require.NoError(t, err)
	return db, mock
}

// A transfer made through WithTx must run entirely on the caller's
// connection: one savepoint inside the caller's transaction, no
// independent begin or commit. When the caller rolls back, the balance
// rows go with it.
func TestGormLedgerTransferJoinsCallerTransaction(t *testing.T) {
	db, mock := newMockDB(t)

	from := ActorAccount(uuid.New())
	to := BetVault(uuid.New())

	fromRow := func() *sqlmock.Rows {
		return sqlmock.NewRows([]string{"account", "balance"}).AddRow(string(from), uint64(100))
	}
	toRow := func() *sqlmock.Rows {
		return sqlmock.NewRows([]string{"account", "balance"}).AddRow(string(to), uint64(0))
	}

	mock.ExpectBegin()
	mock.ExpectExec("SAVEPOINT").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`INSERT INTO "ledger_accounts"`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`SELECT (.+) FROM "ledger_accounts"`).WillReturnRows(fromRow())
	mock.ExpectExec(`INSERT INTO "ledger_accounts"`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`SELECT (.+) FROM "ledger_accounts"`).WillReturnRows(toRow())
	mock.ExpectExec(`UPDATE "ledger_accounts"`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE "ledger_accounts"`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectRollback()

	base := NewGormLedger(db)
	writeFailed := errors.New("write failed")

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := base.WithTx(tx).Transfer(context.Background(), from, to, 40); err != nil {
			return err
		}
		return writeFailed
	})

	require.ErrorIs(t, err, writeFailed)
	require.NoError(t, mock.ExpectationsWereMet())
}
