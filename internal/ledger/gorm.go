package ledger

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/predixio/settle/internal/numeric"
	"github.com/predixio/settle/models"
)

// GormLedger keeps balances in the service's own database. Both rows of a
// transfer are locked in name order, so concurrent transfers against the
// same accounts serialize instead of deadlocking.
type GormLedger struct {
	db *gorm.DB
}

// NewGormLedger creates a database backed ledger
func NewGormLedger(db *gorm.DB) *GormLedger {
	return &GormLedger{db: db}
}

// WithTx binds the ledger to an open transaction. Balance moves made
// through the returned ledger commit and roll back with that
// transaction; nested calls run on savepoints.
func (l *GormLedger) WithTx(tx *gorm.DB) Ledger {
	return &GormLedger{db: tx}
}

func (l *GormLedger) Transfer(ctx context.Context, from, to Account, amount uint64) error {
	if amount == 0 {
		return ErrZeroAmount
	}
	if from == to {
		return ErrSameAccount
	}

	return l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		first, second := from, to
		if second < first {
			first, second = second, first
		}
		rows := make(map[Account]*models.LedgerAccount, 2)
		for _, name := range []Account{first, second} {
			row, err := lockAccount(tx, name)
			if err != nil {
				return err
			}
			rows[name] = row
		}

		src, dst := rows[from], rows[to]
		if src.Balance < amount {
			return ErrInsufficientFunds
		}
		next, err := numeric.Add(dst.Balance, amount)
		if err != nil {
			return err
		}
		src.Balance -= amount
		dst.Balance = next

		if err := tx.Save(src).Error; err != nil {
			return err
		}
		return tx.Save(dst).Error
	})
}

func (l *GormLedger) Mint(ctx context.Context, to Account, amount uint64) error {
	if amount == 0 {
		return ErrZeroAmount
	}
	return l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row, err := lockAccount(tx, to)
		if err != nil {
			return err
		}
		row.Balance, err = numeric.Add(row.Balance, amount)
		if err != nil {
			return err
		}
		return tx.Save(row).Error
	})
}

func (l *GormLedger) Burn(ctx context.Context, from Account, amount uint64) error {
	if amount == 0 {
		return ErrZeroAmount
	}
	return l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row, err := lockAccount(tx, from)
		if err != nil {
			return err
		}
		if row.Balance < amount {
			return ErrInsufficientFunds
		}
		row.Balance -= amount
		return tx.Save(row).Error
	})
}

func (l *GormLedger) Balance(ctx context.Context, account Account) (uint64, error) {
	var row models.LedgerAccount
	err := l.db.WithContext(ctx).First(&row, "account = ?", string(account)).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return row.Balance, nil
}

// lockAccount loads an account row under a row lock, creating the zero
// row first if the account has never been touched.
func lockAccount(tx *gorm.DB, name Account) (*models.LedgerAccount, error) {
	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.LedgerAccount{Account: string(name)}).Error; err != nil {
		return nil, err
	}
	var row models.LedgerAccount
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&row, "account = ?", string(name)).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}
