package models

import "time"

// LedgerAccount is one balance row in the custodial ledger. Account names
// are opaque to the storage layer; vault and actor naming lives with the
// ledger package.
type LedgerAccount struct {
	Account string `gorm:"primaryKey;size:128" json:"account"`
	Balance uint64 `gorm:"type:bigint;not null" json:"balance"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (*LedgerAccount) TableName() string {
	return "ledger_accounts"
}
