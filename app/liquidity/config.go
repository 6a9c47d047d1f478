package liquidity

import (
	"errors"

	"github.com/predixio/settle/models"
)

// Config holds liquidity module configuration
type Config struct {
	// WithdrawalFeeBps is charged on withdrawals while the market is active.
	WithdrawalFeeBps uint32 `env:"LIQUIDITY_WITHDRAWAL_FEE_BPS" env-default:"30"`

	// RefundExcess returns the non-binding side's surplus on lopsided
	// deposits instead of absorbing it into the pool.
	RefundExcess bool `env:"LIQUIDITY_REFUND_EXCESS" env-default:"false"`
}

// Validate checks the configuration
func (c *Config) Validate() error {
	if c.WithdrawalFeeBps >= models.BpsDenominator {
		return errors.New("withdrawal fee must be below 100%")
	}
	return nil
}

// GetDefaultConfig returns the default liquidity configuration
func GetDefaultConfig() *Config {
	return &Config{
		WithdrawalFeeBps: models.DefaultWithdrawalFeeBps,
		RefundExcess:     false,
	}
}
