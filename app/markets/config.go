package markets

import (
	"time"

	"github.com/predixio/settle/models"
)

// Config represents the configuration for the markets module
type Config struct {
	DefaultMinBetAmount    uint64        `env:"MARKETS_DEFAULT_MIN_BET"`
	DefaultMaxBetAmount    uint64        `env:"MARKETS_DEFAULT_MAX_BET"`
	DefaultMaxPayoutPerBet uint64        `env:"MARKETS_DEFAULT_MAX_PAYOUT_PER_BET"`
	DefaultCreatorFeeBps   uint32        `env:"MARKETS_DEFAULT_CREATOR_FEE_BPS"`
	DefaultPlatformFeeBps  uint32        `env:"MARKETS_DEFAULT_PLATFORM_FEE_BPS"`
	MinInitialLiquidity    uint64        `env:"MARKETS_MIN_INITIAL_LIQUIDITY"`
	MaxOutcomes            int           `env:"MARKETS_MAX_OUTCOMES"`
	MinMarketDuration      time.Duration `env:"MARKETS_MIN_DURATION"`
}

// Validate validates the market configuration
func (c *Config) Validate() error {
	if c.DefaultCreatorFeeBps > models.MaxCreatorFeeBps {
		return models.ErrCreatorFeeTooHigh
	}
	if c.DefaultPlatformFeeBps > models.MaxPlatformFeeBps {
		return models.ErrPlatformFeeTooHigh
	}
	if c.DefaultMinBetAmount == 0 {
		return models.ErrInvalidBetBounds
	}
	if c.DefaultMaxBetAmount > 0 && c.DefaultMaxBetAmount < c.DefaultMinBetAmount {
		return models.ErrInvalidBetBounds
	}
	if c.MinInitialLiquidity < models.MinInitialLiquidity {
		return models.ErrInsufficientLiquidity
	}
	if c.MaxOutcomes < 2 {
		return models.ErrInvalidOutcomeCount
	}
	return nil
}

// GetDefaultConfig returns the default configuration
func GetDefaultConfig() *Config {
	return &Config{
		DefaultMinBetAmount:    100,
		DefaultMaxBetAmount:    0, // no cap
		DefaultMaxPayoutPerBet: 0, // no cap
		DefaultCreatorFeeBps:   100,
		DefaultPlatformFeeBps:  100,
		MinInitialLiquidity:    models.MinInitialLiquidity,
		MaxOutcomes:            8,
		MinMarketDuration:      time.Hour,
	}
}
