package betting

import (
	"errors"
	"time"
)

// Config holds betting module configuration
type Config struct {
	// OddsCacheTTL bounds how stale a cached odds snapshot may get.
	OddsCacheTTL time.Duration `env:"BETTING_ODDS_CACHE_TTL" env-default:"5s"`

	// DefaultPerPage is the page size for position listings.
	DefaultPerPage int `env:"BETTING_DEFAULT_PER_PAGE" env-default:"20"`
}

// Validate checks the configuration
func (c *Config) Validate() error {
	if c.OddsCacheTTL < 0 {
		return errors.New("odds cache TTL cannot be negative")
	}
	if c.DefaultPerPage <= 0 {
		return errors.New("default per page must be positive")
	}
	return nil
}

// GetDefaultConfig returns the default betting configuration
func GetDefaultConfig() *Config {
	return &Config{
		OddsCacheTTL:   5 * time.Second,
		DefaultPerPage: 20,
	}
}
