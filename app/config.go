package app

import (
	"github.com/predixio/settle/app/betting"
	"github.com/predixio/settle/app/database"
	"github.com/predixio/settle/app/liquidity"
	"github.com/predixio/settle/app/markets"
	"github.com/predixio/settle/internal/nexus"
)

type Config struct {
	DB database.Config

	AppHost string `env:"APP_HOST" env-default:"localhost"`
	AppPort string `env:"APP_PORT" env-default:"8080"`
	Env     string `env:"APP_ENV" env-default:"development"`

	// TokenSymmetricKey encrypts capability tokens. Must be exactly 32
	// bytes.
	TokenSymmetricKey string `env:"TOKEN_SYMMETRIC_KEY" validate:"required,len=32"`

	MigrationsPath string `env:"MIGRATIONS_PATH" env-default:"migrations"`

	CacheBackend  string `env:"CACHE_BACKEND" env-default:"memory" validate:"oneof=memory redis"`
	RedisAddr     string `env:"REDIS_ADDR" env-default:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD" env-default:""`

	Markets   markets.Config
	Betting   betting.Config
	Liquidity liquidity.Config
}

// LoadConfig loads the application configuration from environment variables or a config file.
func LoadConfig() (*Config, error) {
	c := &Config{}
	err := nexus.NewLoader().Load(c)
	return c, err
}
