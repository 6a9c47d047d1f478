package main

import (
	"fmt"
	"log"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/predixio/settle/app"
	"github.com/predixio/settle/app/api"
	"github.com/predixio/settle/app/betting"
	"github.com/predixio/settle/app/database"
	"github.com/predixio/settle/app/liquidity"
	"github.com/predixio/settle/app/markets"
	"github.com/predixio/settle/app/settlement"
	"github.com/predixio/settle/internal/cache"
	"github.com/predixio/settle/internal/ledger"
	"github.com/predixio/settle/internal/logger"
	"github.com/predixio/settle/internal/sanitizer"
	"github.com/predixio/settle/internal/security"
)

func main() {
	cfg, err := app.LoadConfig()
	if err != nil {
		log.Fatal("unable to load configuration: ", err)
	}

	appLogger := logger.NewZeroLogger(os.Stdout, logger.LevelInfo, logger.Fields{
		"service": "settle",
		"env":     cfg.Env,
	})

	db, err := database.New(&cfg.DB)
	if err != nil {
		log.Fatal("unable to connect to database: ", err)
	}

	if err := database.Migrate(&cfg.DB, cfg.MigrationsPath); err != nil {
		log.Fatal("unable to run migrations: ", err)
	}

	tokenMaker, err := security.NewPasetoMaker(cfg.TokenSymmetricKey)
	if err != nil {
		log.Fatal("unable to create token maker: ", err)
	}

	ldg := ledger.NewGormLedger(db)
	clock := ledger.SystemClock{}
	htmlStripper := sanitizer.NewHTMLStripper()

	var oddsCache cache.Cache[betting.OddsResponse]
	switch cfg.CacheBackend {
	case cache.RedisBackend:
		oddsCache = cache.NewCache[betting.OddsResponse](cache.RedisBackend, &cache.RedisOptions{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
	default:
		oddsCache = cache.NewCache[betting.OddsResponse](cache.MemoryBackend)
	}

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()
	r.Use(api.CorsMiddleware())
	r.GET("/healthz", api.HealthCheck)

	apiV1 := r.Group("/api/v1")
	apiV1.Use(api.AuthenticateOptional(tokenMaker))

	markets.Init(apiV1, markets.Dependencies{
		DB:        db,
		Config:    &cfg.Markets,
		Ledger:    ldg,
		Clock:     clock,
		Sanitizer: htmlStripper,
		Logger:    appLogger,
	})

	betting.Init(apiV1, betting.Dependencies{
		DB:        db,
		Config:    &cfg.Betting,
		Ledger:    ldg,
		Clock:     clock,
		OddsCache: oddsCache,
		Logger:    appLogger,
	})

	liquidity.Init(apiV1, liquidity.Dependencies{
		DB:     db,
		Config: &cfg.Liquidity,
		Ledger: ldg,
		Clock:  clock,
		Logger: appLogger,
	})

	settlement.Init(apiV1, settlement.Dependencies{
		DB:     db,
		Ledger: ldg,
		Clock:  clock,
		Logger: appLogger,
	})

	addr := fmt.Sprintf("%s:%s", cfg.AppHost, cfg.AppPort)
	appLogger.Info("starting api server", map[string]interface{}{"addr": addr})
	if err := r.Run(addr); err != nil {
		log.Fatal("server stopped: ", err)
	}
}
