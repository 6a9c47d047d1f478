package betting

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/predixio/settle/app/api"
	"github.com/predixio/settle/internal/cache"
	"github.com/predixio/settle/internal/ledger"
	"github.com/predixio/settle/internal/logger"
	"github.com/predixio/settle/internal/security"
)

// Dependencies represents the dependencies needed for the betting module
type Dependencies struct {
	DB        *gorm.DB
	Config    *Config
	Ledger    ledger.Ledger
	Clock     ledger.Clock
	OddsCache cache.Cache[OddsResponse]
	Logger    logger.Logger
}

// Init initializes the betting module and mounts routes
func Init(r *gin.RouterGroup, deps Dependencies) {
	config := deps.Config
	if config == nil {
		config = GetDefaultConfig()
	}

	if err := config.Validate(); err != nil {
		panic("Invalid betting configuration: " + err.Error())
	}

	clock := deps.Clock
	if clock == nil {
		clock = ledger.SystemClock{}
	}

	oddsCache := deps.OddsCache
	if oddsCache == nil {
		oddsCache = cache.NewCache[OddsResponse](cache.MemoryBackend)
	}

	repo := NewRepository(deps.DB)
	srvs := NewService(deps.DB, repo, config, deps.Ledger, clock, oddsCache, deps.Logger)
	handler := NewHandler(srvs)

	r.POST("/bets", api.Can(security.RoleBettor), handler.PlaceBet)
	r.GET("/markets/:id/odds", handler.GetOdds)
	r.GET("/markets/:id/positions", handler.GetPositions)
}
