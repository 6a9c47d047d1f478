package markets

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/predixio/settle/app/api"
	"github.com/predixio/settle/internal/ledger"
	"github.com/predixio/settle/internal/logger"
	"github.com/predixio/settle/internal/sanitizer"
	"github.com/predixio/settle/internal/security"
)

// Dependencies represents the dependencies needed for the markets module
type Dependencies struct {
	DB        *gorm.DB
	Config    *Config
	Ledger    ledger.Ledger
	Clock     ledger.Clock
	Sanitizer sanitizer.HTMLStripperer
	Logger    logger.Logger
}

// Init initializes the markets module and mounts routes
func Init(r *gin.RouterGroup, deps Dependencies) {
	config := deps.Config
	if config == nil {
		config = GetDefaultConfig()
	}

	if err := config.Validate(); err != nil {
		panic("Invalid markets configuration: " + err.Error())
	}

	clock := deps.Clock
	if clock == nil {
		clock = ledger.SystemClock{}
	}

	repo := NewRepository(deps.DB)
	srvs := NewService(deps.DB, repo, config, deps.Ledger, clock, deps.Sanitizer, deps.Logger)
	handler := NewHandler(srvs)

	marketsGroup := r.Group("/markets")
	marketsGroup.GET("", handler.GetMarkets)
	marketsGroup.GET("/:id", handler.GetMarketByID)
	marketsGroup.POST("", api.Can(security.RoleCreator), handler.CreateMarket)
	marketsGroup.POST("/:id/pause", api.Can(security.RoleAdmin), handler.PauseMarket)
	marketsGroup.POST("/:id/resume", api.Can(security.RoleAdmin), handler.ResumeMarket)
	marketsGroup.POST("/:id/cancel", api.Can(security.RoleCreator, security.RoleOracle), handler.CancelMarket)
}
