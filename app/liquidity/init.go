package liquidity

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/predixio/settle/app/api"
	"github.com/predixio/settle/internal/ledger"
	"github.com/predixio/settle/internal/logger"
	"github.com/predixio/settle/internal/security"
)

// Dependencies represents the dependencies needed for the liquidity module
type Dependencies struct {
	DB     *gorm.DB
	Config *Config
	Ledger ledger.Ledger
	Clock  ledger.Clock
	Logger logger.Logger
}

// Init initializes the liquidity module and mounts routes
func Init(r *gin.RouterGroup, deps Dependencies) {
	config := deps.Config
	if config == nil {
		config = GetDefaultConfig()
	}

	if err := config.Validate(); err != nil {
		panic("Invalid liquidity configuration: " + err.Error())
	}

	clock := deps.Clock
	if clock == nil {
		clock = ledger.SystemClock{}
	}

	repo := NewRepository(deps.DB)
	srvs := NewService(deps.DB, repo, config, deps.Ledger, clock, deps.Logger)
	handler := NewHandler(srvs)

	r.POST("/liquidity", api.Can(security.RoleProvider), handler.AddLiquidity)
	r.POST("/liquidity/withdraw", api.Can(security.RoleProvider), handler.RemoveLiquidity)
	r.GET("/markets/:id/pool", handler.GetPool)
	r.GET("/markets/:id/pool/position", handler.GetPosition)
}
