package settlement

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/predixio/settle/app/api"
	"github.com/predixio/settle/internal/ledger"
	"github.com/predixio/settle/internal/logger"
	"github.com/predixio/settle/internal/security"
)

// Dependencies represents the dependencies needed for the settlement module
type Dependencies struct {
	DB     *gorm.DB
	Ledger ledger.Ledger
	Clock  ledger.Clock
	Logger logger.Logger
}

// Init initializes the settlement module and mounts routes
func Init(r *gin.RouterGroup, deps Dependencies) {
	clock := deps.Clock
	if clock == nil {
		clock = ledger.SystemClock{}
	}

	repo := NewRepository(deps.DB)
	srvs := NewService(deps.DB, repo, deps.Ledger, clock, deps.Logger)
	handler := NewHandler(srvs)

	r.POST("/resolutions", api.Can(security.RoleOracle), handler.ResolveMarket)
	r.POST("/markets/:id/claim", api.Can(security.RoleBettor), handler.ClaimWinnings)
	r.POST("/markets/:id/refund", api.Can(security.RoleBettor), handler.ClaimRefund)
	r.GET("/markets/:id/resolution", handler.GetResolution)
}
