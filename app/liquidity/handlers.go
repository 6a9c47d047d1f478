package liquidity

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/predixio/settle/app/api"
	"github.com/predixio/settle/models"
)

// Handler handles HTTP requests for liquidity operations
type Handler struct {
	service Service
}

// NewHandler creates a new liquidity handler
func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// AddLiquidity godoc
// @Summary Add liquidity
// @Description Deposit into a market's pool and mint LP shares
// @Tags liquidity
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body AddLiquidityRequest true "Deposit request"
// @Success 201 {object} api.Response{data=LiquidityResponse}
// @Failure 400 {object} api.Response{error=api.ErrorInfo}
// @Router /api/v1/liquidity [post]
func (h *Handler) AddLiquidity(c *gin.Context) {
	payload := api.GetPayload(c)
	if payload == nil {
		api.UnauthorizedResponse(c)
		return
	}

	var req AddLiquidityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.ValidationErrorResponse(c, err.Error())
		return
	}

	resp, err := h.service.AddLiquidity(c.Request.Context(), payload.ActorID, &req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	api.CreatedResponse(c, "Liquidity added successfully", resp)
}

// RemoveLiquidity godoc
// @Summary Remove liquidity
// @Description Burn LP shares for a proportional withdrawal
// @Tags liquidity
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body RemoveLiquidityRequest true "Withdrawal request"
// @Success 200 {object} api.Response{data=WithdrawalResponse}
// @Failure 400 {object} api.Response{error=api.ErrorInfo}
// @Router /api/v1/liquidity/withdraw [post]
func (h *Handler) RemoveLiquidity(c *gin.Context) {
	payload := api.GetPayload(c)
	if payload == nil {
		api.UnauthorizedResponse(c)
		return
	}

	var req RemoveLiquidityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.ValidationErrorResponse(c, err.Error())
		return
	}

	resp, err := h.service.RemoveLiquidity(c.Request.Context(), payload.ActorID, &req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	api.SuccessResponse(c, http.StatusOK, "Liquidity removed successfully", resp)
}

// GetPool godoc
// @Summary Get pool state
// @Tags liquidity
// @Produce json
// @Param id path string true "Market ID"
// @Success 200 {object} api.Response{data=PoolResponse}
// @Failure 404 {object} api.Response{error=api.ErrorInfo}
// @Router /api/v1/markets/{id}/pool [get]
func (h *Handler) GetPool(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		api.ValidationErrorResponse(c, "invalid market id")
		return
	}

	pool, err := h.service.GetPool(c.Request.Context(), id)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	api.SuccessResponse(c, http.StatusOK, "Pool retrieved successfully", pool)
}

// GetPosition godoc
// @Summary Get my LP position
// @Tags liquidity
// @Produce json
// @Security BearerAuth
// @Param id path string true "Market ID"
// @Success 200 {object} api.Response{data=PositionResponse}
// @Router /api/v1/markets/{id}/pool/position [get]
func (h *Handler) GetPosition(c *gin.Context) {
	payload := api.GetPayload(c)
	if payload == nil {
		api.UnauthorizedResponse(c)
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		api.ValidationErrorResponse(c, "invalid market id")
		return
	}

	position, err := h.service.GetPosition(c.Request.Context(), payload.ActorID, id)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	api.SuccessResponse(c, http.StatusOK, "Position retrieved successfully", position)
}

func (h *Handler) writeServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, models.ErrRecordNotFound):
		api.NotFoundResponse(c, "Position")
	case errors.Is(err, models.ErrPoolNotFound):
		api.NotFoundResponse(c, "Pool")
	case errors.Is(err, models.ErrMarketNotActive):
		api.ConflictResponse(c, err.Error())
	default:
		api.ErrorResponse(c, http.StatusBadRequest, "LIQUIDITY_ERROR", err.Error(), nil)
	}
}
