package settlement

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/predixio/settle/app/api"
	"github.com/predixio/settle/models"
)

// Handler handles HTTP requests for resolution and claims
type Handler struct {
	service Service
}

// NewHandler creates a new settlement handler
func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// ResolveMarket godoc
// @Summary Resolve a market
// @Description Record the winning outcome and fix the payout ratio
// @Tags settlement
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body ResolveMarketRequest true "Resolution request"
// @Success 200 {object} api.Response{data=ResolutionResponse}
// @Failure 403 {object} api.Response{error=api.ErrorInfo}
// @Failure 409 {object} api.Response{error=api.ErrorInfo}
// @Router /api/v1/resolutions [post]
func (h *Handler) ResolveMarket(c *gin.Context) {
	payload := api.GetPayload(c)
	if payload == nil {
		api.UnauthorizedResponse(c)
		return
	}

	var req ResolveMarketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.ValidationErrorResponse(c, err.Error())
		return
	}

	resolution, err := h.service.ResolveMarket(c.Request.Context(), payload.ActorID, &req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	api.SuccessResponse(c, http.StatusOK, "Market resolved successfully", resolution)
}

// ClaimWinnings godoc
// @Summary Claim winnings
// @Description Settle the caller's positions on a resolved market
// @Tags settlement
// @Produce json
// @Security BearerAuth
// @Param id path string true "Market ID"
// @Success 200 {object} api.Response{data=ClaimResponse}
// @Failure 409 {object} api.Response{error=api.ErrorInfo}
// @Router /api/v1/markets/{id}/claim [post]
func (h *Handler) ClaimWinnings(c *gin.Context) {
	h.claim(c, h.service.ClaimWinnings, "Winnings claimed successfully")
}

// ClaimRefund godoc
// @Summary Claim a refund
// @Description Return the caller's stakes on a cancelled market
// @Tags settlement
// @Produce json
// @Security BearerAuth
// @Param id path string true "Market ID"
// @Success 200 {object} api.Response{data=ClaimResponse}
// @Failure 409 {object} api.Response{error=api.ErrorInfo}
// @Router /api/v1/markets/{id}/refund [post]
func (h *Handler) ClaimRefund(c *gin.Context) {
	h.claim(c, h.service.ClaimRefund, "Refund claimed successfully")
}

// GetResolution godoc
// @Summary Get a market's resolution
// @Tags settlement
// @Produce json
// @Param id path string true "Market ID"
// @Success 200 {object} api.Response{data=ResolutionResponse}
// @Failure 404 {object} api.Response{error=api.ErrorInfo}
// @Router /api/v1/markets/{id}/resolution [get]
func (h *Handler) GetResolution(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		api.ValidationErrorResponse(c, "invalid market id")
		return
	}

	resolution, err := h.service.GetResolution(c.Request.Context(), id)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	api.SuccessResponse(c, http.StatusOK, "Resolution retrieved successfully", resolution)
}

func (h *Handler) claim(c *gin.Context,
	apply func(ctx context.Context, bettorID, marketID uuid.UUID) (*ClaimResponse, error),
	message string) {
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

	claim, err := apply(c.Request.Context(), payload.ActorID, id)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	api.SuccessResponse(c, http.StatusOK, message, claim)
}

func (h *Handler) writeServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, models.ErrRecordNotFound):
		api.NotFoundResponse(c, "Market")
	case errors.Is(err, models.ErrInvalidPosition):
		api.NotFoundResponse(c, "Position")
	case errors.Is(err, models.ErrUnauthorizedResolver):
		api.ForbiddenResponse(c, err.Error())
	case errors.Is(err, models.ErrMarketNotActive),
		errors.Is(err, models.ErrMarketNotExpired),
		errors.Is(err, models.ErrMarketAlreadyResolved),
		errors.Is(err, models.ErrMarketNotResolved),
		errors.Is(err, models.ErrMarketNotCancelled),
		errors.Is(err, models.ErrAlreadyClaimed):
		api.ConflictResponse(c, err.Error())
	default:
		api.ErrorResponse(c, http.StatusBadRequest, "SETTLEMENT_ERROR", err.Error(), nil)
	}
}
