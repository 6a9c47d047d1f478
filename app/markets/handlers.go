package markets

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/predixio/settle/app/api"
	"github.com/predixio/settle/models"
)

// Handler handles HTTP requests for market lifecycle operations
type Handler struct {
	service Service
}

// NewHandler creates a new markets handler
func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// CreateMarket godoc
// @Summary Create a market
// @Description Create a new prediction market with seed liquidity
// @Tags markets
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateMarketRequest true "Market creation request"
// @Success 201 {object} api.Response{data=MarketResponse}
// @Failure 400 {object} api.Response{error=api.ErrorInfo}
// @Failure 401 {object} api.Response{error=api.ErrorInfo}
// @Router /api/v1/markets [post]
func (h *Handler) CreateMarket(c *gin.Context) {
	payload := api.GetPayload(c)
	if payload == nil {
		api.UnauthorizedResponse(c)
		return
	}

	var req CreateMarketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.ValidationErrorResponse(c, err.Error())
		return
	}

	market, err := h.service.CreateMarket(c.Request.Context(), payload.ActorID, &req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	api.CreatedResponse(c, "Market created successfully", market)
}

// GetMarkets godoc
// @Summary List markets
// @Description List markets with filters and pagination
// @Tags markets
// @Produce json
// @Param status query string false "Filter by status" Enums(active,paused,resolved,cancelled)
// @Param category query string false "Filter by category"
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Items per page" default(20)
// @Success 200 {object} api.Response{data=MarketListResponse}
// @Router /api/v1/markets [get]
func (h *Handler) GetMarkets(c *gin.Context) {
	var filters MarketFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		api.ValidationErrorResponse(c, err.Error())
		return
	}

	list, err := h.service.GetMarkets(c.Request.Context(), &filters)
	if err != nil {
		api.InternalErrorResponse(c, "Failed to list markets")
		return
	}

	api.SuccessResponse(c, http.StatusOK, "Markets retrieved successfully", list)
}

// GetMarketByID godoc
// @Summary Get a market
// @Description Get one market with its outcomes and current odds
// @Tags markets
// @Produce json
// @Param id path string true "Market ID"
// @Success 200 {object} api.Response{data=MarketResponse}
// @Failure 404 {object} api.Response{error=api.ErrorInfo}
// @Router /api/v1/markets/{id} [get]
func (h *Handler) GetMarketByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		api.ValidationErrorResponse(c, "invalid market id")
		return
	}

	market, err := h.service.GetMarket(c.Request.Context(), id)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	api.SuccessResponse(c, http.StatusOK, "Market retrieved successfully", market)
}

// PauseMarket godoc
// @Summary Pause a market
// @Tags markets
// @Produce json
// @Security BearerAuth
// @Param id path string true "Market ID"
// @Success 200 {object} api.Response{data=MarketResponse}
// @Router /api/v1/markets/{id}/pause [post]
func (h *Handler) PauseMarket(c *gin.Context) {
	h.lifecycle(c, h.service.PauseMarket, "Market paused")
}

// ResumeMarket godoc
// @Summary Resume a paused market
// @Tags markets
// @Produce json
// @Security BearerAuth
// @Param id path string true "Market ID"
// @Success 200 {object} api.Response{data=MarketResponse}
// @Router /api/v1/markets/{id}/resume [post]
func (h *Handler) ResumeMarket(c *gin.Context) {
	h.lifecycle(c, h.service.ResumeMarket, "Market resumed")
}

// CancelMarket godoc
// @Summary Cancel a market
// @Description Void a market; stakes become refundable
// @Tags markets
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Market ID"
// @Param request body CancelMarketRequest false "Cancellation reason"
// @Success 200 {object} api.Response{data=MarketResponse}
// @Router /api/v1/markets/{id}/cancel [post]
func (h *Handler) CancelMarket(c *gin.Context) {
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

	var req CancelMarketRequest
	_ = c.ShouldBindJSON(&req)

	market, err := h.service.CancelMarket(c.Request.Context(), payload.ActorID, id)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	api.SuccessResponse(c, http.StatusOK, "Market cancelled", market)
}

func (h *Handler) lifecycle(c *gin.Context,
	apply func(ctx context.Context, id uuid.UUID) (*MarketResponse, error),
	message string) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		api.ValidationErrorResponse(c, "invalid market id")
		return
	}

	market, err := apply(c.Request.Context(), id)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	api.SuccessResponse(c, http.StatusOK, message, market)
}

func (h *Handler) writeServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, models.ErrRecordNotFound):
		api.NotFoundResponse(c, "Market")
	case errors.Is(err, models.ErrForbidden):
		api.ForbiddenResponse(c, "Not allowed for this market")
	case errors.Is(err, models.ErrMarketNotActive),
		errors.Is(err, models.ErrMarketNotPaused),
		errors.Is(err, models.ErrMarketTerminal),
		errors.Is(err, models.ErrMarketAlreadyResolved):
		api.ConflictResponse(c, err.Error())
	default:
		api.ErrorResponse(c, http.StatusBadRequest, "MARKET_ERROR", err.Error(), nil)
	}
}
