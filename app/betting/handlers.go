package betting

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/predixio/settle/app/api"
	"github.com/predixio/settle/models"
)

// Handler handles HTTP requests for bets and odds
type Handler struct {
	service Service
}

// NewHandler creates a new betting handler
func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// PlaceBet godoc
// @Summary Place a bet
// @Description Stake an amount on one market outcome
// @Tags betting
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body PlaceBetRequest true "Bet request"
// @Success 201 {object} api.Response{data=BetResponse}
// @Failure 400 {object} api.Response{error=api.ErrorInfo}
// @Failure 409 {object} api.Response{error=api.ErrorInfo}
// @Router /api/v1/bets [post]
func (h *Handler) PlaceBet(c *gin.Context) {
	payload := api.GetPayload(c)
	if payload == nil {
		api.UnauthorizedResponse(c)
		return
	}

	var req PlaceBetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.ValidationErrorResponse(c, err.Error())
		return
	}

	bet, err := h.service.PlaceBet(c.Request.Context(), payload.ActorID, &req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	api.CreatedResponse(c, "Bet placed successfully", bet)
}

// GetOdds godoc
// @Summary Get market odds
// @Description Current odds board for one market
// @Tags betting
// @Produce json
// @Param id path string true "Market ID"
// @Success 200 {object} api.Response{data=OddsResponse}
// @Failure 404 {object} api.Response{error=api.ErrorInfo}
// @Router /api/v1/markets/{id}/odds [get]
func (h *Handler) GetOdds(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		api.ValidationErrorResponse(c, "invalid market id")
		return
	}

	odds, err := h.service.GetOdds(c.Request.Context(), id)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	api.SuccessResponse(c, http.StatusOK, "Odds retrieved successfully", odds)
}

// GetPositions godoc
// @Summary List my positions
// @Description The caller's positions on one market
// @Tags betting
// @Produce json
// @Security BearerAuth
// @Param id path string true "Market ID"
// @Success 200 {object} api.Response{data=[]PositionResponse}
// @Router /api/v1/markets/{id}/positions [get]
func (h *Handler) GetPositions(c *gin.Context) {
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

	positions, err := h.service.GetPositions(c.Request.Context(), payload.ActorID, id)
	if err != nil {
		api.InternalErrorResponse(c, "Failed to list positions")
		return
	}

	api.SuccessResponse(c, http.StatusOK, "Positions retrieved successfully", positions)
}

func (h *Handler) writeServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, models.ErrRecordNotFound):
		api.NotFoundResponse(c, "Market")
	case errors.Is(err, models.ErrMarketNotActive),
		errors.Is(err, models.ErrMarketExpired):
		api.ConflictResponse(c, err.Error())
	default:
		api.ErrorResponse(c, http.StatusBadRequest, "BET_ERROR", err.Error(), nil)
	}
}
