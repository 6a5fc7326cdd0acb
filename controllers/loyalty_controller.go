package controllers

import (
	"net/http"
	"shop-cart/middleware"
	"shop-cart/models"
	"shop-cart/services"

	"github.com/gin-gonic/gin"
)

type LoyaltyController struct {
	loyaltyService *services.LoyaltyService
	store          *services.CartStore
}

func NewLoyaltyController(loyaltyService *services.LoyaltyService, store *services.CartStore) *LoyaltyController {
	return &LoyaltyController{loyaltyService: loyaltyService, store: store}
}

// @Summary Get points balance
// @Description Current loyalty balance. Falls back to the last known balance, flagged stale, when the backend is unavailable.
// @Tags Loyalty
// @Security BearerAuth
// @Produce json
// @Success 200 {object} models.Response
// @Router /loyalty/points [get]
func (ctrl *LoyaltyController) GetPoints(c *gin.Context) {
	account := ctrl.loyaltyService.Balance(c.Request.Context(), middleware.GetSession(c))
	c.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: "Points retrieved successfully",
		Data:    account,
	})
}

// @Summary Quote points
// @Description How many points can be applied to the current cart and what they are worth
// @Tags Loyalty
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body models.PointsQuoteRequest true "Points to apply"
// @Success 200 {object} models.Response
// @Router /loyalty/quote [post]
func (ctrl *LoyaltyController) Quote(c *gin.Context) {
	var req models.PointsQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	ctx, session := c.Request.Context(), middleware.GetSession(c)
	ctrl.store.Bind(ctx, session)
	account := ctrl.loyaltyService.Balance(ctx, session)
	quote := ctrl.loyaltyService.Quote(account.AvailablePoints, ctrl.store.View().Totals.AdjustedTotal, req.PointsToUse)

	c.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: "Points quote",
		Data:    quote,
	})
}
