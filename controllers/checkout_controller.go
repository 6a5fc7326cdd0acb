package controllers

import (
	"net/http"
	"shop-cart/middleware"
	"shop-cart/models"
	"shop-cart/services"

	"github.com/gin-gonic/gin"
)

type CheckoutController struct {
	checkoutService *services.CheckoutService
	displayPlaces   int32
}

func NewCheckoutController(checkoutService *services.CheckoutService, displayPlaces int32) *CheckoutController {
	return &CheckoutController{checkoutService: checkoutService, displayPlaces: displayPlaces}
}

// @Summary Checkout quote
// @Description Subtotal, line discounts, points discount and final total for the current cart
// @Tags Checkout
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body models.PointsQuoteRequest true "Points to apply"
// @Success 200 {object} models.Response
// @Router /checkout/quote [post]
func (ctrl *CheckoutController) Quote(c *gin.Context) {
	var req models.PointsQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	request := ctrl.checkoutService.Quote(c.Request.Context(), middleware.GetSession(c), req.PointsToUse)
	c.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: "Checkout quote",
		Data: gin.H{
			"pointsToUse": request.PointsToUse,
			"itemCount":   request.ItemCount,
			"totals":      services.Summary(request, ctrl.displayPlaces),
		},
	})
}

// @Summary Place order
// @Description Validate shipping and payment details and submit the order
// @Tags Checkout
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body models.CheckoutInput true "Shipping, payment and points"
// @Success 201 {object} models.Response
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /checkout [post]
func (ctrl *CheckoutController) PlaceOrder(c *gin.Context) {
	var in models.CheckoutInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondBindError(c, err)
		return
	}

	if _, err := ctrl.checkoutService.Validate(in); err != nil {
		respondError(c, err)
		return
	}

	ctx := c.Request.Context()
	session := middleware.GetSession(c)

	checkout := ctrl.checkoutService.Begin(ctrl.checkoutService.Prepare(ctx, session))
	result, err := checkout.PlaceOrder(ctx, session, in)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, models.Response{
		Success: true,
		Message: "Order placed successfully",
		Data:    result,
	})
}
