package controllers

import (
	"net/http"
	"shop-cart/models"
	"shop-cart/services"
	"shop-cart/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-faster/errors"
)

func respondError(c *gin.Context, err error) {
	_ = c.Error(err)

	switch {
	case errors.Is(err, services.ErrLineNotFound):
		c.JSON(http.StatusNotFound, models.ErrorResponse{Success: false, Message: "Item not found in cart"})
		return
	case errors.Is(err, services.ErrRequestInFlight), errors.Is(err, services.ErrCheckoutInProgress):
		c.JSON(http.StatusConflict, models.ErrorResponse{Success: false, Message: "A previous request is still being processed"})
		return
	case errors.Is(err, services.ErrCheckoutCompleted):
		c.JSON(http.StatusConflict, models.ErrorResponse{Success: false, Message: "This order has already been placed"})
		return
	}

	appErr := models.AsAppError(err)
	c.JSON(statusFor(appErr), models.ErrorResponse{
		Success:  false,
		Message:  appErr.Message,
		Kind:     appErr.Kind,
		Category: appErr.Category,
		Fields:   appErr.Fields,
	})
}

func respondBindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, models.ErrorResponse{
		Success: false,
		Message: "Invalid request body",
		Error:   err.Error(),
		Kind:    models.KindValidation,
	})
}

func statusFor(appErr *models.AppError) int {
	switch appErr.Kind {
	case models.KindValidation:
		return http.StatusBadRequest
	case models.KindAuthorization:
		if appErr.Status == http.StatusForbidden {
			return http.StatusForbidden
		}
		return http.StatusUnauthorized
	case models.KindNetwork:
		return http.StatusBadGateway
	case models.KindDomain:
		if appErr.Status == http.StatusNotFound {
			return http.StatusNotFound
		}
		return http.StatusConflict
	default:
		if appErr.Status >= 500 {
			return http.StatusBadGateway
		}
		return http.StatusInternalServerError
	}
}

func withDisplay(view models.CartView, places int32) models.CartView {
	totals := view.Cart.Totals
	view.Display = models.TotalsDisplay{
		GrossTotal:    utils.DisplayAmount(totals.GrossTotal, places),
		AdjustedTotal: utils.DisplayAmount(totals.AdjustedTotal, places),
		Discount:      utils.DisplayAmount(services.CartDiscount(view.Cart), places),
		PointsTotal:   totals.PointsTotal,
		ItemCount:     totals.ItemCount,
	}
	return view
}
