package controllers

import (
	"net/http"
	"shop-cart/models"
	"shop-cart/services"

	"github.com/gin-gonic/gin"
)

type SessionController struct {
	cartService *services.CartService
}

func NewSessionController(cartService *services.CartService) *SessionController {
	return &SessionController{cartService: cartService}
}

// @Summary Logout
// @Description Forget the cart and the cached points balance on this device
// @Tags Session
// @Produce json
// @Success 200 {object} models.Response
// @Router /session/logout [post]
func (ctrl *SessionController) Logout(c *gin.Context) {
	if err := ctrl.cartService.Logout(c.Request.Context()); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: "Logged out",
	})
}
