package controllers

import (
	"net/http"
	"shop-cart/middleware"
	"shop-cart/models"
	"shop-cart/services"

	"github.com/gin-gonic/gin"
)

type CartController struct {
	cartService   *services.CartService
	displayPlaces int32
}

func NewCartController(cartService *services.CartService, displayPlaces int32) *CartController {
	return &CartController{cartService: cartService, displayPlaces: displayPlaces}
}

// @Summary Get cart
// @Description Reconciled cart plus the local and backend views. Pass refresh=true to fetch the backend cart first.
// @Tags Cart
// @Security BearerAuth
// @Produce json
// @Param refresh query bool false "Fetch the backend cart first"
// @Success 200 {object} models.Response
// @Router /cart [get]
func (ctrl *CartController) GetCart(c *gin.Context) {
	view := ctrl.cartService.View(c.Request.Context(), middleware.GetSession(c), c.Query("refresh") == "true")
	c.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: "Cart retrieved successfully",
		Data:    withDisplay(view, ctrl.displayPlaces),
	})
}

// @Summary Sync cart
// @Description Fetch the backend cart and reconcile it with the local cart
// @Tags Cart
// @Security BearerAuth
// @Produce json
// @Success 200 {object} models.Response
// @Router /cart/sync [post]
func (ctrl *CartController) SyncCart(c *gin.Context) {
	view := ctrl.cartService.View(c.Request.Context(), middleware.GetSession(c), true)
	c.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: "Cart synchronized",
		Data:    withDisplay(view, ctrl.displayPlaces),
	})
}

// @Summary Add item
// @Description Add a product variant to the cart, merging with an identical line
// @Tags Cart
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body models.AddItemRequest true "Line to add"
// @Success 201 {object} models.Response
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 502 {object} models.ErrorResponse
// @Router /cart/items [post]
func (ctrl *CartController) AddItem(c *gin.Context) {
	var req models.AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	view, err := ctrl.cartService.AddItem(c.Request.Context(), middleware.GetSession(c), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, models.Response{
		Success: true,
		Message: "Item added to cart",
		Data:    withDisplay(view, ctrl.displayPlaces),
	})
}

// @Summary Update item quantity
// @Description Set the quantity of a cart line. Zero removes the line.
// @Tags Cart
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body models.UpdateItemRequest true "Line and quantity"
// @Success 200 {object} models.Response
// @Failure 404 {object} models.ErrorResponse
// @Router /cart/items [patch]
func (ctrl *CartController) UpdateItem(c *gin.Context) {
	var req models.UpdateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	view, err := ctrl.cartService.UpdateItem(c.Request.Context(), middleware.GetSession(c), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: "Cart updated",
		Data:    withDisplay(view, ctrl.displayPlaces),
	})
}

// @Summary Decrement item
// @Description Lower the quantity of a cart line by one
// @Tags Cart
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body models.RemoveItemRequest true "Line"
// @Success 200 {object} models.Response
// @Router /cart/items/decrement [post]
func (ctrl *CartController) DecrementItem(c *gin.Context) {
	var req models.RemoveItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	view, err := ctrl.cartService.DecrementItem(c.Request.Context(), middleware.GetSession(c), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: "Cart updated",
		Data:    withDisplay(view, ctrl.displayPlaces),
	})
}

// @Summary Remove item
// @Description Remove a cart line
// @Tags Cart
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body models.RemoveItemRequest true "Line"
// @Success 200 {object} models.Response
// @Router /cart/items [delete]
func (ctrl *CartController) RemoveItem(c *gin.Context) {
	var req models.RemoveItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	view, err := ctrl.cartService.RemoveItem(c.Request.Context(), middleware.GetSession(c), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: "Item removed from cart",
		Data:    withDisplay(view, ctrl.displayPlaces),
	})
}

// @Summary Clear cart
// @Tags Cart
// @Security BearerAuth
// @Produce json
// @Success 200 {object} models.Response
// @Router /cart [delete]
func (ctrl *CartController) ClearCart(c *gin.Context) {
	view, err := ctrl.cartService.Clear(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: "Cart cleared",
		Data:    withDisplay(view, ctrl.displayPlaces),
	})
}
