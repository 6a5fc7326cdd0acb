package routes

import (
	"net/http"
	"shop-cart/controllers"
	"shop-cart/middleware"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type Controllers struct {
	Cart     *controllers.CartController
	Loyalty  *controllers.LoyaltyController
	Checkout *controllers.CheckoutController
	Session  *controllers.SessionController
}

func SetupRoutes(router *gin.Engine, ctrl Controllers) {
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	router.POST("/session/logout", ctrl.Session.Logout)

	read := router.Group("/")
	read.Use(middleware.SessionMiddleware())
	{
		read.GET("/cart", ctrl.Cart.GetCart)
		read.GET("/loyalty/points", ctrl.Loyalty.GetPoints)
		read.POST("/loyalty/quote", ctrl.Loyalty.Quote)
		read.POST("/checkout/quote", ctrl.Checkout.Quote)
	}

	auth := router.Group("/")
	auth.Use(middleware.AuthMiddleware())
	{
		auth.POST("/cart/sync", ctrl.Cart.SyncCart)
		auth.POST("/cart/items", ctrl.Cart.AddItem)
		auth.PATCH("/cart/items", ctrl.Cart.UpdateItem)
		auth.POST("/cart/items/decrement", ctrl.Cart.DecrementItem)
		auth.DELETE("/cart/items", ctrl.Cart.RemoveItem)
		auth.DELETE("/cart", ctrl.Cart.ClearCart)
		auth.POST("/checkout", ctrl.Checkout.PlaceOrder)
	}
}
