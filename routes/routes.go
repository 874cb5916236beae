package routes

import (
	"github.com/ayele-dev/zemcart/controllers"
	"github.com/ayele-dev/zemcart/middleware"
	"github.com/ayele-dev/zemcart/utils"
	"github.com/gin-gonic/gin"
)

// SetupRouter initializes and returns the Gin router with all routes
func SetupRouter() *gin.Engine {
	router := gin.New()

	router.Use(utils.LoggerMiddleware())
	router.Use(utils.CORSMiddleware())
	router.Use(utils.RecoveryMiddleware())
	router.Use(utils.RequestIDMiddleware())
	router.Use(utils.SecurityHeadersMiddleware())

	api := router.Group("/v1")
	{
		// Auth
		api.POST("/auth/register", controllers.Register)
		api.POST("/auth/login", controllers.Login)

		// Catalog
		api.GET("/products", controllers.ListProducts)
		api.GET("/products/:id", controllers.GetProduct)

		// Payment gateway entry points. The webhook authenticates itself via
		// its body signature, the callback via server-side verification, so
		// neither sits behind the auth middleware.
		api.POST("/payments/kkiapay/webhook", controllers.HandleKkiapayWebhook)
		api.GET("/payments/kkiapay/callback", controllers.HandleKkiapayCallback)

		// Status page feed for the post-payment redirect (no bearer token in
		// a redirected browser).
		api.GET("/orders/:id/status", controllers.GetOrderStatus)

		authed := api.Group("")
		authed.Use(middleware.AuthMiddleware())
		{
			authed.POST("/cart", controllers.AddToCart)
			authed.GET("/cart", controllers.GetCart)
			authed.DELETE("/cart/:productId", controllers.RemoveFromCart)

			authed.POST("/orders", controllers.CreateOrder)
			authed.GET("/orders", controllers.ListOrders)
			authed.GET("/orders/:id", controllers.GetOrder)
			authed.GET("/orders/:id/invoice", controllers.DownloadInvoice)
		}
	}

	return router
}
