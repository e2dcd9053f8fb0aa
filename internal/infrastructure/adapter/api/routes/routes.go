package routes

import (
	coreport "github.com/reelkit/credits-service/internal/domain/port/core"
	"github.com/reelkit/credits-service/internal/infrastructure/adapter/api/handler"
	"github.com/reelkit/credits-service/internal/infrastructure/adapter/api/middleware"
	"github.com/gin-gonic/gin"
)

// SetupRoutes configures all the routes for the API
func SetupRoutes(
	router *gin.Engine,
	creditHandler *handler.CreditHandler,
	costHandler *handler.CostHandler,
	webhookHandler *handler.WebhookHandler,
	healthHandler *handler.HealthHandler,
	jwtSecret string,
	logger coreport.Logger,
) {
	// Liveness probe, no auth
	router.GET("/health", healthHandler.Check)

	// Provider callbacks authenticate via HMAC signature, not bearer tokens
	webhooks := router.Group("/webhooks")
	{
		webhooks.POST("/payment", webhookHandler.HandlePaymentEvent)
	}

	api := router.Group("/api/v1")
	api.Use(middleware.Auth(jwtSecret, logger))
	{
		// User routes
		api.POST("/users", creditHandler.CreateUser)
		api.GET("/users/:userId/credits", creditHandler.GetBalance)
		api.GET("/users/:userId/transactions", creditHandler.ListTransactions)

		// Credit ledger routes
		api.POST("/credits/check", creditHandler.CheckCredits)
		api.POST("/credits/deduct", creditHandler.DeductCredits)
		api.POST("/credits/refund", creditHandler.RefundCredits)

		// Admin routes
		admin := api.Group("/admin")
		admin.Use(middleware.RequireAdmin())
		{
			admin.GET("/costs", costHandler.GetCosts)
			admin.PUT("/costs", costHandler.UpdateCosts)
		}
	}
}

// SetupMiddlewares configures global middlewares for the API
func SetupMiddlewares(router *gin.Engine, logger coreport.Logger) {
	router.Use(middleware.ErrorHandler(logger))
	router.Use(middleware.Logger(logger))
}
