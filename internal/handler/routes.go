package handler

import (
	"github.com/accrue-app/accrue-backend/internal/middleware"
	"github.com/labstack/echo/v4"
)

// RegisterRoutes sets up all API routes
func RegisterRoutes(e *echo.Echo, authMiddleware *middleware.AuthMiddleware, rateLimiter *middleware.RateLimiter, authHandler *AuthHandler, profileHandler *ProfileHandler, incomeHandler *IncomeHandler, budgetHandler *BudgetHandler, dashboardHandler *DashboardHandler, rateHandler *RateHandler, uploadHandler *UploadHandler, wsHandler *WebSocketHandler) {
	api := e.Group("/api")

	// Rates are public; the per-IP limiter stands in for authentication
	api.GET("/rates", rateHandler.GetRate, middleware.RateLimitMiddleware(rateLimiter))

	// Auth routes (protected)
	auth := api.Group("/auth")
	auth.Use(authMiddleware.Authenticate())
	auth.POST("/callback", authHandler.Callback)
	auth.GET("/me", authHandler.Me)

	// Profile, onboarding and settings (protected)
	profile := api.Group("")
	profile.Use(authMiddleware.Authenticate())
	profile.GET("/profile", profileHandler.GetProfile)
	profile.POST("/onboarding", profileHandler.Onboard)
	profile.PUT("/settings", profileHandler.UpdateSettings)

	// Income routes (protected)
	income := api.Group("/income")
	income.Use(authMiddleware.Authenticate())
	income.POST("", incomeHandler.CreateIncome)
	income.GET("", incomeHandler.ListIncomes)
	income.GET("/:id", incomeHandler.GetIncome)
	income.PUT("/:id", incomeHandler.UpdateIncome)
	income.DELETE("/:id", incomeHandler.DeleteIncome)

	// Budget routes (protected)
	budgets := api.Group("/budgets")
	budgets.Use(authMiddleware.Authenticate())
	budgets.GET("", budgetHandler.ListBudgets)

	// Dashboard routes (protected)
	dashboard := api.Group("/dashboard")
	dashboard.Use(authMiddleware.Authenticate())
	dashboard.GET("/summary", dashboardHandler.GetSummary)

	// Profile image storage (protected)
	uploads := api.Group("")
	uploads.Use(authMiddleware.Authenticate())
	uploads.POST("/uploads/profile", uploadHandler.CreateProfileUpload)
	uploads.GET("/images/*", uploadHandler.GetProfileImage)

	// WebSocket endpoint authenticates via query token
	e.GET("/ws", wsHandler.HandleWS)
}
