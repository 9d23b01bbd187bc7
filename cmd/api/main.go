package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/accrue-app/accrue-backend/internal/config"
	"github.com/accrue-app/accrue-backend/internal/handler"
	"github.com/accrue-app/accrue-backend/internal/middleware"
	"github.com/accrue-app/accrue-backend/internal/repository/postgres"
	"github.com/accrue-app/accrue-backend/internal/repository/storage"
	"github.com/accrue-app/accrue-backend/internal/service"
	ws "github.com/accrue-app/accrue-backend/internal/websocket"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// Initialize zerolog
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if os.Getenv("ENV") != "production" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Apply schema migrations before opening the pool
	if err := postgres.RunMigrations(cfg.DatabaseURL); err != nil {
		log.Fatal().Err(err).Msg("Failed to run migrations")
	}

	// Connect to database
	pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer pool.Close()

	// Verify database connection
	if err := pool.Ping(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Failed to ping database")
	}
	log.Info().Msg("Connected to database")

	// Initialize repositories
	userRepo := postgres.NewUserRepository(pool)
	incomeRepo := postgres.NewIncomeRepository(pool)
	budgetRepo := postgres.NewBudgetRepository(pool)

	// Object storage is optional; uploads are disabled when credentials
	// are missing
	var objectStore storage.ObjectStore
	if cfg.S3.AccessKeyID != "" && cfg.S3.SecretAccessKey != "" {
		store, err := storage.NewS3ObjectStore(context.Background(), cfg.S3)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize object storage")
		}
		objectStore = store
		log.Info().Str("bucket", cfg.S3.Bucket).Msg("Object storage enabled")
	} else {
		log.Warn().Msg("Object storage not configured, uploads disabled")
	}

	// WebSocket hub for live client updates
	hub := ws.NewHub()

	// Initialize services
	authService := service.NewAuthService(userRepo)
	profileService := service.NewProfileService(userRepo, hub)
	incomeService := service.NewIncomeService(incomeRepo, userRepo, hub)
	budgetService := service.NewBudgetService(budgetRepo)
	dashboardService := service.NewDashboardService(incomeRepo)
	rateService := service.NewRateService(cfg.RateAPIBaseURL)
	uploadService := service.NewUploadService(objectStore)

	// Create user provider adapter for auth middleware
	userProvider := &userProviderAdapter{authService: authService}

	// Initialize auth middleware
	authMiddleware, err := middleware.NewAuthMiddleware(cfg.Auth0Domain, cfg.Auth0Audience, userProvider)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create auth middleware")
	}

	// Per-IP limiter for the public rates endpoint
	rateLimiter := middleware.NewRateLimiter()
	defer rateLimiter.Stop()

	// WebSocket token validator resolves user IDs from Auth0 subjects
	wsValidator, err := ws.NewAuth0JWTValidator(cfg.Auth0Domain, cfg.Auth0Audience, userProvider)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create WebSocket token validator")
	}

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authService)
	profileHandler := handler.NewProfileHandler(profileService)
	incomeHandler := handler.NewIncomeHandler(incomeService)
	budgetHandler := handler.NewBudgetHandler(budgetService)
	dashboardHandler := handler.NewDashboardHandler(dashboardService)
	rateHandler := handler.NewRateHandler(rateService)
	uploadHandler := handler.NewUploadHandler(uploadService)
	wsHandler := handler.NewWebSocketHandler(hub, wsValidator, cfg.CORSOrigins)

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Request ID middleware
	e.Use(echomiddleware.RequestID())

	// CORS middleware
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// Security headers middleware (helmet-like)
	e.Use(echomiddleware.SecureWithConfig(echomiddleware.SecureConfig{
		XSSProtection:         "1; mode=block",
		ContentTypeNosniff:    "nosniff",
		XFrameOptions:         "DENY",
		HSTSMaxAge:            31536000,
		ContentSecurityPolicy: "default-src 'self'",
		ReferrerPolicy:        "strict-origin-when-cross-origin",
	}))

	// Request logging middleware with zerolog
	e.Use(zerologMiddleware())

	// Recovery middleware
	e.Use(echomiddleware.Recover())

	// Health check endpoint
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	// Register API routes
	handler.RegisterRoutes(e, authMiddleware, rateLimiter, authHandler, profileHandler, incomeHandler, budgetHandler, dashboardHandler, rateHandler, uploadHandler, wsHandler)

	// Start server in goroutine
	go func() {
		log.Info().Str("port", cfg.Port).Msg("Starting server")
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

// userProviderAdapter adapts AuthService to middleware.UserProvider and
// websocket.UserLookup
type userProviderAdapter struct {
	authService *service.AuthService
}

// GetUserByAuth0ID implements middleware.UserProvider
func (a *userProviderAdapter) GetUserByAuth0ID(auth0ID string) (uuid.UUID, bool, error) {
	user, err := a.authService.GetUserByAuth0ID(context.Background(), auth0ID)
	if err != nil {
		return uuid.Nil, false, err
	}
	return user.ID, user.Onboarded, nil
}

// GetUserIDByAuth0ID implements websocket.UserLookup
func (a *userProviderAdapter) GetUserIDByAuth0ID(auth0ID string) (uuid.UUID, error) {
	user, err := a.authService.GetUserByAuth0ID(context.Background(), auth0ID)
	if err != nil {
		return uuid.Nil, err
	}
	return user.ID, nil
}

// zerologMiddleware returns a middleware that logs requests using zerolog
func zerologMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			req := c.Request()
			res := c.Response()

			log.Info().
				Str("method", req.Method).
				Str("path", req.URL.Path).
				Int("status", res.Status).
				Dur("latency", time.Since(start)).
				Str("request_id", res.Header().Get(echo.HeaderXRequestID)).
				Msg("request")

			return nil
		}
	}
}
