package main

import (
	"net/http"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"pantry-service/internal/handler"
	mid "pantry-service/internal/middleware"
	"pantry-service/pkg/config"
	"pantry-service/pkg/database"
	"pantry-service/pkg/jwtutil"
	"pantry-service/pkg/logger"
	"pantry-service/prometheus"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		// Just log a warning, don't fail if .env file is not found
		// This allows the service to run in environments where env vars are set differently
		// such as production environments with proper environment configuration
		// The fallback values will be used in case env vars are not set
	}

	// Load configuration
	appConfig, err := config.Load()
	if err != nil {
		// Can't use structured logger yet since it's not initialized
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	logger.InitLogger(appConfig)
	log := logger.GetLogger()
	defer log.Sync()

	log.Info("Starting pantry-service",
		zap.String("environment", appConfig.Server.Env),
		zap.String("port", appConfig.Server.Port))

	// Initialize JWT utility
	jwtutil.Initialize(&appConfig.JWT)
	log.Info("JWT utility initialized")

	// Initialize Prometheus metrics
	prometheus.InitMetrics(appConfig)
	log.Info("Prometheus metrics initialized",
		zap.String("metrics_prefix", appConfig.Metrics.Prefix))

	// Initialize database
	err = database.InitDB(appConfig)
	if err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	log.Info("Database connection established")

	// Initialize Echo instance
	e := echo.New()

	// Middleware
	e.Use(middleware.Recover())
	e.Use(mid.RequestIDMiddleware)
	e.Use(mid.MetricsMiddleware)

	// Routes
	// Metrics endpoint
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Health check endpoint
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	// Supply catalog routes
	supplyAPI := e.Group("/api/supplies", mid.AuthMiddleware)
	supplyAPI.GET("", handler.ListSupplies)
	supplyAPI.GET("/:id", handler.GetSupply)
	supplyAPI.POST("", handler.CreateSupply)
	supplyAPI.PUT("/:id", handler.UpdateSupply)
	supplyAPI.DELETE("/:id", handler.DeleteSupply)
	supplyAPI.POST("/:id/price-check", handler.TouchPriceCheck)

	// Bill-of-materials routes
	supplyAPI.GET("/:id/ingredients", handler.ListIngredients)
	supplyAPI.POST("/:id/ingredients", handler.AddIngredient)
	supplyAPI.PUT("/:id/ingredients/:edgeId", handler.UpdateIngredient)
	supplyAPI.DELETE("/:id/ingredients/:edgeId", handler.DeleteIngredient)

	// Stock routes
	supplyAPI.POST("/:id/stock", handler.ApplyStockMovement)
	supplyAPI.POST("/:id/receive", handler.ReceivePurchase)
	supplyAPI.GET("/:id/history", handler.GetStockHistory)

	// Counting routes
	countAPI := e.Group("/api/counts", mid.AuthMiddleware)
	countAPI.POST("", handler.SubmitCount)
	countAPI.GET("/stale", handler.ListStaleSupplies)
	countAPI.GET("/due", handler.ListDueForCounting)

	// Replenishment planner routes
	plannerAPI := e.Group("/api/planner", mid.AuthMiddleware)
	plannerAPI.GET("/purchase", handler.GetPurchaseShortlist)
	plannerAPI.GET("/production", handler.GetProductionShortlist)

	// Settings routes
	settingsAPI := e.Group("/api/settings", mid.AuthMiddleware)
	settingsAPI.GET("", handler.GetSettings)
	settingsAPI.PUT("", handler.UpdateSettings)

	// Start server
	port := appConfig.Server.Port
	log.Info("Starting server", zap.String("port", port))
	if err := e.Start(":" + port); err != nil {
		log.Fatal("Server error", zap.Error(err))
	}
}
