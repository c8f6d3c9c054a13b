// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"savdo/internal/domain/ledger/consignment"
	"savdo/internal/domain/ledger/debt"
	"savdo/internal/domain/ledger/purchase"
	"savdo/internal/domain/ledger/sale"
	"savdo/internal/domain/ledger/stock"
	"savdo/internal/infrastructure/auth"
	"savdo/internal/infrastructure/config"
	"savdo/internal/infrastructure/http/v1/handlers"
	"savdo/internal/infrastructure/http/v1/middleware"
	"savdo/internal/infrastructure/otp"
	"savdo/internal/infrastructure/storage/postgres"
	"savdo/pkg/logger"
)

// RouterConfig holds everything the router wires together.
type RouterConfig struct {
	HTTP   config.HTTPConfig
	Logger *logger.Logger

	// Validator resolves bearer tokens into actors.
	Validator middleware.TokenValidator

	// Auth collaborators; when nil the /auth routes are not registered.
	Codes      *otp.Store
	JWTService *auth.JWTService

	// Ledger services.
	Stock       *stock.Service
	Consignment *consignment.Service
	Sales       *sale.Service
	Purchases   *purchase.Service
	Debt        *debt.Service

	// Auditor records committed operations; optional.
	Auditor handlers.Auditor

	// Health check dependencies; optional.
	Pool  *postgres.Pool
	Redis *redis.Client
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	if len(cfg.HTTP.TrustedProxies) > 0 {
		_ = router.SetTrustedProxies(cfg.HTTP.TrustedProxies)
	}

	// Global middleware (order matters)
	router.Use(middleware.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	if len(cfg.HTTP.CORSAllowOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
			AllowMethods:     cfg.HTTP.CORSAllowMethods,
			AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
			AllowCredentials: true,
		}))
	}

	// Health endpoints (no auth)
	healthHandler := handlers.NewHealthHandler(cfg.Pool, cfg.Redis)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
	}

	base := handlers.NewBaseHandler(cfg.Auditor)

	api := router.Group("/api/v1")
	{
		if cfg.Codes != nil && cfg.JWTService != nil {
			authHandler := handlers.NewAuthHandler(base, cfg.Codes, cfg.JWTService)
			authGroup := api.Group("/auth/otp")
			authGroup.POST("/request", authHandler.RequestCode)
			authGroup.POST("/verify", authHandler.VerifyCode)
		}

		protected := api.Group("")
		protected.Use(middleware.Auth(cfg.Validator))

		registerConsignmentRoutes(protected, base, cfg)
		registerSaleRoutes(protected, base, cfg)
		registerPurchaseRoutes(protected, base, cfg)
		registerPaymentRoutes(protected, base, cfg)
		registerStockRoutes(protected, base, cfg)
	}

	return router
}

func registerConsignmentRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, cfg RouterConfig) {
	handler := handlers.NewConsignmentHandler(base, cfg.Consignment)

	group := rg.Group("/consignment")
	group.POST("/loads", handler.Load)
	group.POST("/sells", handler.Sell)
	group.POST("/returns", handler.Return)
	group.GET("/dealers/:dealerId/inventory", handler.Inventory)
	group.GET("/transactions", handler.History)
}

func registerSaleRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, cfg RouterConfig) {
	handler := handlers.NewSaleHandler(base, cfg.Sales)

	group := rg.Group("/sales")
	group.POST("", handler.Create)
	group.GET("", handler.List)
	group.GET("/:id", handler.Get)
	group.POST("/:id/transition", handler.Transition)
}

func registerPurchaseRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, cfg RouterConfig) {
	handler := handlers.NewPurchaseHandler(base, cfg.Purchases)

	group := rg.Group("/purchases")
	group.POST("", handler.Receive)
	group.GET("", handler.List)
	group.GET("/:id", handler.Get)
}

func registerPaymentRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, cfg RouterConfig) {
	handler := handlers.NewPaymentHandler(base, cfg.Debt)

	group := rg.Group("/payments")
	group.POST("", handler.Apply)
	group.GET("", handler.History)
}

func registerStockRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, cfg RouterConfig) {
	handler := handlers.NewStockHandler(base, cfg.Stock, cfg.Consignment)

	group := rg.Group("/stock")
	group.GET("/availability/:productId", handler.Availability)
	group.GET("/low", handler.LowStock)
	group.GET("/conservation", handler.Conservation)
}
