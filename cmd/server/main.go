// Package main is the entry point for the savdo ledger API server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"savdo/internal/domain/ledger/consignment"
	"savdo/internal/domain/ledger/debt"
	"savdo/internal/domain/ledger/purchase"
	"savdo/internal/domain/ledger/sale"
	"savdo/internal/domain/ledger/stock"
	"savdo/internal/infrastructure/auth"
	"savdo/internal/infrastructure/config"
	v1 "savdo/internal/infrastructure/http/v1"
	"savdo/internal/infrastructure/otp"
	"savdo/internal/infrastructure/storage/postgres"
	"savdo/internal/infrastructure/storage/postgres/catalog_repo"
	"savdo/internal/infrastructure/storage/postgres/ledger_repo"
	"savdo/pkg/logger"
)

func main() {
	// .env is optional; real deployments configure via environment
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:       cfg.Log.Level,
		Development: cfg.IsDevelopment(),
		OutputPaths: []string{cfg.Log.Output},
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	log.Info("starting savdo ledger server")

	// --- PostgreSQL ---
	pool, err := postgres.NewPool(ctx, postgres.PoolConfig{
		DSN:               cfg.Database.DSN(),
		MaxConns:          cfg.Database.MaxConns,
		MinConns:          cfg.Database.MinConns,
		MaxConnLifetime:   cfg.Database.ConnMaxLifetime,
		MaxConnIdleTime:   cfg.Database.ConnMaxIdleTime,
		HealthCheckPeriod: time.Minute,
	})
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()
	log.Info("database connection established")

	txManager := postgres.NewTxManager(pool)

	// --- Redis (one-time codes) ---
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Warnw("redis unavailable, otp login disabled", "error", err)
	}

	// --- Repositories ---
	productRepo := catalog_repo.NewProductRepo(txManager)
	dealerRepo := catalog_repo.NewDealerRepo(txManager)
	dealerCustomerRepo := catalog_repo.NewDealerCustomerRepo(txManager)
	customerRepo := catalog_repo.NewCustomerRepo(txManager)
	inventoryRepo := ledger_repo.NewInventoryRepo(txManager)
	transactionRepo := ledger_repo.NewTransactionRepo(txManager)
	paymentRepo := ledger_repo.NewPaymentRepo(txManager)
	saleRepo := ledger_repo.NewSaleRepo(txManager)
	deliveryRepo := ledger_repo.NewDeliveryRepo(txManager)
	purchaseRepo := ledger_repo.NewPurchaseRepo(txManager)

	// --- Services ---
	stockService := stock.NewService(productRepo)
	consignmentService := consignment.NewService(
		stockService,
		inventoryRepo,
		transactionRepo,
		dealerRepo,
		dealerCustomerRepo,
		paymentRepo,
		txManager,
	)
	saleService := sale.NewService(saleRepo, deliveryRepo, stockService, customerRepo, txManager)
	purchaseService := purchase.NewService(purchaseRepo, stockService, productRepo, txManager)
	debtService := debt.NewService(customerRepo, dealerRepo, dealerCustomerRepo, paymentRepo, txManager)

	auditService, err := postgres.NewAuditService(txManager)
	if err != nil {
		log.Fatalw("failed to initialize audit service", "error", err)
	}

	// --- Auth collaborators ---
	jwtService := auth.NewJWTService(auth.JWTConfig{
		Secret:         cfg.JWT.Secret,
		Issuer:         cfg.JWT.Issuer,
		AccessTokenTTL: cfg.JWT.AccessTokenExpiration,
	})
	codeStore := otp.NewStore(redisClient, otp.Config{
		Length:      cfg.OTP.Length,
		TTL:         cfg.OTP.TTL,
		MaxAttempts: cfg.OTP.MaxAttempts,
	})

	// --- Router ---
	router := v1.NewRouter(v1.RouterConfig{
		HTTP:        cfg.HTTP,
		Logger:      log,
		Validator:   jwtService,
		Codes:       codeStore,
		JWTService:  jwtService,
		Stock:       stockService,
		Consignment: consignmentService,
		Sales:       saleService,
		Purchases:   purchaseService,
		Debt:        debtService,
		Auditor:     auditService,
		Pool:        pool,
		Redis:       redisClient,
	})

	// --- HTTP server ---
	server := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        router,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Infow("server starting", "port", cfg.App.Port, "env", cfg.App.Env)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("server failed", "error", err)
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalw("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
}
