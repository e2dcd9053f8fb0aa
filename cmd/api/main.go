package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	costUseCase "github.com/reelkit/credits-service/internal/domain/usecase/cost"
	ledgerUseCase "github.com/reelkit/credits-service/internal/domain/usecase/ledger"
	paymentUseCase "github.com/reelkit/credits-service/internal/domain/usecase/payment"
	userUseCase "github.com/reelkit/credits-service/internal/domain/usecase/user"

	"github.com/reelkit/credits-service/internal/infrastructure/adapter/api/handler"
	"github.com/reelkit/credits-service/internal/infrastructure/adapter/api/routes"
	"github.com/reelkit/credits-service/internal/infrastructure/adapter/database"
	"github.com/reelkit/credits-service/internal/infrastructure/adapter/database/migration"
	"github.com/reelkit/credits-service/internal/infrastructure/adapter/logger"
	"github.com/reelkit/credits-service/internal/infrastructure/adapter/repository"
	timeProvider "github.com/reelkit/credits-service/internal/infrastructure/adapter/time"
	"github.com/reelkit/credits-service/internal/infrastructure/config"

	"github.com/gin-gonic/gin"
)

func main() {
	// Load and validate configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Set Gin mode based on environment
	if cfg.Environment == config.Production {
		gin.SetMode(gin.ReleaseMode)
	}

	// Create logger
	appLogger := logger.NewZapLogger(cfg.Environment == config.Production)
	defer func() { _ = appLogger.Flush() }()

	// Setup database configuration
	dbConfig := &database.Config{
		Host:            cfg.Database.Host,
		Port:            database.ParsePort(cfg.Database.Port),
		Username:        cfg.Database.Username,
		Password:        cfg.Database.Password,
		Database:        cfg.Database.Database,
		SSLMode:         cfg.Database.SSLMode,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		ConnMaxIdleTime: cfg.Database.ConnMaxIdleTime,
		QueryTimeout:    cfg.Database.QueryTimeout,
		LogLevel:        cfg.Logger.Level,
		RetryAttempts:   cfg.Database.RetryAttempts,
		RetryDelay:      cfg.Database.RetryDelay,
	}

	// Initialize time provider
	tp := timeProvider.NewRealTimeProvider()

	// Connect to the database
	dbManager := database.NewManager(dbConfig, appLogger, tp)
	db, err := dbManager.Connect()
	if err != nil {
		appLogger.Error("Failed to connect to database", map[string]any{
			"error": err.Error(),
		})
		os.Exit(1)
	}
	defer func() { _ = dbManager.Close() }()

	// Run migrations, seeding the default cost table if absent
	migrationMgr := migration.NewManager(db, appLogger, tp)
	if err := migrationMgr.MigrateAll(); err != nil {
		appLogger.Error("Failed to run migrations", map[string]any{
			"error": err.Error(),
		})
		os.Exit(1)
	}

	// Provision a demo account for local development
	if cfg.Environment == config.Development {
		if err := migration.EnsureUser(context.Background(), db, tp, 1, 1000); err != nil {
			appLogger.Warn("Failed to provision demo user", map[string]any{
				"error": err.Error(),
			})
		}
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(db, tp, appLogger)
	transactionRepo := repository.NewTransactionRepository(db, appLogger)
	settingRepo := repository.NewSettingRepository(db, tp, appLogger)

	// Unit of work (debit and ledger entry commit together)
	uow := database.NewUnitOfWork(db, appLogger, tp)

	// Initialize use cases
	ledgerService := ledgerUseCase.NewService(uow, tp, appLogger, cfg.Ledger.RefundOnFailure)
	costResolver := costUseCase.NewResolver(settingRepo, tp, appLogger, cfg.Cost.CacheTTL)
	paymentProcessor := paymentUseCase.NewProcessor(ledgerService, cfg.Payment.WebhookSecret, appLogger)
	userService := userUseCase.NewUseCase(userRepo, transactionRepo, ledgerService, tp, appLogger, cfg.Ledger.SignupBonus)

	// Initialize API handlers
	creditHandler := handler.NewCreditHandler(ledgerService, costResolver, userService, appLogger)
	costHandler := handler.NewCostHandler(costResolver, appLogger)
	webhookHandler := handler.NewWebhookHandler(paymentProcessor, appLogger)
	healthHandler := handler.NewHealthHandler(func() error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.Ping()
	}, tp)

	// Initialize Gin router
	router := gin.New()

	routes.SetupMiddlewares(router, appLogger)
	routes.SetupRoutes(router, creditHandler, costHandler, webhookHandler, healthHandler, cfg.Auth.JWTSecret, appLogger)

	// Create HTTP server with configurable timeout values
	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           router,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	// Start the server in a goroutine
	go func() {
		appLogger.Info("Starting server", map[string]any{
			"port": cfg.Server.Port,
			"env":  cfg.Environment,
		})

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Error("Failed to start server", map[string]any{
				"error": err.Error(),
			})
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...", nil)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		appLogger.Error("Server forced to shutdown", map[string]any{
			"error": err.Error(),
		})
	}

	appLogger.Info("Server exited gracefully", nil)
}
