package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/numtrack/numtrack/internal/authz"
	"github.com/numtrack/numtrack/internal/handlers"
	"github.com/numtrack/numtrack/internal/repository"
	"github.com/numtrack/numtrack/internal/service"
	"github.com/numtrack/numtrack/pkg/cache"
	"github.com/numtrack/numtrack/pkg/config"
	"github.com/numtrack/numtrack/pkg/database"
	"github.com/numtrack/numtrack/pkg/logger"
	"github.com/numtrack/numtrack/pkg/messaging"
	"github.com/numtrack/numtrack/pkg/middleware"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", logger.Field{Key: "error", Value: err.Error()})
	}

	log := logger.New(cfg.App.LogLevel, "json")
	logger.SetDefault(log)

	if cfg.JWT.Secret == "" {
		log.Fatal("JWT_SECRET is required")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// MongoDB
	db, err := database.NewMongoDB(cfg.MongoDB.URI, cfg.MongoDB.DBName, cfg.MongoDB.Timeout)
	if err != nil {
		log.Fatal("Failed to connect to MongoDB", logger.Field{Key: "error", Value: err.Error()})
	}
	defer db.Close()

	// Redis
	redisCache, err := cache.NewRedisCache(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		log.Fatal("Failed to connect to Redis", logger.Field{Key: "error", Value: err.Error()})
	}
	defer redisCache.Close()

	// RabbitMQ is optional: without it, events are dropped.
	var events service.EventPublisher = service.NoopPublisher{}
	if cfg.RabbitMQ.Enabled {
		rabbit, err := messaging.NewRabbitMQ(cfg.RabbitMQ.URL)
		if err != nil {
			log.Warn("RabbitMQ unavailable, events disabled",
				logger.Field{Key: "error", Value: err.Error()})
		} else {
			defer rabbit.Close()
			events = rabbit
		}
	}

	// Repositories
	numberRepo := repository.NewNumberRepository(db.Database(), log)
	saleRepo := repository.NewSaleRepository(db.Database(), log)
	purchaseRepo := repository.NewPurchaseRepository(db.Database(), log)
	dealerPurchaseRepo := repository.NewDealerPurchaseRepository(db.Database(), log)
	reminderRepo := repository.NewReminderRepository(db.Database(), log)
	activityRepo := repository.NewActivityRepository(db.Database(), log)
	userRepo := repository.NewUserRepository(db.Database(), log)

	indexCtx, indexCancel := context.WithTimeout(ctx, 30*time.Second)
	defer indexCancel()
	for name, create := range map[string]func(context.Context) error{
		"numbers":          numberRepo.CreateIndexes,
		"sales":            saleRepo.CreateIndexes,
		"purchases":        purchaseRepo.CreateIndexes,
		"dealer_purchases": dealerPurchaseRepo.CreateIndexes,
		"reminders":        reminderRepo.CreateIndexes,
		"activities":       activityRepo.CreateIndexes,
		"users":            userRepo.CreateIndexes,
	} {
		if err := create(indexCtx); err != nil {
			log.Warn("Failed to create indexes",
				logger.Field{Key: "collection", Value: name},
				logger.Field{Key: "error", Value: err.Error()})
		}
	}

	// Authorization policy
	policy, err := authz.Load(cfg.Authz.CapabilityFile)
	if err != nil {
		log.Fatal("Failed to load capability table", logger.Field{Key: "error", Value: err.Error()})
	}

	// Services
	metrics := service.NewMetricsCollector()
	authMiddleware := middleware.NewAuthMiddleware(cfg.JWT.Secret, cfg.JWT.ExpiresIn)

	inventoryService := service.NewInventoryService(numberRepo, purchaseRepo, dealerPurchaseRepo,
		reminderRepo, activityRepo, events, metrics, log)
	salesService := service.NewSalesService(saleRepo, numberRepo, activityRepo, events, metrics, log)
	authService := service.NewAuthService(userRepo, activityRepo, redisCache, authMiddleware,
		metrics, log, cfg.Session.IdleTimeout, cfg.JWT.ExpiresIn)
	statsService := service.NewStatsService(numberRepo, saleRepo, purchaseRepo, redisCache, log)
	exportService := service.NewExportService(numberRepo, saleRepo, purchaseRepo,
		dealerPurchaseRepo, reminderRepo, metrics, log)

	// Background RTS sweep
	sweeper := service.NewSweeper(numberRepo, activityRepo, events, metrics, log, cfg.Sweep.Interval)
	go sweeper.Start(ctx)

	// HTTP server
	if !cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		SkipPaths: []string{"/health", "/metrics"},
	}))

	var rateLimiter *middleware.RateLimiter
	if cfg.RateLimit.Enabled {
		rateLimiter = middleware.NewRateLimiter(cfg.RateLimit.Requests, cfg.RateLimit.Window)
	}

	handlers.RegisterRoutes(router, handlers.RouterDeps{
		Auth:           handlers.NewAuthHandler(authService, log),
		Inventory:      handlers.NewInventoryHandler(inventoryService, log),
		Sales:          handlers.NewSalesHandler(salesService, log),
		Reports:        handlers.NewReportsHandler(statsService, exportService, log),
		AuthMiddleware: authMiddleware,
		SessionGuard:   handlers.SessionGuard(authService),
		Policy:         policy,
		RateLimiter:    rateLimiter,
	})

	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.App.Port),
		Handler: router,
	}

	go func() {
		log.Info("Starting HTTP server", logger.Field{Key: "port", Value: cfg.App.Port})
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start HTTP server", logger.Field{Key: "error", Value: err.Error()})
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server forced to shutdown", logger.Field{Key: "error", Value: err.Error()})
	}

	log.Info("Server exited")
}
