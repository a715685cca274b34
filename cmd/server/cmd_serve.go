package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"pizzatrack/internal/auth"
	"pizzatrack/internal/config"
	"pizzatrack/internal/database"
	"pizzatrack/internal/handlers"
	"pizzatrack/internal/logger"
	"pizzatrack/internal/redis"
	"pizzatrack/internal/repository"
	"pizzatrack/internal/server"
	"pizzatrack/internal/services"
	"pizzatrack/internal/store"
	"pizzatrack/pkg/events"
	"pizzatrack/pkg/maps"
	"pizzatrack/pkg/payment"
	"pizzatrack/pkg/storage"
	"pizzatrack/pkg/webhook"
	"pizzatrack/pkg/whatsapp"
)

// pizzatrack serve: start the HTTP server.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return serve(ctx, config.Load())
	},
}

func gormLogLevel(cfg *config.Config) gormlogger.LogLevel {
	if cfg.IsProduction() {
		return gormlogger.Warn
	}
	return gormlogger.Info
}

func openDatabase(cfg *config.Config) (*gorm.DB, error) {
	logger.Init(cfg.AppEnv)
	db, err := database.Initialize(cfg.DatabaseURL, gormLogLevel(cfg))
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	return db, nil
}

func serve(ctx context.Context, cfg *config.Config) error {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	db, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	rdb, err := redis.Initialize(cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	defer rdb.Close()

	// Optional channels stay untyped nil when unconfigured.
	var publisher services.EventPublisher
	if cfg.AMQPURL != "" {
		p, err := events.Dial(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			return fmt.Errorf("connect amqp: %w", err)
		}
		defer p.Close()
		publisher = p
		logger.L.Info("publishing events", "exchange", cfg.AMQPExchange)
	}

	var images services.ImageStore
	if cfg.S3Bucket != "" {
		s3, err := storage.NewS3(ctx, storage.Config{
			Bucket:   cfg.S3Bucket,
			Region:   cfg.S3Region,
			Key:      cfg.S3Key,
			Secret:   cfg.S3Secret,
			Endpoint: cfg.S3Endpoint,
			BaseURL:  cfg.S3URL,
		})
		if err != nil {
			return fmt.Errorf("configure storage: %w", err)
		}
		images = s3
	}

	// Repositories
	orderRepo := repository.NewOrderRepository(db)
	delivererRepo := repository.NewDelivererRepository(db)
	productRepo := repository.NewProductRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	settingsRepo := repository.NewSettingsRepository(db)

	state, err := services.LoadState(ctx, services.StateSources{
		Orders:     orderRepo,
		Deliverers: delivererRepo,
		Products:   productRepo,
		Categories: categoryRepo,
		Settings:   settingsRepo,
	})
	if err != nil {
		return err
	}
	st := store.New(state)
	logger.L.Info("state loaded", "orders", len(state.Orders), "deliverers", len(state.Deliverers), "products", len(state.Products))

	// Services
	tokens := auth.NewManager(cfg.JWTSecret, cfg.TokenLifetime)
	notifier := services.NewNotifier(
		whatsapp.NewClient(cfg.HTTPTimeout),
		webhook.NewClient(cfg.HTTPTimeout),
		publisher,
		logger.L,
	)
	orderService := services.NewOrderService(orderRepo, repository.NewCounterRepository(db), st, notifier, cfg.PublicBaseURL)
	cartService := services.NewCartService(rdb, st, cfg.CartTTL)

	router := handlers.NewRouter(handlers.Services{
		Users:      services.NewUserService(repository.NewUserRepository(db), tokens),
		Orders:     orderService,
		Deliverers: services.NewDelivererService(delivererRepo, orderService, st),
		Tracking:   services.NewTrackingService(orderService, st, maps.NewClient(cfg.HTTPTimeout), rdb, cfg.RouteRefresh),
		Cart:       cartService,
		Checkout:   services.NewCheckoutService(cartService, orderService, payment.NewClient(cfg.HTTPTimeout), st),
		Catalog:    services.NewCatalogService(productRepo, categoryRepo, st, notifier),
		Settings:   services.NewSettingsService(settingsRepo, categoryRepo, st, notifier, images),
		Dashboard:  services.NewDashboardService(st),
	}, tokens, map[string]handlers.HealthCheck{
		"database": sqlDB.PingContext,
		"redis":    rdb.Ping,
	})

	return server.New(":"+cfg.ServerPort, router).Run(ctx)
}
