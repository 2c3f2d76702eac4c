package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/roadrescue/dispatch/internal/api/handlers"
	"github.com/roadrescue/dispatch/internal/api/routes"
	"github.com/roadrescue/dispatch/internal/config"
	"github.com/roadrescue/dispatch/internal/service/dispatch"
	"github.com/roadrescue/dispatch/internal/service/lifecycle"
	"github.com/roadrescue/dispatch/internal/service/matching"
	"github.com/roadrescue/dispatch/internal/service/pricing"
	"github.com/roadrescue/dispatch/internal/store"
	pgstore "github.com/roadrescue/dispatch/internal/store/postgres"
	"github.com/roadrescue/dispatch/pkg/cache"
	"github.com/roadrescue/dispatch/pkg/database"
	"github.com/roadrescue/dispatch/pkg/logger"
	"github.com/roadrescue/dispatch/pkg/monitoring"
	"github.com/roadrescue/dispatch/pkg/websocket"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	appLogger, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer appLogger.Sync()

	appLogger.Info("Starting RoadRescue Dispatch",
		logger.String("env", cfg.Server.Env),
		logger.String("port", cfg.Server.Port),
		logger.String("store_driver", cfg.Store.Driver),
	)

	// Initialize New Relic
	nrApp, err := monitoring.New(monitoring.Config{
		LicenseKey: cfg.NewRelic.LicenseKey,
		AppName:    cfg.NewRelic.AppName,
		Enabled:    cfg.NewRelic.Enabled,
	})
	if err != nil {
		appLogger.Warn("Failed to initialize New Relic", logger.Err(err))
		nrApp = &monitoring.NewRelicApp{}
	} else if nrApp.IsEnabled() {
		appLogger.Info("New Relic APM initialized",
			logger.String("app_name", cfg.NewRelic.AppName))
	}
	defer nrApp.Shutdown(10 * time.Second)

	ctx := context.Background()

	// Initialize the store backend
	var st store.Store
	switch cfg.Store.Driver {
	case "postgres":
		db, err := database.NewPostgresDB(database.Config{
			Host:     cfg.Database.Host,
			Port:     cfg.Database.Port,
			User:     cfg.Database.User,
			Password: cfg.Database.Password,
			DBName:   cfg.Database.Name,
			SSLMode:  cfg.Database.SSLMode,
			MaxConns: cfg.Database.MaxConns,
			MaxIdle:  cfg.Database.MaxIdle,
		})
		if err != nil {
			appLogger.Fatal("Failed to connect to PostgreSQL", logger.Err(err))
		}
		defer db.Close()

		pg := pgstore.New(db)
		if err := pg.EnsureSchema(ctx); err != nil {
			appLogger.Fatal("Failed to ensure database schema", logger.Err(err))
		}
		st = pg
		appLogger.Info("Connected to PostgreSQL")
	default:
		st = store.NewMemoryStore()
	}

	if cfg.Store.Seed {
		if existing, err := st.ListMechanics(ctx); err == nil && len(existing) == 0 {
			if err := store.Seed(ctx, st); err != nil {
				appLogger.Warn("Failed to seed demo data", logger.Err(err))
			} else {
				appLogger.Info("Demo data seeded")
			}
		}
	}

	// Initialize Redis. The store is authoritative, so a missing cache
	// only disables idempotency keys and the dashboard geo mirror.
	var redisClient *redis.Client
	client, err := cache.NewRedisClient(cache.Config{
		Host:        cfg.Redis.Host,
		Port:        cfg.Redis.Port,
		Password:    cfg.Redis.Password,
		DB:          cfg.Redis.DB,
		MaxRetries:  cfg.Redis.MaxRetries,
		PoolSize:    cfg.Redis.PoolSize,
		DialTimeout: cfg.Redis.DialTimeout,
		ReadTimeout: cfg.Redis.ReadTimeout,
	})
	if err != nil {
		appLogger.Warn("Redis unavailable, continuing without cache", logger.Err(err))
	} else {
		redisClient = client
		defer cache.Close(redisClient)
		appLogger.Info("Connected to Redis")
	}

	// Initialize WebSocket hub
	var wsHub *websocket.Hub
	if cfg.Features.EnableRealTimeUpdates {
		wsHub = websocket.NewHub(appLogger)
		go wsHub.Run()
	}

	// Wire up the core services
	matcher := matching.NewService(st, appLogger)
	pricer := pricing.NewService(pricing.DefaultConfig())
	engine := dispatch.NewEngine(st, matcher, pricer, appLogger, nrApp, dispatch.Config{
		RadiusMiles: cfg.Dispatch.RadiusMiles,
		AutoAssign:  cfg.Features.EnableAutoAssign,
	})
	lc := lifecycle.NewService(st, appLogger, cfg.Features.StrictLifecycle)

	h := handlers.NewHandlers(st, engine, lc, matcher, redisClient, wsHub, appLogger, nrApp, cfg.Cache.TTLIdempotency)

	// Initialize Gin router
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()

	if nrApp.IsEnabled() {
		routes.SetupRoutes(router, h, nrApp.Application)
	} else {
		routes.SetupRoutes(router, h, nil)
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:           fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:        router,
		ReadTimeout:    15 * time.Second,
		WriteTimeout:   15 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	// Start server in a goroutine
	go func() {
		appLogger.Info("Server starting", logger.String("address", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Fatal("Failed to start server", logger.Err(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("Server forced to shutdown", logger.Err(err))
	}

	appLogger.Info("Server stopped gracefully")
}
