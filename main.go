package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prohmpiriya/session-planner/internal/di"
	"github.com/prohmpiriya/session-planner/internal/service"
	"github.com/prohmpiriya/session-planner/migrations"
	"github.com/prohmpiriya/session-planner/pkg/config"
	"github.com/prohmpiriya/session-planner/pkg/database"
	"github.com/prohmpiriya/session-planner/pkg/logger"
	"github.com/prohmpiriya/session-planner/pkg/middleware"
	"github.com/prohmpiriya/session-planner/pkg/redis"
	"github.com/prohmpiriya/session-planner/pkg/telemetry"
)

const serviceName = "session-planner"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logCfg := &logger.Config{
		Level:       cfg.App.Environment,
		ServiceName: serviceName,
		Development: cfg.IsDevelopment(),
	}
	if err := logger.Init(logCfg); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	appLog := logger.Get()
	appLog.Info("Starting Session Planner...")

	ctx := context.Background()

	// Initialize OpenTelemetry
	telemetryCfg := &telemetry.Config{
		Enabled:        cfg.OTel.Enabled,
		ServiceName:    cfg.OTel.ServiceName,
		ServiceVersion: cfg.App.Version,
		Environment:    cfg.App.Environment,
		CollectorAddr:  cfg.OTel.CollectorAddr,
		SampleRatio:    cfg.OTel.SampleRatio,
	}
	if _, err := telemetry.Init(ctx, telemetryCfg); err != nil {
		appLog.Warn(fmt.Sprintf("Failed to initialize telemetry: %v", err))
	} else if telemetryCfg.Enabled {
		appLog.Info(fmt.Sprintf("Telemetry initialized (collector: %s)", telemetryCfg.CollectorAddr))
	}
	defer telemetry.Shutdown(ctx)

	// Initialize database connection (drafts stay in memory when disabled)
	var db *database.PostgresDB
	if cfg.Database.Enabled {
		dbCfg := &database.PostgresConfig{
			Host:            cfg.Database.Host,
			Port:            cfg.Database.Port,
			User:            cfg.Database.User,
			Password:        cfg.Database.Password,
			Database:        cfg.Database.DBName,
			SSLMode:         cfg.Database.SSLMode,
			MaxConns:        int32(cfg.Database.MaxOpenConns),
			MinConns:        int32(cfg.Database.MaxIdleConns),
			MaxConnLifetime: cfg.Database.ConnMaxLifetime,
			MaxConnIdleTime: cfg.Database.ConnMaxIdleTime,
			ConnectTimeout:  5 * time.Second,
			MaxRetries:      3,
			RetryInterval:   time.Second,
			EnableTracing:   cfg.OTel.Enabled,
		}
		db, err = database.NewPostgres(ctx, dbCfg)
		if err != nil {
			appLog.Fatal(fmt.Sprintf("Database connection failed: %v", err))
		}
		defer db.Close()
		appLog.Info(fmt.Sprintf("Database connected (pool: min=%d, max=%d)", dbCfg.MinConns, dbCfg.MaxConns))

		if cfg.Database.AutoMigrate {
			applied, err := migrations.Apply(ctx, db.Pool())
			if err != nil {
				appLog.Fatal(fmt.Sprintf("Database migration failed: %v", err))
			}
			if len(applied) > 0 {
				appLog.Info(fmt.Sprintf("Applied migrations: %s", strings.Join(applied, ", ")))
			}
		}
	} else {
		appLog.Warn("Database disabled, drafts are kept in memory")
	}

	// Initialize Redis connection (optional - cache and idempotency are disabled if connection fails)
	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisCfg := &redis.Config{
			Host:          cfg.Redis.Host,
			Port:          cfg.Redis.Port,
			Password:      cfg.Redis.Password,
			DB:            cfg.Redis.DB,
			PoolSize:      cfg.Redis.PoolSize,
			MinIdleConns:  cfg.Redis.MinIdleConns,
			DialTimeout:   cfg.Redis.DialTimeout,
			ReadTimeout:   cfg.Redis.ReadTimeout,
			WriteTimeout:  cfg.Redis.WriteTimeout,
			KeyPrefix:     cfg.Redis.KeyPrefix,
			MaxRetries:    3,
			RetryInterval: time.Second,
		}
		redisClient, err = redis.NewClient(ctx, redisCfg)
		if err != nil {
			appLog.Warn(fmt.Sprintf("Redis connection failed (caching disabled): %v", err))
			redisClient = nil
		} else {
			defer redisClient.Close()
			appLog.Info(fmt.Sprintf("Redis connected (%s)", redisCfg.Addr()))
		}
	}

	// Initialize change publisher (optional - events are dropped when Kafka is unavailable)
	var publisher service.ChangePublisher
	if cfg.Kafka.Enabled {
		kafkaPublisher, err := service.NewKafkaChangePublisher(ctx, &service.ChangePublisherConfig{
			Brokers:        cfg.Kafka.Brokers,
			Topic:          cfg.Planner.ChangeTopic,
			ServiceName:    serviceName,
			ClientID:       cfg.Kafka.ClientID,
			PublishRetries: cfg.Planner.PublishRetries,
		})
		if err != nil {
			appLog.Warn(fmt.Sprintf("Failed to create Kafka publisher, using no-op: %v", err))
			publisher = service.NewNoOpChangePublisher()
		} else {
			publisher = kafkaPublisher
			appLog.Info(fmt.Sprintf("Kafka publisher initialized (topic: %s)", cfg.Planner.ChangeTopic))
		}
	} else {
		publisher = service.NewNoOpChangePublisher()
	}

	// Build dependency injection container
	container := di.NewContainer(&di.ContainerConfig{
		DB:        db,
		Redis:     redisClient,
		Publisher: publisher,
		Planner:   cfg.Planner,
		Logger:    appLog,
	})
	defer container.Close()

	// Setup Gin
	if cfg.IsDevelopment() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())

	// Add OpenTelemetry tracing middleware if enabled
	if cfg.OTel.Enabled {
		router.Use(telemetry.TracingMiddleware(serviceName))
		router.Use(telemetry.TraceHeaderMiddleware())
	}
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(appLog))

	// Health check endpoints
	router.GET("/health", container.HealthHandler.Health)
	router.GET("/ready", container.HealthHandler.Ready)

	// JWT middleware configuration
	jwtConfig := &middleware.JWTConfig{
		Secret: cfg.JWT.Secret,
		Issuer: cfg.JWT.Issuer,
		SkipPaths: []string{
			"/health",
			"/ready",
		},
	}

	// Actions such as add_slot are not idempotent, so retries must be keyed
	actionMiddleware := []gin.HandlerFunc{}
	if redisClient != nil {
		actionMiddleware = append(actionMiddleware, middleware.IdempotencyMiddleware(&middleware.IdempotencyConfig{
			Redis:    redisClient,
			TTL:      cfg.Planner.IdempotencyTTL,
			Optional: true,
			Logger:   appLog,
		}))
	}

	// API routes (Organizer/Admin only)
	v1 := router.Group("/api/v1")
	v1.Use(middleware.JWTMiddleware(jwtConfig))
	v1.Use(middleware.RequireRole("admin", "organizer"))
	{
		drafts := v1.Group("/drafts")
		{
			drafts.POST("", container.DraftHandler.Create)
			drafts.GET("", container.DraftHandler.List)
			drafts.GET("/:id", container.DraftHandler.GetByID)
			drafts.DELETE("/:id", container.DraftHandler.Delete)
			drafts.POST("/:id/actions", append(actionMiddleware, container.DraftHandler.ApplyAction)...)
			drafts.GET("/:id/payload", container.DraftHandler.Payload)
			drafts.GET("/:id/completeness", container.DraftHandler.Completeness)
		}
	}

	// Create HTTP server
	addr := cfg.Server.Addr()
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
		ReadHeaderTimeout: 2 * time.Second,
	}

	// Start server in goroutine
	go func() {
		appLog.Info(fmt.Sprintf("Session Planner listening on %s", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLog.Fatal(fmt.Sprintf("Failed to start server: %v", err))
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLog.Info("Shutting down server...")

	// Give outstanding requests 30 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLog.Error(fmt.Sprintf("Server forced to shutdown: %v", err))
	}

	appLog.Info("Server exited gracefully")
}
