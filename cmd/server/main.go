package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/carbovista/backend/internal/config"
	"github.com/carbovista/backend/internal/delivery/http"
	"github.com/carbovista/backend/internal/imagery"
	"github.com/carbovista/backend/internal/logging"
	"github.com/carbovista/backend/internal/model"
	"github.com/carbovista/backend/internal/repository/postgres"
	"github.com/carbovista/backend/internal/repository/redis"
	"github.com/carbovista/backend/internal/service"
)

func main() {
	// Configuration
	cfg, foundEnv := config.Load()

	zl, err := logging.New(cfg.IsProduction(), cfg.LogLevel)
	if err != nil {
		log.Fatalf("Logger init failed: %v", err)
	}
	defer func() { _ = zl.Sync() }()
	if !foundEnv {
		zl.Info("no .env file found, using system environment")
	}

	// Model artifact: loaded once, shared read-only
	forest, err := model.Load(cfg.ModelPath)
	if err != nil {
		zl.Fatal("failed to load model", zap.String("path", cfg.ModelPath), zap.Error(err))
	}
	zl.Info("model loaded",
		zap.String("name", forest.Name()),
		zap.Strings("features", forest.Features()),
		zap.Int("estimators", forest.NumEstimators()),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Database connection
	var auditRepo service.AuditRepository = postgres.NewMockRepository()
	if cfg.DatabaseURL != "" {
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err == nil {
			if err = pool.Ping(ctx); err != nil {
				pool.Close()
			}
		}
		if err != nil {
			zl.Warn("could not connect to database, audit logs kept in memory", zap.Error(err))
		} else {
			defer pool.Close()
			pgRepo := postgres.NewPostgresRepository(pool)
			if err := pgRepo.EnsureSchema(ctx); err != nil {
				zl.Warn("schema setup failed", zap.Error(err))
			}
			auditRepo = pgRepo
			zl.Info("connected to PostgreSQL")
		}
	}

	// Geocode cache
	var (
		cache       service.AddressCache
		cacheHealth http.HealthChecker
	)
	rdb, err := redis.Open(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	switch {
	case err != nil:
		zl.Warn("could not connect to redis, geocode cache disabled", zap.Error(err))
	case rdb != nil:
		defer rdb.Close()
		gc := redis.NewGeocodeCache(rdb)
		cache, cacheHealth = gc, gc
		zl.Info("connected to Redis", zap.String("addr", cfg.RedisAddr))
	}

	// Imagery: remote service when configured, synthetic pixels otherwise
	var (
		sampler       imagery.Sampler
		imageryHealth http.HealthChecker
	)
	if cfg.ImageryServiceURL != "" {
		hs := imagery.NewHTTPSampler(cfg.ImageryServiceURL, cfg.ImageryTimeout, zl.Named("imagery"))
		sampler, imageryHealth = hs, hs
		zl.Info("using imagery service", zap.String("url", cfg.ImageryServiceURL))
	} else {
		sampler = imagery.NewSyntheticSampler()
		zl.Warn("IMAGERY_SERVICE_URL not set, using synthetic imagery")
	}

	// Dependency Injection: Services
	geocoder := service.NewNominatimGeocoder(cfg.GeocoderURL, cfg.GeocoderUserAgent, cache, cfg.GeocodeCacheTTL, zl.Named("geocoder"))
	analysisSvc := service.NewAnalysisService(forest, sampler, geocoder, auditRepo, zl.Named("analysis"), service.AnalysisOptions{
		PricePerTonne: cfg.CarbonPriceRM,
	})
	predictionSvc := service.NewPredictionService(forest, auditRepo, zl.Named("prediction"))

	// Fiber App
	app := fiber.New(fiber.Config{
		AppName:      "CarboVista API v1.0",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 3 * time.Minute,
		BodyLimit:    32 * 1024 * 1024,
		ErrorHandler: http.ErrorHandler,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${method} ${path} (${latency})\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
	}))

	// Routes
	handler := http.NewHandler(analysisSvc, predictionSvc, auditRepo, zl.Named("http")).
		WithHealthChecks(imageryHealth, cacheHealth)
	http.SetupRoutes(app, handler)

	// Graceful shutdown
	go func() {
		zl.Info("server starting", zap.String("port", cfg.Port), zap.String("env", cfg.Env))
		if err := app.Listen(":" + cfg.Port); err != nil {
			zl.Fatal("server error", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zl.Info("shutting down server")
	if err := app.ShutdownWithTimeout(5 * time.Second); err != nil {
		zl.Warn("server forced to shutdown", zap.Error(err))
	}
	analysisSvc.WaitBackground()
	predictionSvc.WaitBackground()
	zl.Info("server exited gracefully")
}
