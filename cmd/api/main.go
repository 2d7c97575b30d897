package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"shipment-tracker/internal/core/cache"
	"shipment-tracker/internal/core/config"
	"shipment-tracker/internal/core/database"
	"shipment-tracker/internal/core/logger"
	"shipment-tracker/internal/core/metrics"
	"shipment-tracker/internal/core/migrate"
	"shipment-tracker/internal/core/server"
	"shipment-tracker/internal/features/shipments/adapters"
	"shipment-tracker/internal/features/shipments/handler"
	"shipment-tracker/internal/features/shipments/ports"
	"shipment-tracker/internal/features/shipments/service"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

// @title Shipment Tracker API
// @version 1.0
// @description This API tracks postal shipments through their delivery lifecycle.
// @contact.name API Support
// @license.name MIT
// @host localhost:8080
// @BasePath /
func main() {
	cfg, err := config.Load(".")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Init(cfg.Environment, cfg.LogLevel); err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer logger.Sync()

	l := logger.Get()
	l.Info("Application starting",
		zap.String("environment", cfg.Environment),
		zap.String("log_level", cfg.LogLevel),
		zap.String("db_driver", cfg.Database.Driver),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.New(ctx, cfg.Database)
	if err != nil {
		l.Fatal("Database connection failed", zap.Error(err))
	}

	if cfg.Database.AutoMigrate {
		sqlDB, err := db.SQL()
		if err != nil {
			l.Fatal("Database handle unavailable", zap.Error(err))
		}
		if err := migrate.Up(ctx, sqlDB, db.Driver()); err != nil {
			l.Fatal("Migrations failed", zap.Error(err))
		}
		l.Info("Migrations applied")
	}

	var (
		redis *cache.RedisAdapter
		views ports.ViewCache
	)
	if cfg.Cache.RedisURL != "" {
		redis, err = cache.NewRedisAdapter(cfg.Cache.RedisURL)
		if err != nil {
			l.Fatal("Redis configuration invalid", zap.Error(err))
		}
		if err := redis.Ping(ctx); err != nil {
			l.Warn("Redis unreachable, views will be served from the database", zap.Error(err))
		}
		views = adapters.NewRedisViewCache(redis, cfg.Cache.ViewTTL)
	} else {
		l.Info("REDIS_URL not set, shipment view cache disabled")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	lifecycleMetrics := metrics.NewLifecycle(registry)

	repo := adapters.NewGormShipmentRepository(db)
	shipmentSvc := service.NewShipmentService(repo, views, lifecycleMetrics, cfg.Lifecycle.ConflictRetries)
	shipmentHdl := handler.NewShipmentHandler(shipmentSvc)

	opts := []server.Option{
		server.WithMetrics(registry),
		server.WithHealthCheck("database", db),
	}
	if redis != nil {
		opts = append(opts, server.WithHealthCheck("cache", redis))
	}
	srv := server.New(cfg, opts...)

	// Register Routes
	shipmentHdl.Register(srv.App)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Run()
	}()

	select {
	case err := <-errCh:
		if err != nil {
			l.Error("Server stopped", zap.Error(err))
		}
	case <-ctx.Done():
		l.Info("Shutdown requested")
		if err := srv.App.ShutdownWithTimeout(shutdownTimeout); err != nil {
			l.Error("Server shutdown failed", zap.Error(err))
		}
	}

	closeErr := db.Close()
	if redis != nil {
		closeErr = multierr.Append(closeErr, redis.Close())
	}
	if closeErr != nil {
		l.Error("Releasing resources failed", zap.Error(closeErr))
	}
	l.Info("Application stopped")
}
