package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/mgarrido/wms/internal/adapter/handler"
	"github.com/mgarrido/wms/internal/adapter/storage"
	"github.com/mgarrido/wms/internal/config"
	"github.com/mgarrido/wms/internal/core/service"
)

func main() {
	cfg := config.FromEnv()

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize MySQL
	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		logger.Fatal("failed to connect mysql", zap.Error(err))
	}
	db.SetMaxOpenConns(50)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		logger.Fatal("failed to ping mysql", zap.Error(err))
	}
	logger.Info("connected to mysql")

	// Initialize Redis
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		PoolSize: 100,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Fatal("failed to connect redis", zap.Error(err))
	}
	logger.Info("connected to redis")

	// Initialize adapters
	mysqlAdapter := storage.NewMySQLAdapter(db)
	redisAdapter := storage.NewRedisAdapter(rdb)

	if err := mysqlAdapter.EnsureSchema(ctx); err != nil {
		logger.Fatal("failed to ensure schema", zap.Error(err))
	}

	// First-run seeding; a no-op on every later start.
	bootstrap := service.NewBootstrapService(
		mysqlAdapter, mysqlAdapter,
		cfg.SlotZone, cfg.SlotCount, cfg.SampleData,
		logger,
	)
	if err := bootstrap.Run(ctx); err != nil {
		logger.Fatal("bootstrap failed", zap.Error(err))
	}

	// Initialize services
	movementService := service.NewMovementService(
		mysqlAdapter, mysqlAdapter, mysqlAdapter, redisAdapter, logger)
	slotService := service.NewSlotService(mysqlAdapter, mysqlAdapter)
	inventoryService := service.NewInventoryService(mysqlAdapter, mysqlAdapter, logger)
	catalogService := service.NewCatalogService(mysqlAdapter)
	reportingService := service.NewReportingService(
		mysqlAdapter, redisAdapter, cfg.StatsTTL, logger)

	// Initialize HTTP server
	httpHandler := handler.NewHTTPHandler(
		movementService, slotService, inventoryService, catalogService, reportingService)

	httpServer := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: httpHandler.Routes(),
	}

	go func() {
		logger.Info("HTTP server listening", zap.String("addr", cfg.HTTPAddr))
		if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("HTTP server error", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	httpServer.Shutdown(shutdownCtx)
	logger.Info("HTTP server stopped")

	rdb.Close()
	db.Close()
	logger.Info("connections closed")
}
