package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/textdex/internal/config"
	"github.com/kailas-cloud/textdex/internal/db"
	"github.com/kailas-cloud/textdex/internal/db/memory"
	dbRedis "github.com/kailas-cloud/textdex/internal/db/redis"
	dbSQLite "github.com/kailas-cloud/textdex/internal/db/sqlite"
	domindex "github.com/kailas-cloud/textdex/internal/domain/index"
	logpkg "github.com/kailas-cloud/textdex/internal/logger"
	"github.com/kailas-cloud/textdex/internal/metrics"
	"github.com/kailas-cloud/textdex/internal/repository/registry"
	chiTransport "github.com/kailas-cloud/textdex/internal/transport/chi"
	bulkuc "github.com/kailas-cloud/textdex/internal/usecase/bulk"
	documentuc "github.com/kailas-cloud/textdex/internal/usecase/document"
	healthuc "github.com/kailas-cloud/textdex/internal/usecase/health"
	indexuc "github.com/kailas-cloud/textdex/internal/usecase/index"
	mappinguc "github.com/kailas-cloud/textdex/internal/usecase/mapping"
	searchuc "github.com/kailas-cloud/textdex/internal/usecase/search"
	"github.com/kailas-cloud/textdex/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting textdex server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("storage_driver", cfg.Storage.Driver),
	)

	store, err := openStore(cfg.Storage)
	if err != nil {
		logger.Fatal("Failed to open storage", zap.Error(err))
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Storage.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Storage not ready", zap.Error(err))
	}
	logger.Info("Storage ready")

	metrics.RegisterSearchMetrics()

	reg := registry.New(store, domindex.Options{
		DefaultAnalyzer:   cfg.Index.DefaultAnalyzer,
		LenientConversion: cfg.Index.LenientConversion,
	}, logger)
	loaded, err := reg.Load(ctx)
	if err != nil {
		logger.Fatal("Failed to load indices", zap.Error(err))
	}
	logger.Info("Indices loaded", zap.Int("count", loaded))

	flush := cfg.Index.FlushOnWrite
	server := chiTransport.NewServer(
		indexuc.New(reg).WithFlushOnWrite(flush),
		mappinguc.New(reg, reg).WithFlushOnWrite(flush),
		documentuc.New(reg, reg).WithFlushOnWrite(flush),
		bulkuc.New(reg).WithMaxItems(cfg.Index.MaxBulkItems),
		searchuc.New(reg),
		healthuc.New(store, reg),
	).WithMaxBodyBytes(cfg.HTTP.MaxBodyBytes)

	router := chiTransport.NewRouter(server, chiTransport.RouterOptions{
		APIKeys: cfg.Auth.APIKeys,
		Logger:  logger,
	})

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}
	// every index is persisted on the way out, even with flush_on_write off
	if err := reg.FlushAll(shutdownCtx); err != nil {
		logger.Error("Failed to persist indices", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

func openStore(cfg config.StorageConfig) (db.Store, error) {
	switch cfg.Driver {
	case config.DriverSQLite:
		return dbSQLite.NewStore(cfg.Path)
	case config.DriverRedis:
		return dbRedis.NewStore(dbRedis.Config{
			Addrs:     cfg.Addrs,
			Username:  cfg.Username,
			Password:  cfg.Password,
			DB:        cfg.DB,
			KeyPrefix: cfg.KeyPrefix,
		})
	case config.DriverMemory:
		return memory.NewStore(), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
