package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tarjetero/tarjetero-api/internal/config"
	"github.com/tarjetero/tarjetero-api/internal/domain"
	"github.com/tarjetero/tarjetero-api/internal/handler"
	"github.com/tarjetero/tarjetero-api/internal/infra/backup"
	"github.com/tarjetero/tarjetero-api/internal/infra/cache"
	"github.com/tarjetero/tarjetero-api/internal/infra/observability"
	"github.com/tarjetero/tarjetero-api/internal/infra/resilience"
	"github.com/tarjetero/tarjetero-api/internal/port"
	"github.com/tarjetero/tarjetero-api/internal/service"
	"github.com/tarjetero/tarjetero-api/internal/store/jsonstore"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// --- Load .env file (for local development) ---
	_ = godotenv.Load(".env")

	// --- Config ---
	cfg := config.Load()

	// --- Logger ---
	logger := observability.NewLogger(cfg.LogLevel)
	defer logger.Sync()

	logger.Info("configuration loaded",
		zap.Int("port", cfg.Port),
		zap.String("log_level", cfg.LogLevel),
		zap.String("data_file", cfg.DataFile),
		zap.Duration("summary_cache_ttl", cfg.SummaryCacheTTL),
		zap.Int("max_retries", cfg.MaxRetries),
		zap.Duration("initial_backoff", cfg.InitialBackoff),
		zap.Bool("backup_enabled", cfg.BackupURL != ""),
	)

	// --- Tracing ---
	shutdown, err := observability.InitTracer(cfg.OTLPEndpoint, "tarjetero-api")
	if err != nil {
		logger.Fatal("failed to init tracer", zap.Error(err))
	}
	defer shutdown(context.Background())

	// --- Metrics ---
	metrics := observability.NewMetrics()

	// --- Cache ---
	summaryCache := cache.New[domain.CardSummary](cfg.SummaryCacheTTL)

	// --- Store ---
	store, err := jsonstore.Open(cfg.DataFile, logger)
	if err != nil {
		logger.Fatal("failed to open data file", zap.String("path", cfg.DataFile), zap.Error(err))
	}
	store.OnPersist(metrics.IncrSnapshotPersist)

	// --- Backup mirror (optional) ---
	var mirror port.SnapshotSink
	if cfg.BackupURL != "" {
		resilienceCfg := resilience.Config{
			MaxRetries:     cfg.MaxRetries,
			InitialBackoff: cfg.InitialBackoff,
		}
		cb := resilience.NewCircuitBreaker("backup-mirror")
		httpClient := &http.Client{Timeout: cfg.HTTPTimeout}
		mirror = backup.NewClient(httpClient, cfg.BackupURL, cb, resilienceCfg)
		logger.Info("backup mirror enabled", zap.String("url", cfg.BackupURL))
	}

	// --- Services ---
	svc := service.NewCardsService(store, summaryCache, mirror, metrics, logger)

	// --- Router ---
	router := handler.NewRouter(svc, metrics, logger)

	// --- Server ---
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// --- Graceful shutdown ---
	go func() {
		logger.Info("server starting", zap.Int("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("server shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("server forced shutdown", zap.Error(err))
	}

	logger.Info("server stopped")
}
