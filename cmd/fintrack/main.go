package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"fintrack/internal/amqp"
	"fintrack/internal/analytics"
	"fintrack/internal/auth"
	"fintrack/internal/cache"
	"fintrack/internal/config"
	apphttp "fintrack/internal/http"
	applog "fintrack/internal/log"
	"fintrack/internal/services"
	"fintrack/internal/storage"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := applog.New(applog.DefaultConfig())
	applog.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("configuration validation failed", applog.FieldError, err)
		os.Exit(1)
	}

	repo, err := storage.NewRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("failed to initialize storage", applog.FieldError, err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	// AMQP is optional: without a broker the API runs with event publishing
	// disabled and the alert worker relies on its periodic scan.
	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("failed to initialize AMQP client", applog.FieldError, err)
			os.Exit(1)
		}
		defer amqpClient.Close()
		logger.Info("AMQP client initialized", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	} else {
		logger.Info("AMQP disabled - no AMQP_URL provided")
	}

	reportCache, cacheManager := newReportCache(cfg, logger)
	if cacheManager != nil {
		cacheManager.StartCleanup(time.Minute)
		defer cacheManager.Stop()
	}

	issuer := auth.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL)
	authService := auth.NewService(repo, issuer, logger)

	var publisher services.EventPublisher
	if amqpClient != nil {
		publisher = amqpClient
	}
	txService := services.NewTransactionService(repo, publisher, reportCache, logger)
	goalService := services.NewGoalService(repo, logger)

	srv := apphttp.NewServer(*cfg, authService, txService, goalService, repo, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown error", applog.FieldError, err)
		}
		cancel()
	}()

	if err := srv.Start(); err != nil {
		logger.Error("server error", applog.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("server stopped gracefully")
}

// newReportCache picks the report cache backend: Redis when configured, an
// in-process LRU otherwise. Only the LRU needs a cleanup manager.
func newReportCache(cfg *config.Config, logger *applog.Logger) (cache.Cache[analytics.Report], *cache.Manager) {
	if cfg.RedisAddr != "" {
		client, err := cache.NewRedisClient(cfg.RedisAddr)
		if err != nil {
			logger.Error("failed to connect to Redis", applog.FieldError, err, "addr", cfg.RedisAddr)
			os.Exit(1)
		}
		logger.Info("Redis report cache initialized", "addr", cfg.RedisAddr)
		return cache.NewRedisCache[analytics.Report](client, "report", cfg.ReportCacheTTL), nil
	}

	lru := cache.NewLRUCache[analytics.Report](512, cfg.ReportCacheTTL)
	manager := cache.NewManager()
	manager.Register(lru)
	logger.Info("in-process report cache initialized", "ttl", cfg.ReportCacheTTL.String())
	return lru, manager
}
