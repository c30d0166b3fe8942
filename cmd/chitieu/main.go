package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"chitieu/internal/amqp"
	"chitieu/internal/config"
	apphttp "chitieu/internal/http"
	"chitieu/internal/ledger"
	applog "chitieu/internal/log"
	"chitieu/internal/notify"
	"chitieu/internal/services"
	"chitieu/internal/storage"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := applog.New(applog.DefaultConfig())
	applog.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", applog.FieldError, err)
		os.Exit(1)
	}

	queue := notify.NewQueue(cfg.NotificationTTL)
	sessionLedger := ledger.New(ledger.WithNotifier(queue))

	var repo services.Repository
	if cfg.DataBackend == "sqlite" {
		sqliteRepo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
		if err != nil {
			logger.Error("Failed to initialize SQLite repository",
				applog.FieldError, err, "path", cfg.SQLiteDBPath)
			os.Exit(1)
		}
		repo = sqliteRepo
		logger.Info("Initialized SQLite backend", "path", cfg.SQLiteDBPath)
	} else {
		logger.Info("Initialized memory backend")
	}

	// AMQP is an optional leg: without it alerts stay local.
	var alerts services.AlertPublisher
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("AMQP unavailable, continuing without alert publishing",
				applog.FieldError, err)
		} else {
			alerts = client
			logger.Info("AMQP alert publishing enabled",
				"exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
		}
	}

	tracker := services.NewTracker(sessionLedger, repo, alerts)
	defer func() {
		if err := tracker.Close(); err != nil {
			logger.Error("Failed to close tracker", applog.FieldError, err)
		}
	}()

	if err := tracker.Hydrate(context.Background()); err != nil {
		logger.Error("Failed to hydrate session from snapshot", applog.FieldError, err)
		os.Exit(1)
	}

	srv := apphttp.NewServer(":"+cfg.Port, tracker, queue, logger, apphttp.RateLimitConfig{
		RequestsPerMinute: cfg.RateLimitPerMinute,
		CleanupInterval:   cfg.RateLimitCleanup,
	})

	// Configure server timeouts and limits
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	// Graceful shutdown handling
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", applog.FieldError, err)
		}
		cancel()
	}()

	logger.Info("Starting chitieu server", "port", cfg.Port, "backend", cfg.DataBackend)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", applog.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Server stopped gracefully")
}
