package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/sarthakgup/personal-finance-copilot/internal/amqp"
	"github.com/sarthakgup/personal-finance-copilot/internal/config"
	apphttp "github.com/sarthakgup/personal-finance-copilot/internal/http"
	"github.com/sarthakgup/personal-finance-copilot/internal/log"
	"github.com/sarthakgup/personal-finance-copilot/internal/services"
	"github.com/sarthakgup/personal-finance-copilot/internal/store"
	"github.com/sarthakgup/personal-finance-copilot/internal/store/memory"
	"github.com/sarthakgup/personal-finance-copilot/internal/store/sqlite"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	cfg := config.Load()

	logger := log.New(log.Config{
		Level:     log.ParseLevel(cfg.LogLevel),
		Component: log.ComponentApp,
	})
	log.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}

	var (
		txStore store.TransactionStore
		err     error
	)
	switch cfg.DataBackend {
	case "sqlite":
		txStore, err = sqlite.New(cfg.SQLiteDBPath)
		if err != nil {
			logger.Error("Failed to open SQLite store", log.FieldError, err, "path", cfg.SQLiteDBPath)
			os.Exit(1)
		}
		logger.Info("Initialized SQLite backend", "path", cfg.SQLiteDBPath)
	default:
		txStore = memory.New()
		logger.Info("Initialized memory backend")
	}

	var publisher services.SyncPublisher
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", log.FieldError, err)
			os.Exit(1)
		}
		publisher = client
		logger.Info("AMQP publisher initialized", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	} else {
		logger.Info("AMQP disabled - no AMQP_URL provided")
	}

	svc := services.NewTransactionService(txStore, publisher, logger)
	defer svc.Close()

	if cfg.SeedCategories {
		created, err := svc.SeedDefaultCategories(context.Background())
		if err != nil {
			logger.Error("Failed to seed categories", log.FieldError, err)
			os.Exit(1)
		}
		if created > 0 {
			logger.Info("Seeded starter categories", "created", created)
		}
	}

	srv := apphttp.NewServer(":"+cfg.Port, svc, txStore, logger.WithComponent(log.ComponentHTTP))

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
			logger.Error("Server shutdown error", log.FieldError, err)
		}
		cancel()
	}()

	logger.Info("Starting server", "port", cfg.Port, "backend", cfg.DataBackend)
	if err := srv.Start(); err != nil {
		logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Server stopped gracefully")
}
