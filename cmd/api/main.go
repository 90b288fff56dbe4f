package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Raymond9734/invoice-dashboard/internal/cache"
	"github.com/Raymond9734/invoice-dashboard/internal/config"
	"github.com/Raymond9734/invoice-dashboard/internal/db"
	"github.com/Raymond9734/invoice-dashboard/internal/handler"
	"github.com/Raymond9734/invoice-dashboard/internal/repository"
	"github.com/Raymond9734/invoice-dashboard/internal/repository/memory"
	"github.com/Raymond9734/invoice-dashboard/internal/seed"
	"github.com/Raymond9734/invoice-dashboard/internal/service"
	"github.com/Raymond9734/invoice-dashboard/internal/telemetry"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Initialize logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	logger.Info("starting invoice dashboard", slog.String("storage", cfg.Storage))

	ctx := context.Background()

	_, shutdownTracing, err := telemetry.InitTracing(ctx, cfg.Tracing, logger)
	if err != nil {
		logger.Error("failed to init tracing", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			logger.Error("failed to flush traces", slog.String("error", err.Error()))
		}
	}()

	// Storage backend
	var (
		invoiceRepo  repository.InvoiceRepository
		customerRepo repository.CustomerRepository
		dbCheck      handler.HealthChecker
	)

	switch cfg.Storage {
	case config.StorageMemory:
		store := memory.New()
		invoiceRepo, customerRepo = store.Invoices(), store.Customers()
		if _, err := seed.Load(ctx, customerRepo, invoiceRepo, logger); err != nil {
			logger.Error("failed to seed memory store", slog.String("error", err.Error()))
			os.Exit(1)
		}
		logger.Info("using in-memory store")

	default:
		database, err := db.Open(ctx, cfg.Database.DSN(), db.DefaultPool)
		if err != nil {
			logger.Error("failed to connect to database", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer database.Close()

		invoiceRepo = repository.NewInvoiceRepository(database.DB)
		customerRepo = repository.NewCustomerRepository(database.DB)
		dbCheck = database
		logger.Info("connected to database")
	}

	// Listing cache
	var cacheStore cache.Store = cache.NewMemoryStore()
	if cfg.Cache.RedisURL != "" {
		cacheStore, err = cache.NewRedisStore(cache.RedisConfig{
			URL: cfg.Cache.RedisURL,
			TTL: cfg.Cache.TTL,
		}, logger)
		if err != nil {
			logger.Error("failed to connect to Redis", slog.String("error", err.Error()))
			os.Exit(1)
		}
		logger.Info("connected to Redis cache")
	}
	defer cacheStore.Close()

	// Initialize services
	invoiceSvc := service.NewInvoiceService(
		invoiceRepo,
		customerRepo,
		cacheStore,
		logger,
		service.WithPageSize(cfg.API.PageSize),
	)

	// Initialize handlers
	pageHandler, err := handler.NewInvoiceHandler(invoiceSvc, logger)
	if err != nil {
		logger.Error("failed to parse templates", slog.String("error", err.Error()))
		os.Exit(1)
	}
	apiHandler := handler.NewAPIHandler(invoiceSvc, logger)
	healthHandler := handler.NewHealthHandler(dbCheck, cacheStore, logger)

	// Create server
	addr := fmt.Sprintf(":%d", cfg.API.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      handler.NewRouter(pageHandler, apiHandler, healthHandler, logger),
		ReadTimeout:  cfg.API.ReadTimeout,
		WriteTimeout: cfg.API.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("dashboard listening", slog.String("addr", addr))
		serverErrors <- server.ListenAndServe()
	}()

	// Wait for interrupt signal or server error
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.String("error", err.Error()))
		}

	case sig := <-quit:
		logger.Info("shutting down server", slog.String("signal", sig.String()))

		// Graceful shutdown with timeout
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			logger.Error("server shutdown failed", slog.String("error", err.Error()))
			return
		}

		logger.Info("server stopped gracefully")
	}
}
