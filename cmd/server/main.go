package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	shopcore "github.com/hallfair/shopcore"
	"github.com/hallfair/shopcore/internal/config"
	"github.com/hallfair/shopcore/internal/domain"
	"github.com/hallfair/shopcore/internal/handler"
	"github.com/hallfair/shopcore/internal/repository"
	"github.com/hallfair/shopcore/internal/retry"
	"github.com/hallfair/shopcore/internal/service"
)

func main() {
	// Setup structured logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Setup context with graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Connect to database
	pool, err := repository.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	// Run migrations
	migrationsFS, err := fs.Sub(shopcore.MigrationsFS, "migrations")
	if err != nil {
		slog.Error("failed to load embedded migrations", "error", err)
		os.Exit(1)
	}
	if err := repository.RunMigrations(cfg.DatabaseURL, migrationsFS); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Initialize repositories
	promoRepo := repository.NewPromoRepository(pool)
	alertRepo := repository.NewAlertRepository(pool)

	// Initialize services
	executor := retry.NewExecutor(cfg.RetryAttempts, cfg.RetryBaseDelay, domain.IsTerminal, logger)
	validator := service.NewPromoValidator(promoRepo, executor)
	issuer := service.NewPromoIssuer(promoRepo, executor)
	redeemer := service.NewPromoRedeemer(promoRepo, validator, executor)
	alerts := service.NewStockAlertManager(alertRepo, executor, cfg.LowStockThreshold)

	// Initialize handler and router
	h := handler.New(handler.Deps{
		Issuer:    issuer,
		Validator: validator,
		Redeemer:  redeemer,
		Alerts:    alerts,
	})

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	h.Register(router)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  30 * time.Second,
	}

	go func() {
		slog.Info("server listening", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown failed", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped gracefully")
}
