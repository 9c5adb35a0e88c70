// Package main запускает HTTP-сервер витрины магазина.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mmeshcher/storefront-system/internal/catalog"
	"github.com/mmeshcher/storefront-system/internal/config"
	"github.com/mmeshcher/storefront-system/internal/handler"
	"github.com/mmeshcher/storefront-system/internal/lock"
	"github.com/mmeshcher/storefront-system/internal/payment"
	"github.com/mmeshcher/storefront-system/internal/repository"
	"github.com/mmeshcher/storefront-system/internal/service"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	sugar := logger.Sugar()

	cfg, err := config.Parse()
	if err != nil {
		sugar.Fatalw("configuration error", "error", err.Error())
	}

	var repo service.Repository
	if cfg.DatabaseURI != "" {
		pg, err := repository.NewPostgresRepository(cfg.DatabaseURI)
		if err != nil {
			sugar.Fatalw("database initialization error", "error", err.Error())
		}
		repo = pg
	} else {
		sugar.Warn("DATABASE_URI is not set, using in-memory store")
		repo = repository.NewMemoryRepository(repository.DefaultProducts())
	}

	var products service.Catalog
	if cfg.CatalogAddress != "" {
		products = catalog.NewClient(cfg.CatalogAddress)
	}

	var locker service.Locker = lock.NewKeyedMutex()
	if cfg.RedisAddress != "" {
		rl, err := lock.NewRedisLocker(cfg.RedisAddress, cfg.LockTTL, logger)
		if err != nil {
			sugar.Fatalw("redis initialization error", "error", err.Error())
		}
		defer rl.Close()
		locker = rl
	}

	svc := service.NewService(repo, products, locker, payment.NewProcessor(), logger)
	defer svc.Close()

	h := handler.NewHandler(svc, logger)

	r := h.SetupRouter()

	server := &http.Server{
		Addr:              cfg.RunAddress,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	// Запуск HTTP-сервера
	g.Go(func() error {
		sugar.Infow("starting storefront server", "addr", cfg.RunAddress)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	// Graceful shutdown при отмене контекста (сигнал или ошибка в другой горутине)
	g.Go(func() error {
		<-ctx.Done()
		sugar.Info("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}
		sugar.Info("server stopped gracefully")
		return nil
	})

	if err := g.Wait(); err != nil {
		sugar.Fatalw("application terminated with error", "error", err)
	}
}
