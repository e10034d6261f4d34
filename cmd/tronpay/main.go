// Package main запускает HTTP-сервер платёжного сервиса.
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

	"github.com/mmeshcher/tronpay-system/internal/config"
	"github.com/mmeshcher/tronpay-system/internal/handler"
	"github.com/mmeshcher/tronpay-system/internal/middleware"
	"github.com/mmeshcher/tronpay-system/internal/repository"
	"github.com/mmeshcher/tronpay-system/internal/service"
	"github.com/mmeshcher/tronpay-system/internal/session"
	"github.com/mmeshcher/tronpay-system/internal/tron"
	"github.com/mmeshcher/tronpay-system/internal/tronapi"
	"github.com/mmeshcher/tronpay-system/internal/verifier"
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
		sugar.Info("no database URI configured, using in-memory storage")
		repo = repository.NewMemoryRepository()
	}
	defer repo.Close()

	codec := tron.NewCodec()
	ledgerClient := tronapi.NewClient(cfg.TronAPIAddress)

	transferVerifier := verifier.New(ledgerClient, codec, verifier.Policy{
		DepositAddress: cfg.DepositAddress,
		TokenContract:  cfg.TokenContract,
		MinimumAmount:  cfg.MinimumDeposit,
		TokenDecimals:  cfg.TokenDecimals,
	})

	sessions := session.NewStore(cfg.SessionTTL, cfg.SweepInterval)

	svc := service.NewService(repo, transferVerifier, sessions, cfg.TokenDecimals)
	defer svc.Close()

	authMiddleware := middleware.NewAuthMiddleware(cfg.AuthSecret)
	h := handler.NewHandler(svc, logger, authMiddleware, handler.DepositInfo{
		Address:    cfg.DepositAddress,
		Minimum:    cfg.MinimumDeposit,
		SessionTTL: cfg.SessionTTL,
	})

	r := h.SetupRouter()

	server := &http.Server{
		Addr:    cfg.RunAddress,
		Handler: r,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	// Запуск периодической очистки просроченных сессий депозита
	g.Go(func() error {
		sessions.Run(ctx)
		return nil
	})

	// Запуск HTTP-сервера
	g.Go(func() error {
		sugar.Infow("starting tronpay server",
			"addr", cfg.RunAddress,
			"deposit_address", cfg.DepositAddress,
			"token_contract", cfg.TokenContract,
		)
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
