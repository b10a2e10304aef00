package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"finance-tracker/internal/database"
	"finance-tracker/internal/llm"
	"finance-tracker/internal/repositories"
	"finance-tracker/internal/server"
	"finance-tracker/internal/services"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.serve(ctx)
		},
	}
}

func (a *app) serve(ctx context.Context) error {
	cfg := a.cfg

	db, err := database.Initialize(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			a.logger.Error("failed to close database", "error", err)
		}
	}()

	userRepo := repositories.NewUserRepository(db.DB)
	transactionRepo := repositories.NewTransactionRepository(db.DB)
	blacklistRepo := repositories.NewBlacklistedTokenRepository(db.DB)

	if removed, err := blacklistRepo.DeleteExpired(); err != nil {
		a.logger.Warn("failed to purge expired revoked sessions", "error", err)
	} else if removed > 0 {
		a.logger.Info("purged expired revoked sessions", "count", removed)
	}

	metrics := services.NewPrometheusMetrics(prometheus.DefaultRegisterer)
	audit := services.NewAuditLogger(a.logger.With("component", "audit"))

	generator, err := llm.New(&cfg.AI, metrics, audit)
	if err != nil {
		return fmt.Errorf("failed to configure text generation: %w", err)
	}

	passwords := services.NewPasswordService(cfg.Security.BCryptCost, cfg.Security.PasswordMinLength)

	srv, err := server.New(cfg, server.Dependencies{
		Transactions: services.NewTransactionService(transactionRepo, audit, metrics, services.TransactionServiceConfig{
			EnforceOwnership: cfg.Security.EnforceTransactionOwnership,
		}),
		Statistics: services.NewStatisticsService(transactionRepo),
		Advice: services.NewAdviceService(transactionRepo, generator, services.AdviceConfig{
			Model:   cfg.AI.Model,
			Timeout: cfg.AI.Timeout,
		}, metrics, audit, a.logger),
		Auth:     services.NewAuthService(userRepo, passwords, audit, metrics, a.logger),
		Sessions: services.NewSessionService(&cfg.Session, blacklistRepo, audit),
		Metrics:  metrics,
		Health:   db,
		Gatherer: prometheus.DefaultGatherer,
	}, a.logger)
	if err != nil {
		return err
	}

	return srv.Run(ctx)
}
