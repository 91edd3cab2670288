package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/modhub/review-queue/internal/accounts"
	"github.com/modhub/review-queue/internal/api"
	"github.com/modhub/review-queue/internal/authz"
	"github.com/modhub/review-queue/internal/cascade"
	"github.com/modhub/review-queue/internal/config"
	"github.com/modhub/review-queue/internal/db"
	"github.com/modhub/review-queue/internal/metrics"
	"github.com/modhub/review-queue/internal/publisher"
	"github.com/modhub/review-queue/internal/ratelimiter"
	"github.com/modhub/review-queue/internal/repository"
	"github.com/modhub/review-queue/internal/service"
	"github.com/modhub/review-queue/internal/worker"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync() //nolint:errcheck

	// ---- configuration ----
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}

	// ---- database ----
	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer pool.Close()

	if err := db.Migrate(cfg.DatabaseURL); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}
	logger.Info("database migrations applied")

	// ---- core dependencies ----
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	repo := repository.NewPgQueueRepository(pool)
	pub := publisher.NewHTTPPublisher(cfg.PublisherBaseURL, cfg.PublisherTimeout)
	remover := accounts.NewHTTPRemover(cfg.AccountServiceBaseURL, cfg.AccountServiceTimeout)
	authorizer := authz.NewHTTPAuthorizer(cfg.AuthzBaseURL, cfg.AuthzTimeout)
	coordinator := cascade.NewCoordinator(authorizer, remover, cfg.CascadeBlockAccess, logger)
	limiter := ratelimiter.New(cfg.DecisionRateLimit)

	onSubmitted, onDecided, onEditProposed, onCascadeFailed := m.ServiceHooks()
	svc := service.NewModerationService(repo, pub, coordinator, authorizer, service.MetricHooks{
		OnSubmitted:     onSubmitted,
		OnDecided:       onDecided,
		OnEditProposed:  onEditProposed,
		OnCascadeFailed: onCascadeFailed,
	}, logger)

	// ---- background workers ----
	// Context for all background goroutines; cancelled on shutdown signal.
	workerCtx, cancelWorkers := context.WithCancel(ctx)
	defer cancelWorkers()

	sweeper := worker.NewSweeper(repo, cfg.SweepInterval, cfg.SweepRetention, logger)
	go sweeper.Run(workerCtx)

	// ---- HTTP server ----
	router := api.NewRouter(svc, limiter, reg, logger)
	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	// Start server in a goroutine so it does not block the shutdown listener.
	go func() {
		logger.Info("server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	// ---- graceful shutdown ----
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutdown signal received")

	// 1. Stop accepting new HTTP requests.
	shutdownCtx, shutdownCancel := context.WithTimeout(ctx, cfg.ShutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", zap.Error(err))
	}

	// 2. Stop the retention sweeper.
	cancelWorkers()

	logger.Info("server stopped cleanly")
}
