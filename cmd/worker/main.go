package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/staybook/staybook/internal/app"
	jobmetrics "github.com/staybook/staybook/internal/jobs"
	"github.com/staybook/staybook/internal/platform/cache"
	"github.com/staybook/staybook/internal/platform/db"
	"github.com/staybook/staybook/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect database", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	svc, err := app.NewServices(cfg, pool, redisClient, nil, logger)
	if err != nil {
		logger.Error("wire services", slog.Any("error", err))
		os.Exit(1)
	}

	metrics := jobmetrics.NewMetrics(nil)
	seedJob := jobs.NewCommissionSeedJob(svc.Ledger, redisClient, logger, metrics)
	warmupJob := jobs.NewSummaryWarmupJob(svc.Summary, logger, metrics)
	overdueJob := jobs.NewInvoicesOverdueJob(svc.Invoices, logger, metrics)

	cron, err := jobs.DefaultCron()
	if err != nil {
		logger.Error("build cron schedule", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskCommissionSeed, Handler: seedJob.Handle},
			{Type: jobs.TaskSummaryWarmup, Handler: warmupJob.Handle},
			{Type: jobs.TaskInvoicesOverdue, Handler: overdueJob.Handle},
		},
		Cron: cron,
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("worker started", slog.Int("tasks", len(jobs.TaskTypes())))
	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
