package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/staybook/staybook/internal/app"
	"github.com/staybook/staybook/internal/auth"
	"github.com/staybook/staybook/internal/cashflow"
	"github.com/staybook/staybook/internal/clients"
	"github.com/staybook/staybook/internal/commission"
	"github.com/staybook/staybook/internal/expenses"
	"github.com/staybook/staybook/internal/invoices"
	"github.com/staybook/staybook/internal/observability"
	"github.com/staybook/staybook/internal/platform/cache"
	"github.com/staybook/staybook/internal/platform/db"
	"github.com/staybook/staybook/internal/reservations"
	"github.com/staybook/staybook/internal/staff"
	"github.com/staybook/staybook/internal/summary"
	"github.com/staybook/staybook/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
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
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()
	if cfg.DBApplySchema {
		if err := db.ApplySchema(ctx, pool); err != nil {
			logger.Error("apply schema", slog.Any("error", err))
			os.Exit(1)
		}
	}

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

	metrics := observability.NewMetrics()
	svc, err := app.NewServices(cfg, pool, redisClient, metrics, logger)
	if err != nil {
		logger.Error("wire services", slog.Any("error", err))
		os.Exit(1)
	}
	if err := svc.SummaryCache.ListenForInvalidation(ctx); err != nil {
		logger.Warn("summary cache invalidation listener", slog.Any("error", err))
	}

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		_ = inspector.Close()
	}()

	authMiddleware := auth.NewMiddleware(svc.Tokens)
	router := app.NewRouter(app.RouterParams{
		Logger:              logger,
		Config:              cfg,
		Metrics:             metrics,
		AuthMiddleware:      authMiddleware,
		AuthHandler:         auth.NewHandler(logger, svc.Auth, authMiddleware),
		ClientsHandler:      clients.NewHandler(logger, svc.Clients, authMiddleware),
		StaffHandler:        staff.NewHandler(logger, svc.Staff, authMiddleware),
		ReservationsHandler: reservations.NewHandler(logger, svc.Reservations),
		CommissionHandler:   commission.NewHandler(logger, svc.Ledger, authMiddleware),
		SummaryHandler:      summary.NewHandler(logger, svc.Summary),
		InvoicesHandler:     invoices.NewHandler(logger, svc.Invoices, authMiddleware),
		ExpensesHandler:     expenses.NewHandler(logger, svc.Expenses, authMiddleware),
		CashflowHandler:     cashflow.NewHandler(logger, svc.Cashflow),
		JobHandler:          jobs.NewHandler(inspector, logger),
		Checks: map[string]app.Pinger{
			"postgres": app.PingFunc(pool.Ping),
			"redis": app.PingFunc(func(ctx context.Context) error {
				return redisClient.Ping(ctx).Err()
			}),
		},
		Optional: map[string]app.Pinger{
			"gotenberg": svc.PDF,
		},
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("http server listening", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown", slog.Any("error", err))
	}
	logger.Info("server stopped")
}
