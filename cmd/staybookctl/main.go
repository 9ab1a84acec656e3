package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/staybook/staybook/cmd/staybookctl/cli"
	"github.com/staybook/staybook/internal/app"
	"github.com/staybook/staybook/internal/platform/cache"
	"github.com/staybook/staybook/internal/platform/db"
	"github.com/staybook/staybook/jobs"
)

// queue adapts the asynq client and inspector to cli.Jobs.
type queue struct {
	client    *jobs.Client
	inspector *asynq.Inspector
}

func (q queue) Enqueue(ctx context.Context, taskType string) (*asynq.TaskInfo, error) {
	return q.client.Enqueue(ctx, taskType)
}

func (q queue) Stats(ctx context.Context) (jobs.QueueStats, error) {
	return jobs.Stats(q.inspector)
}

func open(ctx context.Context) (*cli.Env, func(), error) {
	cfg, err := app.LoadConfig()
	if err != nil {
		return nil, nil, err
	}
	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		return nil, nil, err
	}
	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		pool.Close()
		return nil, nil, err
	}
	svc, err := app.NewServices(cfg, pool, redisClient, nil, logger)
	if err != nil {
		_ = redisClient.Close()
		pool.Close()
		return nil, nil, err
	}

	redisOpts := asynq.RedisClientOpt{Addr: cfg.RedisAddr}
	q := queue{client: jobs.NewClient(redisOpts), inspector: asynq.NewInspector(redisOpts)}

	release := func() {
		_ = q.client.Close()
		_ = q.inspector.Close()
		_ = redisClient.Close()
		pool.Close()
	}
	return &cli.Env{
		Seeder:    svc.Ledger,
		Summaries: svc.Summary,
		Ledgers:   svc.Cashflow,
		Jobs:      q,
		Users:     svc.Auth,
	}, release, nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cli.NewRootCmd(open).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
