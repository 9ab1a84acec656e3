package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/staybook/staybook/internal/commission"
	jobmetrics "github.com/staybook/staybook/internal/jobs"
	"github.com/staybook/staybook/internal/platform/cache"
	"github.com/staybook/staybook/internal/shared"
)

var defaultJobMetrics = jobmetrics.NewMetrics(nil)

// Seeder records commission entries for reservations that lack one.
type Seeder interface {
	SeedAll(ctx context.Context) (commission.SeedResult, error)
}

// CommissionSeedJob runs ledger seeding under a Redis lock so that only one
// worker seeds at a time.
type CommissionSeedJob struct {
	Seeder  Seeder
	Redis   *redis.Client
	LockTTL time.Duration
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
}

// NewCommissionSeedJob wires dependencies for the seeding handler.
func NewCommissionSeedJob(seeder Seeder, client *redis.Client, logger *slog.Logger, metrics *jobmetrics.Metrics) *CommissionSeedJob {
	return &CommissionSeedJob{Seeder: seeder, Redis: client, LockTTL: 10 * time.Minute, Logger: logger, Metrics: metrics}
}

// Handle processes commission seed tasks.
func (j *CommissionSeedJob) Handle(ctx context.Context, t *asynq.Task) (resultErr error) {
	if j == nil || j.Seeder == nil {
		return errors.New("commission seed: handler not configured")
	}
	if len(t.Payload()) > 0 && !json.Valid(t.Payload()) {
		return asynq.SkipRetry
	}
	logger := jobLogger(j.Logger, TaskCommissionSeed)

	lock, err := cache.Acquire(ctx, j.Redis, shared.CommissionSeedLockKey(), j.LockTTL)
	if errors.Is(err, cache.ErrLockHeld) {
		logger.Info("seed already running elsewhere")
		return nil
	}
	if err != nil {
		return err
	}
	defer func() {
		if err := lock.Release(context.WithoutCancel(ctx)); err != nil {
			logger.Warn("release seed lock", slog.Any("error", err))
		}
	}()

	metrics := orDefault(j.Metrics)
	tracker := metrics.Track(TaskCommissionSeed)
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	start := time.Now()
	result, err := j.Seeder.SeedAll(ctx)
	if err != nil {
		logger.Error("seed commissions", slog.Int("created", result.Created), slog.Any("error", err))
		return err
	}
	metrics.AddSeeded(result.Created)
	logger.Info("seeded commissions", slog.Int("created", result.Created), slog.Int("skipped", result.Skipped), slog.Duration("duration", time.Since(start)))
	return nil
}

func jobLogger(logger *slog.Logger, task string) *slog.Logger {
	if logger == nil {
		logger = slog.Default()
	}
	return logger.With(slog.String("job", task))
}

func orDefault(m *jobmetrics.Metrics) *jobmetrics.Metrics {
	if m != nil {
		return m
	}
	return defaultJobMetrics
}
