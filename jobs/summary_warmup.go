package jobs

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/staybook/staybook/internal/jobs"
)

// Warmer precomputes cached summaries relative to now.
type Warmer interface {
	Warmup(ctx context.Context, now time.Time) error
}

// SummaryWarmupJob fills the summary cache for all time and the current month.
type SummaryWarmupJob struct {
	Warmer  Warmer
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
	clock   func() time.Time
}

// NewSummaryWarmupJob wires dependencies for the warmup handler.
func NewSummaryWarmupJob(warmer Warmer, logger *slog.Logger, metrics *jobmetrics.Metrics) *SummaryWarmupJob {
	return &SummaryWarmupJob{
		Warmer:  warmer,
		Logger:  logger,
		Metrics: metrics,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle processes summary warmup tasks.
func (j *SummaryWarmupJob) Handle(ctx context.Context, t *asynq.Task) (resultErr error) {
	if j == nil || j.Warmer == nil {
		return errors.New("summary warmup: handler not configured")
	}
	asOf, err := decodeAsOf(t, j.now())
	if err != nil {
		return asynq.SkipRetry
	}
	tracker := orDefault(j.Metrics).Track(TaskSummaryWarmup)
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	logger := jobLogger(j.Logger, TaskSummaryWarmup)
	// Scope the run so a slow database cannot hold the worker slot.
	runCtx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()
	if err := j.Warmer.Warmup(runCtx, asOf); err != nil {
		logger.Error("warm summaries", slog.Any("error", err))
		return err
	}
	logger.Info("warmed summaries", slog.String("as_of", asOf.Format("2006-01-02")))
	return nil
}

func (j *SummaryWarmupJob) now() time.Time {
	if j.clock != nil {
		return j.clock()
	}
	return time.Now().UTC()
}
