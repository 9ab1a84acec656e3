package jobs

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/staybook/staybook/internal/jobs"
)

// OverdueMarker flags sent invoices whose due date passed before now.
type OverdueMarker interface {
	MarkOverdue(ctx context.Context, now time.Time) (int, error)
}

// InvoicesOverdueJob runs the daily overdue sweep.
type InvoicesOverdueJob struct {
	Invoices OverdueMarker
	Logger   *slog.Logger
	Metrics  *jobmetrics.Metrics
	clock    func() time.Time
}

// NewInvoicesOverdueJob wires dependencies for the sweep handler.
func NewInvoicesOverdueJob(invoices OverdueMarker, logger *slog.Logger, metrics *jobmetrics.Metrics) *InvoicesOverdueJob {
	return &InvoicesOverdueJob{
		Invoices: invoices,
		Logger:   logger,
		Metrics:  metrics,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle processes overdue sweep tasks.
func (j *InvoicesOverdueJob) Handle(ctx context.Context, t *asynq.Task) (resultErr error) {
	if j == nil || j.Invoices == nil {
		return errors.New("invoices overdue: handler not configured")
	}
	asOf, err := decodeAsOf(t, j.now())
	if err != nil {
		return asynq.SkipRetry
	}
	tracker := orDefault(j.Metrics).Track(TaskInvoicesOverdue)
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	logger := jobLogger(j.Logger, TaskInvoicesOverdue)
	marked, err := j.Invoices.MarkOverdue(ctx, asOf)
	if err != nil {
		logger.Error("mark overdue invoices", slog.Int("marked", marked), slog.Any("error", err))
		return err
	}
	logger.Info("marked overdue invoices", slog.Int("marked", marked))
	return nil
}

func (j *InvoicesOverdueJob) now() time.Time {
	if j.clock != nil {
		return j.clock()
	}
	return time.Now().UTC()
}
