package jobs

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hibiken/asynq"

	"github.com/staybook/staybook/internal/platform/httpx"
)

// Worker wraps the Asynq server and optional scheduler.
type Worker struct {
	server    *asynq.Server
	mux       *asynq.ServeMux
	scheduler *asynq.Scheduler
	logger    *slog.Logger
}

// TaskHandler allows injecting custom Asynq handlers during worker setup.
type TaskHandler struct {
	Type    string
	Handler asynq.HandlerFunc
}

// CronRegistration wires a cron expression to a prepared task.
type CronRegistration struct {
	Spec    string
	Task    *asynq.Task
	Options []asynq.Option
}

// WorkerConfig collects dependencies required to bootstrap the worker.
type WorkerConfig struct {
	RedisOpts   asynq.RedisClientOpt
	Logger      *slog.Logger
	Concurrency int
	Handlers    []TaskHandler
	Cron        []CronRegistration
}

// DefaultCron schedules seeding hourly, and warmup and the overdue sweep daily.
func DefaultCron() ([]CronRegistration, error) {
	schedule := []struct {
		spec string
		task string
	}{
		{"0 * * * *", TaskCommissionSeed},
		{"15 1 * * *", TaskSummaryWarmup},
		{"5 0 * * *", TaskInvoicesOverdue},
	}
	out := make([]CronRegistration, 0, len(schedule))
	for _, s := range schedule {
		task, err := NewTask(s.task)
		if err != nil {
			return nil, err
		}
		out = append(out, CronRegistration{Spec: s.spec, Task: task, Options: []asynq.Option{asynq.MaxRetry(3), asynq.Queue(QueueDefault)}})
	}
	return out, nil
}

// NewWorker constructs a Worker instance.
func NewWorker(cfg WorkerConfig) (*Worker, error) {
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = 5
	}
	srv := asynq.NewServer(cfg.RedisOpts, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			QueueDefault: 1,
		},
	})
	mux := asynq.NewServeMux()
	for _, h := range cfg.Handlers {
		if h.Type == "" || h.Handler == nil {
			continue
		}
		mux.HandleFunc(h.Type, h.Handler)
	}

	var scheduler *asynq.Scheduler
	if len(cfg.Cron) > 0 {
		scheduler = asynq.NewScheduler(cfg.RedisOpts, &asynq.SchedulerOpts{Location: time.UTC})
		for _, entry := range cfg.Cron {
			if entry.Spec == "" || entry.Task == nil {
				continue
			}
			if _, err := scheduler.Register(entry.Spec, entry.Task, entry.Options...); err != nil {
				return nil, err
			}
		}
	}

	return &Worker{server: srv, mux: mux, scheduler: scheduler, logger: cfg.Logger}, nil
}

// Run starts processing jobs until context cancellation.
func (w *Worker) Run(ctx context.Context) error {
	if w == nil {
		return errors.New("worker: not configured")
	}
	if w.scheduler != nil {
		if err := w.scheduler.Start(); err != nil {
			return err
		}
	}
	errCh := make(chan error, 1)
	go func() {
		errCh <- w.server.Run(w.mux)
	}()
	select {
	case <-ctx.Done():
		if w.scheduler != nil {
			w.scheduler.Shutdown()
		}
		w.server.Shutdown()
		return ctx.Err()
	case err := <-errCh:
		if w.scheduler != nil {
			w.scheduler.Shutdown()
		}
		return err
	}
}

// Client submits jobs to the queue.
type Client struct {
	client *asynq.Client
}

// NewClient constructs an Asynq client.
func NewClient(redisOpts asynq.RedisClientOpt) *Client {
	return &Client{client: asynq.NewClient(redisOpts)}
}

// Enqueue submits a task of taskType for immediate processing.
func (c *Client) Enqueue(ctx context.Context, taskType string) (*asynq.TaskInfo, error) {
	task, err := NewTask(taskType)
	if err != nil {
		return nil, err
	}
	return c.client.EnqueueContext(ctx, task, asynq.Queue(QueueDefault), asynq.MaxRetry(3))
}

// Close releases client resources.
func (c *Client) Close() error {
	return c.client.Close()
}

// QueueStats summarises the default queue.
type QueueStats struct {
	Queue     string `json:"queue"`
	Size      int    `json:"size"`
	Pending   int    `json:"pending"`
	Active    int    `json:"active"`
	Scheduled int    `json:"scheduled"`
	Retry     int    `json:"retry"`
	Archived  int    `json:"archived"`
	Processed int    `json:"processed_today"`
	Failed    int    `json:"failed_today"`
}

// Stats reads the default queue from the inspector. A missing inspector or
// an empty queue reports zeroes.
func Stats(inspector *asynq.Inspector) (QueueStats, error) {
	stats := QueueStats{Queue: QueueDefault}
	if inspector == nil {
		return stats, nil
	}
	info, err := inspector.GetQueueInfo(QueueDefault)
	if err != nil {
		if errors.Is(err, asynq.ErrQueueNotFound) {
			return stats, nil
		}
		return stats, err
	}
	stats.Queue = info.Queue
	stats.Size = info.Size
	stats.Pending = info.Pending
	stats.Active = info.Active
	stats.Scheduled = info.Scheduled
	stats.Retry = info.Retry
	stats.Archived = info.Archived
	stats.Processed = info.Processed
	stats.Failed = info.Failed
	return stats, nil
}

// Handler exposes HTTP endpoints for job observability.
type Handler struct {
	inspector *asynq.Inspector
	logger    *slog.Logger
}

// NewHandler constructs an HTTP handler for jobs endpoints.
func NewHandler(inspector *asynq.Inspector, logger *slog.Logger) *Handler {
	return &Handler{inspector: inspector, logger: logger}
}

// MountRoutes attaches job routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/health", h.health)
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	stats, err := Stats(h.inspector)
	if err != nil {
		if h.logger != nil {
			h.logger.Warn("jobs health", slog.Any("error", err))
		}
		httpx.Problem(w, http.StatusServiceUnavailable, "Queue Unavailable", "")
		return
	}
	httpx.JSON(w, http.StatusOK, stats)
}
