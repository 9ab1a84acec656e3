package jobs

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskCommissionSeed records missing GRO commission entries.
	TaskCommissionSeed = "commission:seed"
	// TaskSummaryWarmup precomputes cached GRO summaries.
	TaskSummaryWarmup = "summary:warmup"
	// TaskInvoicesOverdue flags sent invoices past their due date.
	TaskInvoicesOverdue = "invoices:overdue"
)

// TaskTypes lists every task the worker handles.
func TaskTypes() []string {
	return []string{TaskCommissionSeed, TaskSummaryWarmup, TaskInvoicesOverdue}
}

// AsOfPayload pins a task run to a reference date. A zero AsOf means now.
type AsOfPayload struct {
	AsOf string `json:"as_of,omitempty"`
}

// NewTask builds a task of taskType with an empty payload.
func NewTask(taskType string) (*asynq.Task, error) {
	switch taskType {
	case TaskCommissionSeed:
		return asynq.NewTask(taskType, []byte(`{}`)), nil
	case TaskSummaryWarmup, TaskInvoicesOverdue:
		return NewAsOfTask(taskType, time.Time{})
	default:
		return nil, fmt.Errorf("jobs: unknown task %q", taskType)
	}
}

// NewAsOfTask builds a date-scoped task.
func NewAsOfTask(taskType string, asOf time.Time) (*asynq.Task, error) {
	payload := AsOfPayload{}
	if !asOf.IsZero() {
		payload.AsOf = asOf.Format("2006-01-02")
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(taskType, data), nil
}

// decodeAsOf reads the payload of t. An empty payload yields fallback.
func decodeAsOf(t *asynq.Task, fallback time.Time) (time.Time, error) {
	if len(t.Payload()) == 0 {
		return fallback, nil
	}
	var payload AsOfPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return time.Time{}, err
	}
	if payload.AsOf == "" {
		return fallback, nil
	}
	return time.Parse("2006-01-02", payload.AsOf)
}
