package shared

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/staybook/staybook/internal/platform/db"
)

// AuditLog represents a record stored in audit_logs.
type AuditLog struct {
	ActorID  int64
	Action   string
	Entity   string
	EntityID string
	Meta     map[string]any
	At       time.Time
}

// AuditRecorder persists audit entries. Services depend on this interface so
// tests can capture entries in memory.
type AuditRecorder interface {
	Record(ctx context.Context, log AuditLog) error
}

// AuditLogger writes records into audit_logs.
type AuditLogger struct {
	db db.DBTX
}

// NewAuditLogger returns a new AuditLogger.
func NewAuditLogger(conn db.DBTX) *AuditLogger {
	return &AuditLogger{db: conn}
}

// Record persists the log entry.
func (l *AuditLogger) Record(ctx context.Context, log AuditLog) error {
	if l == nil || l.db == nil {
		return errors.New("audit logger not initialised")
	}
	if log.Action == "" || log.Entity == "" || log.EntityID == "" {
		return errors.New("audit log requires action/entity/entity_id")
	}
	if log.Meta == nil {
		log.Meta = map[string]any{}
	}
	metaJSON, err := json.Marshal(log.Meta)
	if err != nil {
		return err
	}
	var at *time.Time
	if !log.At.IsZero() {
		at = &log.At
	}
	_, err = l.db.Exec(ctx, `INSERT INTO audit_logs (actor_id, action, entity, entity_id, meta, occurred_at) VALUES ($1, $2, $3, $4, $5, COALESCE($6, NOW()))`, log.ActorID, log.Action, log.Entity, log.EntityID, metaJSON, at)
	return err
}

// NopAudit discards entries.
type NopAudit struct{}

// Record implements AuditRecorder.
func (NopAudit) Record(context.Context, AuditLog) error { return nil }

// ActorID returns the acting user id from ctx, or 0 for system actions.
func ActorID(ctx context.Context) int64 {
	if actor, ok := ActorFromContext(ctx); ok {
		return actor.UserID
	}
	return 0
}
