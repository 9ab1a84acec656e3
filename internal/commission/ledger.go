package commission

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/staybook/staybook/internal/reservations"
	"github.com/staybook/staybook/internal/shared"
)

// ReservationSource lists reservations for seeding. reservations.Repository
// satisfies it.
type ReservationSource interface {
	List(ctx context.Context, f reservations.Filter) ([]reservations.Reservation, int, error)
}

// Invalidator drops cached aggregates after a write.
type Invalidator interface {
	Bump(ctx context.Context) error
}

// Metrics receives ledger counters.
type Metrics interface {
	CommissionRecorded()
	CommissionStatusChanged(status string)
}

// Ledger records and tracks one commission entry per assigned reservation.
type Ledger struct {
	repo    Repository
	source  ReservationSource
	policy  Policy
	cache   Invalidator
	audit   shared.AuditRecorder
	metrics Metrics
	logger  *slog.Logger
	clock   func() time.Time
}

// LedgerOption customises a Ledger.
type LedgerOption func(*Ledger)

// WithCache bumps the summary cache after ledger writes.
func WithCache(c Invalidator) LedgerOption {
	return func(l *Ledger) { l.cache = c }
}

// WithAudit records status changes.
func WithAudit(a shared.AuditRecorder) LedgerOption {
	return func(l *Ledger) { l.audit = a }
}

// WithMetrics reports ledger counters.
func WithMetrics(m Metrics) LedgerOption {
	return func(l *Ledger) { l.metrics = m }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) LedgerOption {
	return func(l *Ledger) { l.logger = logger }
}

// WithClock overrides time.Now, for tests.
func WithClock(clock func() time.Time) LedgerOption {
	return func(l *Ledger) { l.clock = clock }
}

// NewLedger wires the ledger.
func NewLedger(repo Repository, source ReservationSource, policy Policy, opts ...LedgerOption) *Ledger {
	l := &Ledger{
		repo:   repo,
		source: source,
		policy: policy,
		audit:  shared.NopAudit{},
		logger: slog.Default(),
		clock:  func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Policy returns the amount policy in force.
func (l *Ledger) Policy() Policy {
	return l.policy
}

// RecordCommission returns the entry for res, creating it when none exists.
// Calling it again for the same reservation returns the existing entry.
func (l *Ledger) RecordCommission(ctx context.Context, res reservations.Reservation) (*Entry, error) {
	entry, created, err := l.record(ctx, res)
	if created {
		l.bump(ctx)
	}
	return entry, err
}

func (l *Ledger) record(ctx context.Context, res reservations.Reservation) (*Entry, bool, error) {
	if !res.Assigned() {
		return nil, false, ErrUnassigned
	}
	existing, err := l.repo.GetByReservation(ctx, res.ID)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, false, fmt.Errorf("lookup commission for reservation %d: %w", res.ID, err)
	}

	status := StatusPending
	if res.Cancelled() {
		status = StatusCancelled
	}
	now := l.clock()
	entry := Entry{
		ID:            uuid.New(),
		ReservationID: res.ID,
		StaffID:       *res.StaffID,
		Amount:        l.policy.AmountFor(res),
		Status:        status,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	inserted, err := l.repo.Insert(ctx, entry)
	if err != nil {
		return nil, false, fmt.Errorf("insert commission for reservation %d: %w", res.ID, err)
	}
	if !inserted {
		// lost a race with another writer
		existing, err := l.repo.GetByReservation(ctx, res.ID)
		if err != nil {
			return nil, false, err
		}
		return existing, false, nil
	}
	if l.metrics != nil {
		l.metrics.CommissionRecorded()
	}
	return &entry, true, nil
}

// SeedAll records a commission for every assigned reservation. Re-running it
// creates nothing new.
func (l *Ledger) SeedAll(ctx context.Context) (SeedResult, error) {
	rows, _, err := l.source.List(ctx, reservations.Filter{})
	if err != nil {
		return SeedResult{}, fmt.Errorf("list reservations: %w", err)
	}
	var result SeedResult
	for _, res := range rows {
		if !res.Assigned() {
			continue
		}
		_, created, err := l.record(ctx, res)
		if err != nil {
			return result, err
		}
		if created {
			result.Created++
		} else {
			result.Skipped++
		}
	}
	if result.Created > 0 {
		l.bump(ctx)
	}
	return result, nil
}

// SetStatus moves an entry to status. Same-state requests are no-ops.
func (l *Ledger) SetStatus(ctx context.Context, id uuid.UUID, status Status) (*Entry, error) {
	if !status.Valid() {
		return nil, shared.Validationf("unknown commission status %q", status)
	}
	entry, err := l.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if entry.Status == status {
		return entry, nil
	}
	if !CanTransition(entry.Status, status) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, entry.Status, status)
	}
	if err := l.transition(ctx, entry, status); err != nil {
		return nil, err
	}
	return entry, nil
}

func (l *Ledger) transition(ctx context.Context, entry *Entry, status Status) error {
	from := entry.Status
	var paidAt *time.Time
	if status == StatusPaid {
		now := l.clock()
		paidAt = &now
	}
	if err := l.repo.UpdateStatus(ctx, entry.ID, from, status, paidAt); err != nil {
		return fmt.Errorf("update commission %s: %w", entry.ID, err)
	}
	entry.Status = status
	entry.PaidAt = paidAt
	entry.UpdatedAt = l.clock()

	if err := l.audit.Record(ctx, shared.AuditLog{
		ActorID:  shared.ActorID(ctx),
		Action:   "commission.status",
		Entity:   "commission_entry",
		EntityID: entry.ID.String(),
		Meta: map[string]any{
			"reservation_id": entry.ReservationID,
			"from":           string(from),
			"to":             string(status),
		},
	}); err != nil {
		l.logger.Warn("audit commission status", slog.String("entry_id", entry.ID.String()), slog.Any("error", err))
	}
	if l.metrics != nil {
		l.metrics.CommissionStatusChanged(string(status))
	}
	l.bump(ctx)
	return nil
}

// CancelForReservation cancels the pending entry of a reservation. Paid
// entries are left alone.
func (l *Ledger) CancelForReservation(ctx context.Context, reservationID int64) error {
	entry, err := l.repo.GetByReservation(ctx, reservationID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		return err
	}
	return l.cancel(ctx, entry)
}

func (l *Ledger) cancel(ctx context.Context, entry *Entry) error {
	switch entry.Status {
	case StatusPending:
		return l.transition(ctx, entry, StatusCancelled)
	case StatusPaid:
		l.logger.Warn("reservation cancelled after commission was paid",
			slog.Int64("reservation_id", entry.ReservationID),
			slog.String("entry_id", entry.ID.String()))
	}
	return nil
}

// SyncReservation aligns the ledger with the current state of res: it records
// missing entries, cancels entries of cancelled or unassigned reservations,
// and follows staff reassignment while the commission is unpaid.
func (l *Ledger) SyncReservation(ctx context.Context, res reservations.Reservation) error {
	entry, err := l.repo.GetByReservation(ctx, res.ID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}
	if entry == nil {
		if !res.Assigned() {
			return nil
		}
		if _, created, err := l.record(ctx, res); err != nil {
			return err
		} else if created {
			l.bump(ctx)
		}
		return nil
	}

	if res.Cancelled() || !res.Assigned() {
		return l.cancel(ctx, entry)
	}

	if entry.StaffID != *res.StaffID {
		if entry.Status == StatusPaid {
			l.logger.Warn("staff reassigned after commission was paid",
				slog.Int64("reservation_id", res.ID),
				slog.Int64("paid_staff_id", entry.StaffID),
				slog.Int64("staff_id", *res.StaffID))
		} else {
			if err := l.repo.UpdateStaff(ctx, entry.ID, *res.StaffID); err != nil {
				return fmt.Errorf("reassign commission %s: %w", entry.ID, err)
			}
			entry.StaffID = *res.StaffID
			l.bump(ctx)
		}
	}
	if entry.Status == StatusCancelled {
		return l.transition(ctx, entry, StatusPending)
	}
	return nil
}

func (l *Ledger) Get(ctx context.Context, id uuid.UUID) (*Entry, error) {
	return l.repo.Get(ctx, id)
}

func (l *Ledger) List(ctx context.Context, f Filter) ([]Entry, error) {
	if f.Status != "" && !f.Status.Valid() {
		return nil, shared.Validationf("unknown commission status %q", f.Status)
	}
	return l.repo.List(ctx, f)
}

func (l *Ledger) bump(ctx context.Context) {
	if l.cache == nil {
		return
	}
	if err := l.cache.Bump(ctx); err != nil {
		l.logger.Warn("bump summary cache", slog.Any("error", err))
	}
}
