package commission

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/staybook/staybook/internal/platform/db"
	"github.com/staybook/staybook/internal/platform/httpx"
	"github.com/staybook/staybook/internal/shared"
)

var (
	ErrNotFound          = fmt.Errorf("commission entry: %w", shared.ErrNotFound)
	ErrUnassigned        = fmt.Errorf("reservation has no staff member: %w", httpx.ErrValidation)
	ErrInvalidTransition = fmt.Errorf("commission: %w", shared.ErrInvalidTransition)
)

// Repository persists commission entries.
type Repository interface {
	// Insert stores e unless an entry for the reservation exists; inserted
	// reports which happened.
	Insert(ctx context.Context, e Entry) (inserted bool, err error)
	Get(ctx context.Context, id uuid.UUID) (*Entry, error)
	GetByReservation(ctx context.Context, reservationID int64) (*Entry, error)
	List(ctx context.Context, f Filter) ([]Entry, error)
	// UpdateStatus moves the entry from one status to another. It fails with
	// ErrInvalidTransition when the stored status is no longer from.
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to Status, paidAt *time.Time) error
	UpdateStaff(ctx context.Context, id uuid.UUID, staffID int64) error
}

type repository struct {
	db db.DBTX
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool}
}

const entryColumns = `id, reservation_id, staff_id, amount, status, paid_at, created_at, updated_at`

func scanEntry(row pgx.Row) (*Entry, error) {
	var e Entry
	var status string
	if err := row.Scan(&e.ID, &e.ReservationID, &e.StaffID, &e.Amount, &status, &e.PaidAt, &e.CreatedAt, &e.UpdatedAt); err != nil {
		return nil, err
	}
	e.Status = Status(status)
	return &e, nil
}

func (r *repository) Insert(ctx context.Context, e Entry) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		INSERT INTO commission_entries (id, reservation_id, staff_id, amount, status, paid_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
		ON CONFLICT (reservation_id) DO NOTHING`,
		e.ID, e.ReservationID, e.StaffID, e.Amount, string(e.Status), e.PaidAt, e.CreatedAt,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *repository) Get(ctx context.Context, id uuid.UUID) (*Entry, error) {
	e, err := scanEntry(r.db.QueryRow(ctx, `SELECT `+entryColumns+` FROM commission_entries WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

func (r *repository) GetByReservation(ctx context.Context, reservationID int64) (*Entry, error) {
	e, err := scanEntry(r.db.QueryRow(ctx, `SELECT `+entryColumns+` FROM commission_entries WHERE reservation_id = $1`, reservationID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

func (r *repository) List(ctx context.Context, f Filter) ([]Entry, error) {
	var conditions []string
	var args []any
	if f.StaffID != nil {
		args = append(args, *f.StaffID)
		conditions = append(conditions, fmt.Sprintf("staff_id = $%d", len(args)))
	}
	if f.ReservationID != nil {
		args = append(args, *f.ReservationID)
		conditions = append(conditions, fmt.Sprintf("reservation_id = $%d", len(args)))
	}
	if f.Status != "" {
		args = append(args, string(f.Status))
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}
	query := `SELECT ` + entryColumns + ` FROM commission_entries`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created_at, reservation_id"

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *e)
	}
	return out, rows.Err()
}

func (r *repository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to Status, paidAt *time.Time) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE commission_entries SET status = $2, paid_at = $3, updated_at = NOW()
		WHERE id = $1 AND status = $4`, id, string(to), paidAt, string(from))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: entry %s is no longer %s", ErrInvalidTransition, id, from)
	}
	return nil
}

func (r *repository) UpdateStaff(ctx context.Context, id uuid.UUID, staffID int64) error {
	tag, err := r.db.Exec(ctx, `UPDATE commission_entries SET staff_id = $2, updated_at = NOW() WHERE id = $1`, id, staffID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
