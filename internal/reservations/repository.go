package reservations

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/staybook/staybook/internal/platform/db"
	"github.com/staybook/staybook/internal/platform/httpx"
	"github.com/staybook/staybook/internal/shared"
)

var (
	ErrNotFound          = fmt.Errorf("reservation: %w", shared.ErrNotFound)
	ErrDuplicateCode     = fmt.Errorf("reservation booking code already exists: %w", httpx.ErrDuplicate)
	ErrInvalidTransition = fmt.Errorf("reservation: %w", shared.ErrInvalidTransition)
)

// Repository is the Reservation Store.
type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, Repository) error) error
	Get(ctx context.Context, id int64) (*Reservation, error)
	GetByCode(ctx context.Context, code string) (*Reservation, error)
	List(ctx context.Context, f Filter) ([]Reservation, int, error)
	Create(ctx context.Context, r Reservation) (int64, error)
	Update(ctx context.Context, r Reservation) error
	// UpdateStatus fails with ErrInvalidTransition when the stored status is
	// no longer from.
	UpdateStatus(ctx context.Context, id int64, from, to Status) error
}

type repository struct {
	db   db.DBTX
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool, pool: pool}
}

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &repository{db: tx, pool: r.pool})
	})
}

const reservationColumns = `id, booking_code, customer_name, property, check_in, check_out, staff_id,
	final_price, customer_deposit, base_price, status, notes, created_at, updated_at`

func scanReservation(row pgx.Row) (*Reservation, error) {
	var res Reservation
	var status string
	err := row.Scan(
		&res.ID, &res.BookingCode, &res.CustomerName, &res.Property, &res.CheckIn, &res.CheckOut, &res.StaffID,
		&res.FinalPrice, &res.CustomerDeposit, &res.BasePrice, &status, &res.Notes, &res.CreatedAt, &res.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	res.Status = Status(status)
	return &res, nil
}

func (r *repository) Get(ctx context.Context, id int64) (*Reservation, error) {
	res, err := scanReservation(r.db.QueryRow(ctx, `SELECT `+reservationColumns+` FROM reservations WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return res, nil
}

func (r *repository) GetByCode(ctx context.Context, code string) (*Reservation, error) {
	res, err := scanReservation(r.db.QueryRow(ctx, `SELECT `+reservationColumns+` FROM reservations WHERE booking_code = $1`, code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return res, nil
}

func (r *repository) List(ctx context.Context, f Filter) ([]Reservation, int, error) {
	var conditions []string
	var args []any
	argPos := 1

	if f.StaffID != nil {
		conditions = append(conditions, fmt.Sprintf("staff_id = $%d", argPos))
		args = append(args, *f.StaffID)
		argPos++
	}
	if f.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argPos))
		args = append(args, string(f.Status))
		argPos++
	}
	if f.Period.From != nil {
		conditions = append(conditions, fmt.Sprintf("check_in >= $%d", argPos))
		args = append(args, shared.DateOnly(*f.Period.From))
		argPos++
	}
	if f.Period.To != nil {
		conditions = append(conditions, fmt.Sprintf("check_in <= $%d", argPos))
		args = append(args, shared.DateOnly(*f.Period.To))
		argPos++
	}
	if f.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(booking_code ILIKE $%d OR customer_name ILIKE $%d)", argPos, argPos))
		args = append(args, "%"+f.Search+"%")
		argPos++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	if err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM reservations "+whereClause, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + reservationColumns + ` FROM reservations ` + whereClause + ` ORDER BY check_in DESC, id DESC`
	if f.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", argPos, argPos+1)
		args = append(args, f.Limit, f.Offset)
	}
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Reservation
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *res)
	}
	return out, total, rows.Err()
}

func (r *repository) Create(ctx context.Context, res Reservation) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO reservations (booking_code, customer_name, property, check_in, check_out, staff_id,
			final_price, customer_deposit, base_price, status, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id`,
		res.BookingCode, res.CustomerName, res.Property, res.CheckIn, res.CheckOut, res.StaffID,
		res.FinalPrice, res.CustomerDeposit, res.BasePrice, string(res.Status), res.Notes,
	).Scan(&id)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return 0, ErrDuplicateCode
		}
		return 0, err
	}
	return id, nil
}

func (r *repository) Update(ctx context.Context, res Reservation) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE reservations SET customer_name = $2, property = $3, check_in = $4, check_out = $5, staff_id = $6,
			final_price = $7, customer_deposit = $8, base_price = $9, notes = $10, updated_at = NOW()
		WHERE id = $1`,
		res.ID, res.CustomerName, res.Property, res.CheckIn, res.CheckOut, res.StaffID,
		res.FinalPrice, res.CustomerDeposit, res.BasePrice, res.Notes,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) UpdateStatus(ctx context.Context, id int64, from, to Status) error {
	tag, err := r.db.Exec(ctx, `UPDATE reservations SET status = $2, updated_at = NOW() WHERE id = $1 AND status = $3`,
		id, string(to), string(from))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: reservation %d is no longer %s", ErrInvalidTransition, id, from)
	}
	return nil
}
