package expenses

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/staybook/staybook/internal/platform/db"
	"github.com/staybook/staybook/internal/shared"
)

var (
	ErrNotFound          = fmt.Errorf("expense: %w", shared.ErrNotFound)
	ErrInvalidTransition = fmt.Errorf("expense: %w", shared.ErrInvalidTransition)
)

type Repository interface {
	Get(ctx context.Context, id int64) (*Expense, error)
	List(ctx context.Context, f Filter) ([]Expense, int, error)
	Create(ctx context.Context, e Expense) (int64, error)
	Update(ctx context.Context, e Expense) error
	UpdateStatus(ctx context.Context, id int64, from, to Status) error
}

type repository struct {
	db db.DBTX
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool}
}

const expenseColumns = `id, expense_date, category, description, amount, status, vendor, reference, created_at, updated_at`

func scanExpense(row pgx.Row) (*Expense, error) {
	var e Expense
	var status string
	err := row.Scan(&e.ID, &e.Date, &e.Category, &e.Description, &e.Amount, &status, &e.Vendor, &e.Reference, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	e.Status = Status(status)
	return &e, nil
}

func (r *repository) Get(ctx context.Context, id int64) (*Expense, error) {
	e, err := scanExpense(r.db.QueryRow(ctx, `SELECT `+expenseColumns+` FROM expenses WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

func (r *repository) List(ctx context.Context, f Filter) ([]Expense, int, error) {
	var conditions []string
	var args []any
	argPos := 1

	if f.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argPos))
		args = append(args, string(f.Status))
		argPos++
	}
	if f.Category != "" {
		conditions = append(conditions, fmt.Sprintf("category = $%d", argPos))
		args = append(args, f.Category)
		argPos++
	}
	if f.Period.From != nil {
		conditions = append(conditions, fmt.Sprintf("expense_date >= $%d", argPos))
		args = append(args, shared.DateOnly(*f.Period.From))
		argPos++
	}
	if f.Period.To != nil {
		conditions = append(conditions, fmt.Sprintf("expense_date <= $%d", argPos))
		args = append(args, shared.DateOnly(*f.Period.To))
		argPos++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	if err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM expenses "+whereClause, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + expenseColumns + ` FROM expenses ` + whereClause + ` ORDER BY expense_date DESC, id DESC`
	if f.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", argPos, argPos+1)
		args = append(args, f.Limit, f.Offset)
	}
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *e)
	}
	return out, total, rows.Err()
}

func (r *repository) Create(ctx context.Context, e Expense) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO expenses (expense_date, category, description, amount, status, vendor, reference)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`,
		e.Date, e.Category, e.Description, e.Amount, string(e.Status), e.Vendor, e.Reference,
	).Scan(&id)
	return id, err
}

func (r *repository) Update(ctx context.Context, e Expense) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE expenses SET expense_date = $2, category = $3, description = $4, amount = $5,
			vendor = $6, reference = $7, updated_at = NOW()
		WHERE id = $1`,
		e.ID, e.Date, e.Category, e.Description, e.Amount, e.Vendor, e.Reference,
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
	tag, err := r.db.Exec(ctx, `UPDATE expenses SET status = $2, updated_at = NOW() WHERE id = $1 AND status = $3`,
		id, string(to), string(from))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: expense %d is no longer %s", ErrInvalidTransition, id, from)
	}
	return nil
}
