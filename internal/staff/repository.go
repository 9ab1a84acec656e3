package staff

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/staybook/staybook/internal/platform/db"
	"github.com/staybook/staybook/internal/shared"
)

// ErrNotFound indicates the staff member does not exist.
var ErrNotFound = fmt.Errorf("staff member: %w", shared.ErrNotFound)

type Repository interface {
	Get(ctx context.Context, id int64) (*Member, error)
	List(ctx context.Context, activeOnly bool) ([]Member, error)
	Create(ctx context.Context, m Member) (int64, error)
	Update(ctx context.Context, m Member) error
}

type repository struct {
	db db.DBTX
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool}
}

const memberColumns = `id, name, COALESCE(phone, ''), is_active, created_at, updated_at`

func scanMember(row pgx.Row) (*Member, error) {
	var m Member
	if err := row.Scan(&m.ID, &m.Name, &m.Phone, &m.IsActive, &m.CreatedAt, &m.UpdatedAt); err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *repository) Get(ctx context.Context, id int64) (*Member, error) {
	m, err := scanMember(r.db.QueryRow(ctx, `SELECT `+memberColumns+` FROM staff_members WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return m, nil
}

func (r *repository) List(ctx context.Context, activeOnly bool) ([]Member, error) {
	query := `SELECT ` + memberColumns + ` FROM staff_members`
	if activeOnly {
		query += ` WHERE is_active`
	}
	query += ` ORDER BY name, id`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Member
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *m)
	}
	return out, rows.Err()
}

func (r *repository) Create(ctx context.Context, m Member) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx,
		`INSERT INTO staff_members (name, phone, is_active) VALUES ($1, NULLIF($2, ''), $3) RETURNING id`,
		m.Name, m.Phone, m.IsActive,
	).Scan(&id)
	return id, err
}

func (r *repository) Update(ctx context.Context, m Member) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE staff_members SET name = $2, phone = NULLIF($3, ''), is_active = $4, updated_at = NOW() WHERE id = $1`,
		m.ID, m.Name, m.Phone, m.IsActive,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
