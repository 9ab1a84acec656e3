package clients

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

var ErrNotFound = fmt.Errorf("client: %w", shared.ErrNotFound)

type Repository interface {
	Get(ctx context.Context, id int64) (*Client, error)
	List(ctx context.Context, req ListClientsRequest) ([]Client, int, error)
	Create(ctx context.Context, c Client) (int64, error)
	Update(ctx context.Context, c Client) error
}

type repository struct {
	db db.DBTX
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool}
}

const clientColumns = `id, name, email, phone, company, address, is_active, created_at, updated_at`

func scanClient(row pgx.Row) (*Client, error) {
	var c Client
	err := row.Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.Company, &c.Address, &c.IsActive, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *repository) Get(ctx context.Context, id int64) (*Client, error) {
	c, err := scanClient(r.db.QueryRow(ctx, `SELECT `+clientColumns+` FROM clients WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return c, nil
}

func (r *repository) List(ctx context.Context, req ListClientsRequest) ([]Client, int, error) {
	var conditions []string
	var args []any
	argPos := 1

	if req.IsActive != nil {
		conditions = append(conditions, fmt.Sprintf("is_active = $%d", argPos))
		args = append(args, *req.IsActive)
		argPos++
	}
	if req.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(name ILIKE $%d OR email ILIKE $%d OR company ILIKE $%d)", argPos, argPos, argPos))
		args = append(args, "%"+req.Search+"%")
		argPos++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	if err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM clients "+whereClause, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`SELECT %s FROM clients %s ORDER BY name, id LIMIT $%d OFFSET $%d`, clientColumns, whereClause, argPos, argPos+1)
	args = append(args, req.Limit, req.Offset)
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Client
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *c)
	}
	return out, total, rows.Err()
}

func (r *repository) Create(ctx context.Context, c Client) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx,
		`INSERT INTO clients (name, email, phone, company, address, is_active) VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
		c.Name, c.Email, c.Phone, c.Company, c.Address, c.IsActive,
	).Scan(&id)
	return id, err
}

func (r *repository) Update(ctx context.Context, c Client) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE clients SET name = $2, email = $3, phone = $4, company = $5, address = $6, is_active = $7, updated_at = NOW() WHERE id = $1`,
		c.ID, c.Name, c.Email, c.Phone, c.Company, c.Address, c.IsActive,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
