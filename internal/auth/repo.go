package auth

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
	ErrUserNotFound = fmt.Errorf("user: %w", shared.ErrNotFound)
	ErrEmailTaken   = fmt.Errorf("email already registered: %w", httpx.ErrDuplicate)
)

// Repository defines persistence operations for auth module.
type Repository interface {
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, id int64) (*User, error)
	Create(ctx context.Context, u User) (int64, error)
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	db db.DBTX
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{db: pool}
}

const userColumns = `id, email, password_hash, role, is_active, created_at, updated_at`

func scanUser(row pgx.Row) (*User, error) {
	var u User
	if err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Role, &u.IsActive, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

// FindByEmail fetches a user by email, case-insensitively.
func (r *PGRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	return scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE lower(email) = $1`, strings.ToLower(email)))
}

func (r *PGRepository) FindByID(ctx context.Context, id int64) (*User, error) {
	return scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

func (r *PGRepository) Create(ctx context.Context, u User) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO users (email, password_hash, role, is_active)
		VALUES ($1, $2, $3, $4)
		RETURNING id`,
		strings.ToLower(u.Email), u.PasswordHash, u.Role, u.IsActive,
	).Scan(&id)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return 0, ErrEmailTaken
		}
		return 0, err
	}
	return id, nil
}

var _ Repository = (*PGRepository)(nil)
