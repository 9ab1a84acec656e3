package invoices

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/staybook/staybook/internal/platform/db"
	"github.com/staybook/staybook/internal/platform/httpx"
	"github.com/staybook/staybook/internal/shared"
)

var (
	ErrNotFound          = fmt.Errorf("invoice: %w", shared.ErrNotFound)
	ErrDuplicateNumber   = fmt.Errorf("invoice number already exists: %w", httpx.ErrDuplicate)
	ErrInvalidTransition = fmt.Errorf("invoice: %w", shared.ErrInvalidTransition)
)

// numberingLockKey serialises number allocation across transactions.
const numberingLockKey int64 = 0x5354_4259_494e_5601

type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, Repository) error) error
	Get(ctx context.Context, id int64) (*Invoice, error)
	List(ctx context.Context, f Filter) ([]Invoice, int, error)
	LockNumbering(ctx context.Context) error
	NextSequence(ctx context.Context, prefix string) (int, error)
	Create(ctx context.Context, inv Invoice) (int64, error)
	// UpdateStatus stores inv's status and payment fields. It fails with
	// ErrInvalidTransition when the stored status is no longer from.
	UpdateStatus(ctx context.Context, inv Invoice, from Status) error
	ListOverdue(ctx context.Context, asOf time.Time) ([]Invoice, error)
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

const invoiceColumns = `id, number, client_id, client_name, issue_date, due_date, subtotal, tax, discount, total,
	status, payment_date, payment_method, notes, created_at, updated_at`

func scanInvoice(row pgx.Row) (*Invoice, error) {
	var inv Invoice
	var status string
	err := row.Scan(
		&inv.ID, &inv.Number, &inv.ClientID, &inv.ClientName, &inv.IssueDate, &inv.DueDate,
		&inv.Subtotal, &inv.Tax, &inv.Discount, &inv.Total,
		&status, &inv.PaymentDate, &inv.PaymentMethod, &inv.Notes, &inv.CreatedAt, &inv.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	inv.Status = Status(status)
	return &inv, nil
}

func (r *repository) Get(ctx context.Context, id int64) (*Invoice, error) {
	inv, err := scanInvoice(r.db.QueryRow(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	rows, err := r.db.Query(ctx, `
		SELECT id, position, description, quantity, unit_price, amount
		FROM invoice_items WHERE invoice_id = $1 ORDER BY position`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var item Item
		if err := rows.Scan(&item.ID, &item.Position, &item.Description, &item.Quantity, &item.UnitPrice, &item.Amount); err != nil {
			return nil, err
		}
		inv.Items = append(inv.Items, item)
	}
	return inv, rows.Err()
}

// List returns invoice headers without items.
func (r *repository) List(ctx context.Context, f Filter) ([]Invoice, int, error) {
	var conditions []string
	var args []any
	argPos := 1

	if f.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argPos))
		args = append(args, string(f.Status))
		argPos++
	}
	if f.ClientID != nil {
		conditions = append(conditions, fmt.Sprintf("client_id = $%d", argPos))
		args = append(args, *f.ClientID)
		argPos++
	}
	if f.Period.From != nil {
		conditions = append(conditions, fmt.Sprintf("COALESCE(payment_date, issue_date) >= $%d", argPos))
		args = append(args, shared.DateOnly(*f.Period.From))
		argPos++
	}
	if f.Period.To != nil {
		conditions = append(conditions, fmt.Sprintf("COALESCE(payment_date, issue_date) <= $%d", argPos))
		args = append(args, shared.DateOnly(*f.Period.To))
		argPos++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	if err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM invoices "+whereClause, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + invoiceColumns + ` FROM invoices ` + whereClause + ` ORDER BY issue_date DESC, id DESC`
	if f.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", argPos, argPos+1)
		args = append(args, f.Limit, f.Offset)
	}
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *inv)
	}
	return out, total, rows.Err()
}

func (r *repository) LockNumbering(ctx context.Context) error {
	_, err := r.db.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, numberingLockKey)
	return err
}

func (r *repository) NextSequence(ctx context.Context, prefix string) (int, error) {
	var last *string
	err := r.db.QueryRow(ctx, `SELECT MAX(number) FROM invoices WHERE number LIKE $1`, prefix+"%").Scan(&last)
	if err != nil {
		return 0, err
	}
	if last == nil {
		return 1, nil
	}
	seq, err := strconv.Atoi(strings.TrimPrefix(*last, prefix))
	if err != nil {
		return 0, fmt.Errorf("parse invoice number %q: %w", *last, err)
	}
	return seq + 1, nil
}

func (r *repository) Create(ctx context.Context, inv Invoice) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO invoices (number, client_id, client_name, issue_date, due_date, subtotal, tax, discount, total,
			status, payment_date, payment_method, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id`,
		inv.Number, inv.ClientID, inv.ClientName, inv.IssueDate, inv.DueDate, inv.Subtotal, inv.Tax, inv.Discount,
		inv.Total, string(inv.Status), inv.PaymentDate, inv.PaymentMethod, inv.Notes,
	).Scan(&id)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return 0, ErrDuplicateNumber
		}
		return 0, err
	}
	for _, item := range inv.Items {
		if _, err := r.db.Exec(ctx, `
			INSERT INTO invoice_items (invoice_id, position, description, quantity, unit_price, amount)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			id, item.Position, item.Description, item.Quantity, item.UnitPrice, item.Amount,
		); err != nil {
			return 0, err
		}
	}
	return id, nil
}

func (r *repository) UpdateStatus(ctx context.Context, inv Invoice, from Status) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE invoices SET status = $2, payment_date = $3, payment_method = $4, updated_at = NOW()
		WHERE id = $1 AND status = $5`,
		inv.ID, string(inv.Status), inv.PaymentDate, inv.PaymentMethod, string(from),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: invoice %d is no longer %s", ErrInvalidTransition, inv.ID, from)
	}
	return nil
}

func (r *repository) ListOverdue(ctx context.Context, asOf time.Time) ([]Invoice, error) {
	rows, err := r.db.Query(ctx, `SELECT `+invoiceColumns+` FROM invoices
		WHERE status = 'sent' AND due_date < $1 ORDER BY due_date, id`, shared.DateOnly(asOf))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *inv)
	}
	return out, rows.Err()
}
