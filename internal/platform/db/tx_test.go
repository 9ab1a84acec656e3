package db

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
)

func TestIsUniqueViolation(t *testing.T) {
	dup := &pgconn.PgError{Code: "23505", ConstraintName: "reservations_booking_code_key"}
	require.True(t, IsUniqueViolation(dup))
	require.True(t, IsUniqueViolation(fmt.Errorf("insert: %w", dup)))
	require.False(t, IsUniqueViolation(&pgconn.PgError{Code: "23503"}))
	require.False(t, IsUniqueViolation(errors.New("boom")))
	require.False(t, IsUniqueViolation(nil))
}

func TestSchemaDeclaresCoreTables(t *testing.T) {
	ddl := Schema()
	for _, table := range []string{"reservations", "commission_entries", "invoices", "invoice_items", "expenses", "audit_logs"} {
		require.True(t, strings.Contains(ddl, "CREATE TABLE IF NOT EXISTS "+table+" "), table)
	}
	require.Contains(t, ddl, "reservation_id BIGINT NOT NULL UNIQUE")
}
