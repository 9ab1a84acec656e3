package cashflow

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/staybook/staybook/internal/expenses"
	"github.com/staybook/staybook/internal/invoices"
	"github.com/staybook/staybook/internal/shared"
)

type invoiceStub []invoices.Invoice

func (s invoiceStub) List(ctx context.Context, f invoices.Filter) ([]invoices.Invoice, int, error) {
	var out []invoices.Invoice
	for _, inv := range s {
		if f.Status != "" && inv.Status != f.Status {
			continue
		}
		if !f.Period.Contains(inv.IncomeDate()) {
			continue
		}
		out = append(out, inv)
	}
	return out, len(out), nil
}

type expenseStub []expenses.Expense

func (s expenseStub) List(ctx context.Context, f expenses.Filter) ([]expenses.Expense, int, error) {
	var out []expenses.Expense
	for _, e := range s {
		if f.Status != "" && e.Status != f.Status {
			continue
		}
		if !f.Period.Contains(e.Date) {
			continue
		}
		out = append(out, e)
	}
	return out, len(out), nil
}

func newTestService() *Service {
	svc := NewService(
		invoiceStub{
			paid("INV-202506-0001", 1_000, "2025-06-10"),
			paid("INV-202507-0001", 500, "2025-07-05"),
			{Number: "INV-202507-0002", Total: 800, Status: invoices.StatusSent, IssueDate: day("2025-07-06")},
		},
		expenseStub{
			spent(1, 300, "2025-06-20"),
			spent(2, 100, "2025-07-10"),
		},
	)
	svc.clock = func() time.Time { return day("2025-07-20") }
	return svc
}

func TestLedgerCarriesOpeningBalance(t *testing.T) {
	svc := newTestService()
	from, to := day("2025-07-01"), day("2025-07-31")

	report, err := svc.Ledger(context.Background(), shared.Period{From: &from, To: &to}, nil)
	require.NoError(t, err)
	require.Equal(t, int64(700), report.OpeningBalance)
	require.Equal(t, int64(1_100), report.ClosingBalance)
	require.Len(t, report.Entries, 2)

	explicit := int64(0)
	report, err = svc.Ledger(context.Background(), shared.Period{From: &from, To: &to}, &explicit)
	require.NoError(t, err)
	require.Equal(t, int64(400), report.ClosingBalance)
}

func TestStats(t *testing.T) {
	svc := newTestService()
	stats, err := svc.Stats(context.Background(), shared.Period{})
	require.NoError(t, err)
	require.Equal(t, int64(1_500), stats.ProfitLoss.TotalIncome)
	require.Equal(t, int64(400), stats.ProfitLoss.TotalExpenses)
	require.Equal(t, 73.33, stats.ProfitLoss.ProfitMargin)
	require.Equal(t, int64(800), stats.Invoices.Outstanding)
}

func TestTrendDefaultsToTwelveMonths(t *testing.T) {
	svc := newTestService()
	points, err := svc.Trend(context.Background(), shared.Period{})
	require.NoError(t, err)
	require.Len(t, points, 12)
	require.Equal(t, "2024-08", points[0].Month)
	require.Equal(t, "2025-07", points[11].Month)
	require.Equal(t, int64(400), points[11].Net)
	require.Equal(t, int64(700), points[10].Net)
}

func TestExportCSVHandler(t *testing.T) {
	r := chi.NewRouter()
	r.Route("/cashflow", NewHandler(nil, newTestService()).MountRoutes)

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/cashflow/export.csv?from=2025-07-01&opening=0", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "text/csv; charset=utf-8", rr.Header().Get("Content-Type"))
	require.True(t, strings.HasPrefix(rr.Body.String(), "Date,Type,Reference"))

	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/cashflow/ledger?from=2025-08-01&to=2025-07-01", nil))
	require.Equal(t, http.StatusBadRequest, rr.Code)
}
