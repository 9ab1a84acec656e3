package cashflow

import (
	"math"
	"time"

	"github.com/staybook/staybook/internal/expenses"
	"github.com/staybook/staybook/internal/invoices"
)

// ProfitLossSummary is income against expenses.
type ProfitLossSummary struct {
	TotalIncome   int64   `json:"total_income"`
	TotalExpenses int64   `json:"total_expenses"`
	NetProfit     int64   `json:"net_profit"`
	ProfitMargin  float64 `json:"profit_margin"`
}

// ProfitLoss sums paid invoices and completed expenses. The margin is a
// percentage rounded to two decimals, or 0 without income.
func ProfitLoss(invs []invoices.Invoice, exps []expenses.Expense) ProfitLossSummary {
	var pl ProfitLossSummary
	for _, inv := range invs {
		if inv.Status == invoices.StatusPaid {
			pl.TotalIncome += inv.Total
		}
	}
	for _, e := range exps {
		if e.Status == expenses.StatusCompleted {
			pl.TotalExpenses += e.Amount
		}
	}
	pl.NetProfit = pl.TotalIncome - pl.TotalExpenses
	pl.ProfitMargin = Margin(pl.NetProfit, pl.TotalIncome)
	return pl
}

// Margin returns net/income*100 rounded to two decimals, 0 when income <= 0.
func Margin(net, income int64) float64 {
	if income <= 0 {
		return 0
	}
	return math.Round(float64(net)/float64(income)*10000) / 100
}

// InvoiceStatistics counts invoices per status with outstanding and collected totals.
type InvoiceStatistics struct {
	Count       int                     `json:"count"`
	ByStatus    map[invoices.Status]int `json:"by_status"`
	Outstanding int64                   `json:"outstanding"`
	Collected   int64                   `json:"collected"`
}

// InvoiceStats folds the invoice snapshot. Outstanding covers sent and
// overdue invoices.
func InvoiceStats(invs []invoices.Invoice) InvoiceStatistics {
	stats := InvoiceStatistics{ByStatus: map[invoices.Status]int{
		invoices.StatusDraft:     0,
		invoices.StatusSent:      0,
		invoices.StatusPaid:      0,
		invoices.StatusOverdue:   0,
		invoices.StatusCancelled: 0,
	}}
	for _, inv := range invs {
		stats.Count++
		stats.ByStatus[inv.Status]++
		switch inv.Status {
		case invoices.StatusSent, invoices.StatusOverdue:
			stats.Outstanding += inv.Total
		case invoices.StatusPaid:
			stats.Collected += inv.Total
		}
	}
	return stats
}

// TrendPoint is one month of cash movement.
type TrendPoint struct {
	Month    string `json:"month"`
	Income   int64  `json:"income"`
	Expenses int64  `json:"expenses"`
	Net      int64  `json:"net"`
}

// MonthlyTrend returns one zero-filled point per calendar month from the month
// of from through the month of to.
func MonthlyTrend(invs []invoices.Invoice, exps []expenses.Expense, from, to time.Time) []TrendPoint {
	start := monthStart(from)
	end := monthStart(to)
	if start.After(end) {
		return []TrendPoint{}
	}
	var points []TrendPoint
	index := make(map[string]int)
	for m := start; !m.After(end); m = m.AddDate(0, 1, 0) {
		key := m.Format("2006-01")
		index[key] = len(points)
		points = append(points, TrendPoint{Month: key})
	}
	for _, inv := range invs {
		if inv.Status != invoices.StatusPaid {
			continue
		}
		if i, ok := index[inv.IncomeDate().Format("2006-01")]; ok {
			points[i].Income += inv.Total
		}
	}
	for _, e := range exps {
		if e.Status != expenses.StatusCompleted {
			continue
		}
		if i, ok := index[e.Date.Format("2006-01")]; ok {
			points[i].Expenses += e.Amount
		}
	}
	for i := range points {
		points[i].Net = points[i].Income - points[i].Expenses
	}
	return points
}

func monthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}
