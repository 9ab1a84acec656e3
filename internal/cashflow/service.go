package cashflow

import (
	"context"
	"fmt"
	"time"

	"github.com/staybook/staybook/internal/expenses"
	"github.com/staybook/staybook/internal/invoices"
	"github.com/staybook/staybook/internal/shared"
)

// InvoiceSource lists invoices.
type InvoiceSource interface {
	List(ctx context.Context, f invoices.Filter) ([]invoices.Invoice, int, error)
}

// ExpenseSource lists expenses.
type ExpenseSource interface {
	List(ctx context.Context, f expenses.Filter) ([]expenses.Expense, int, error)
}

// Service loads invoice and expense snapshots and runs the pure reporters
// over them.
type Service struct {
	invoices InvoiceSource
	expenses ExpenseSource
	clock    func() time.Time
}

func NewService(invs InvoiceSource, exps ExpenseSource) *Service {
	return &Service{invoices: invs, expenses: exps, clock: func() time.Time { return time.Now().UTC() }}
}

// Ledger builds the cash-flow ledger for period. Without an explicit opening
// balance, a period with a start date carries over the net of everything
// before it.
func (s *Service) Ledger(ctx context.Context, period shared.Period, opening *int64) (Report, error) {
	if err := period.Validate(); err != nil {
		return Report{}, err
	}
	var start int64
	switch {
	case opening != nil:
		start = *opening
	case period.From != nil:
		before := shared.DateOnly(*period.From).AddDate(0, 0, -1)
		invs, exps, err := s.settled(ctx, shared.Period{To: &before})
		if err != nil {
			return Report{}, err
		}
		start = BuildLedger(invs, exps).ClosingBalance
	}
	invs, exps, err := s.settled(ctx, period)
	if err != nil {
		return Report{}, err
	}
	return BuildLedgerFrom(start, invs, exps), nil
}

// Stats bundles profit and loss with invoice counts for period.
type Stats struct {
	ProfitLoss ProfitLossSummary `json:"profit_loss"`
	Invoices   InvoiceStatistics `json:"invoices"`
}

func (s *Service) Stats(ctx context.Context, period shared.Period) (Stats, error) {
	if err := period.Validate(); err != nil {
		return Stats{}, err
	}
	invs, _, err := s.invoices.List(ctx, invoices.Filter{Period: period})
	if err != nil {
		return Stats{}, fmt.Errorf("list invoices: %w", err)
	}
	exps, _, err := s.expenses.List(ctx, expenses.Filter{Status: expenses.StatusCompleted, Period: period})
	if err != nil {
		return Stats{}, fmt.Errorf("list expenses: %w", err)
	}
	return Stats{ProfitLoss: ProfitLoss(invs, exps), Invoices: InvoiceStats(invs)}, nil
}

// Trend returns monthly movement. Missing bounds default to the last twelve
// months up to the current one.
func (s *Service) Trend(ctx context.Context, period shared.Period) ([]TrendPoint, error) {
	if err := period.Validate(); err != nil {
		return nil, err
	}
	to := s.clock()
	if period.To != nil {
		to = *period.To
	}
	from := monthStart(to).AddDate(0, -11, 0)
	if period.From != nil {
		from = *period.From
	}
	end := monthStart(to).AddDate(0, 1, -1)
	invs, exps, err := s.settled(ctx, shared.Period{From: &from, To: &end})
	if err != nil {
		return nil, err
	}
	return MonthlyTrend(invs, exps, from, to), nil
}

func (s *Service) settled(ctx context.Context, period shared.Period) ([]invoices.Invoice, []expenses.Expense, error) {
	invs, _, err := s.invoices.List(ctx, invoices.Filter{Status: invoices.StatusPaid, Period: period})
	if err != nil {
		return nil, nil, fmt.Errorf("list invoices: %w", err)
	}
	exps, _, err := s.expenses.List(ctx, expenses.Filter{Status: expenses.StatusCompleted, Period: period})
	if err != nil {
		return nil, nil, fmt.Errorf("list expenses: %w", err)
	}
	return invs, exps, nil
}
