package cashflow

import (
	"fmt"
	"sort"
	"time"

	"github.com/staybook/staybook/internal/expenses"
	"github.com/staybook/staybook/internal/invoices"
	"github.com/staybook/staybook/internal/shared"
)

// EntryType tags a ledger line.
type EntryType string

const (
	Income  EntryType = "income"
	Expense EntryType = "expense"
)

// Entry is one line of the cash-flow ledger.
type Entry struct {
	Date           time.Time `json:"date"`
	Type           EntryType `json:"type"`
	Reference      string    `json:"reference"`
	Description    string    `json:"description"`
	Amount         int64     `json:"amount"`
	RunningBalance int64     `json:"running_balance"`
}

// Report is the ledger with its totals. Entries are newest first.
type Report struct {
	Entries        []Entry `json:"entries"`
	OpeningBalance int64   `json:"opening_balance"`
	TotalIncome    int64   `json:"total_income"`
	TotalExpenses  int64   `json:"total_expenses"`
	ClosingBalance int64   `json:"closing_balance"`
}

// BuildLedger builds the ledger from a zero opening balance.
func BuildLedger(invs []invoices.Invoice, exps []expenses.Expense) Report {
	return BuildLedgerFrom(0, invs, exps)
}

// BuildLedgerFrom merges paid invoices and completed expenses, computes the
// running balance in chronological order starting at opening, and returns the
// entries newest first.
func BuildLedgerFrom(opening int64, invs []invoices.Invoice, exps []expenses.Expense) Report {
	entries := collect(invs, exps)
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		if a.Type != b.Type {
			return a.Type == Income
		}
		return a.Reference < b.Reference
	})

	report := Report{OpeningBalance: opening, ClosingBalance: opening}
	balance := opening
	for i := range entries {
		switch entries[i].Type {
		case Income:
			balance += entries[i].Amount
			report.TotalIncome += entries[i].Amount
		case Expense:
			balance -= entries[i].Amount
			report.TotalExpenses += entries[i].Amount
		}
		entries[i].RunningBalance = balance
	}
	report.ClosingBalance = opening + report.TotalIncome - report.TotalExpenses

	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
	report.Entries = entries
	return report
}

func collect(invs []invoices.Invoice, exps []expenses.Expense) []Entry {
	entries := make([]Entry, 0, len(invs)+len(exps))
	for _, inv := range invs {
		if inv.Status != invoices.StatusPaid {
			continue
		}
		entries = append(entries, Entry{
			Date:        shared.DateOnly(inv.IncomeDate()),
			Type:        Income,
			Reference:   inv.Number,
			Description: fmt.Sprintf("Invoice %s - %s", inv.Number, inv.ClientName),
			Amount:      inv.Total,
		})
	}
	for _, e := range exps {
		if e.Status != expenses.StatusCompleted {
			continue
		}
		ref := e.Reference
		if ref == "" {
			ref = fmt.Sprintf("EXP-%06d", e.ID)
		}
		entries = append(entries, Entry{
			Date:        shared.DateOnly(e.Date),
			Type:        Expense,
			Reference:   ref,
			Description: e.Label(),
			Amount:      e.Amount,
		})
	}
	return entries
}
