package summary

import (
	"sort"

	"github.com/staybook/staybook/internal/commission"
	"github.com/staybook/staybook/internal/reservations"
	"github.com/staybook/staybook/internal/shared"
)

// StaffSummary aggregates the reservations and commissions of one GRO.
type StaffSummary struct {
	StaffID           int64  `json:"staff_id"`
	StaffName         string `json:"staff_name"`
	Count             int    `json:"count"`
	CancelledCount    int    `json:"cancelled_count"`
	Revenue           int64  `json:"revenue"`
	Commission        int64  `json:"commission"`
	PaidCommission    int64  `json:"paid_commission"`
	PendingCommission int64  `json:"pending_commission"`
}

// View adds display strings for the money fields.
type View struct {
	StaffSummary
	RevenueDisplay           string `json:"revenue_display"`
	CommissionDisplay        string `json:"commission_display"`
	PaidCommissionDisplay    string `json:"paid_commission_display"`
	PendingCommissionDisplay string `json:"pending_commission_display"`
}

func NewView(s StaffSummary) View {
	return View{
		StaffSummary:             s,
		RevenueDisplay:           shared.FormatIDR(s.Revenue),
		CommissionDisplay:        shared.FormatIDR(s.Commission),
		PaidCommissionDisplay:    shared.FormatIDR(s.PaidCommission),
		PendingCommissionDisplay: shared.FormatIDR(s.PendingCommission),
	}
}

// Aggregate groups reservations by staff ID and overlays ledger entries.
//
// Every assigned reservation counts towards Count. Batal reservations add to
// CancelledCount and contribute neither revenue nor commission. Commission uses
// the captured entry amount when a live entry exists, else the policy amount.
// Paid and pending sums come from the entries of the contributing reservations,
// credited to the reservation's current staff member.
func Aggregate(rows []reservations.Reservation, entries []commission.Entry, names map[int64]string, policy commission.Policy) []StaffSummary {
	byReservation := make(map[int64]commission.Entry, len(entries))
	for _, e := range entries {
		byReservation[e.ReservationID] = e
	}

	groups := make(map[int64]*StaffSummary)
	for _, r := range rows {
		if !r.Assigned() {
			continue
		}
		id := *r.StaffID
		s, ok := groups[id]
		if !ok {
			s = &StaffSummary{StaffID: id, StaffName: names[id]}
			groups[id] = s
		}
		s.Count++
		if r.Cancelled() {
			s.CancelledCount++
			continue
		}
		s.Revenue += r.FinalPrice

		entry, ok := byReservation[r.ID]
		if !ok || entry.Status == commission.StatusCancelled {
			s.Commission += policy.AmountFor(r)
			continue
		}
		s.Commission += entry.Amount
		switch entry.Status {
		case commission.StatusPaid:
			s.PaidCommission += entry.Amount
		case commission.StatusPending:
			s.PendingCommission += entry.Amount
		}
	}

	out := make([]StaffSummary, 0, len(groups))
	for _, s := range groups {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].StaffName != out[j].StaffName {
			return out[i].StaffName < out[j].StaffName
		}
		return out[i].StaffID < out[j].StaffID
	})
	return out
}

// Totals folds a list of summaries into one row with StaffID 0.
func Totals(rows []StaffSummary) StaffSummary {
	var t StaffSummary
	for _, s := range rows {
		t.Count += s.Count
		t.CancelledCount += s.CancelledCount
		t.Revenue += s.Revenue
		t.Commission += s.Commission
		t.PaidCommission += s.PaidCommission
		t.PendingCommission += s.PendingCommission
	}
	return t
}
