package invoices

import (
	"fmt"
	"time"

	"github.com/staybook/staybook/internal/shared"
)

// Status enumerates invoice states.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusSent      Status = "sent"
	StatusPaid      Status = "paid"
	StatusOverdue   Status = "overdue"
	StatusCancelled Status = "cancelled"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusSent, StatusPaid, StatusOverdue, StatusCancelled:
		return true
	}
	return false
}

var transitions = map[Status][]Status{
	StatusDraft:     {StatusSent, StatusCancelled},
	StatusSent:      {StatusPaid, StatusOverdue, StatusCancelled},
	StatusOverdue:   {StatusPaid, StatusCancelled},
	StatusPaid:      {},
	StatusCancelled: {},
}

// CanTransition reports whether an invoice may move from one status to another.
func CanTransition(from, to Status) bool {
	if from == to {
		return to.Valid()
	}
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Item is one invoice line.
type Item struct {
	ID          int64  `json:"id,omitempty"`
	Position    int    `json:"position"`
	Description string `json:"description"`
	Quantity    int64  `json:"quantity"`
	UnitPrice   int64  `json:"unit_price"`
	Amount      int64  `json:"amount"`
}

// Invoice is a bill issued to a client. Money is whole Rupiah.
type Invoice struct {
	ID            int64      `json:"id"`
	Number        string     `json:"number"`
	ClientID      int64      `json:"client_id"`
	ClientName    string     `json:"client_name"`
	IssueDate     time.Time  `json:"issue_date"`
	DueDate       time.Time  `json:"due_date"`
	Items         []Item     `json:"items"`
	Subtotal      int64      `json:"subtotal"`
	Tax           int64      `json:"tax"`
	Discount      int64      `json:"discount"`
	Total         int64      `json:"total"`
	Status        Status     `json:"status"`
	PaymentDate   *time.Time `json:"payment_date,omitempty"`
	PaymentMethod string     `json:"payment_method,omitempty"`
	Notes         string     `json:"notes,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// MaxAmount bounds every invoice amount in Rupiah.
const MaxAmount int64 = 1_000_000_000_000_000

var errAmountRange = shared.Validationf("invoice amount out of range")

// Recalculate derives item amounts, subtotal and total from quantities,
// unit prices, tax and discount. Amounts above MaxAmount are rejected.
func (inv *Invoice) Recalculate() error {
	var subtotal int64
	for i := range inv.Items {
		item := &inv.Items[i]
		item.Position = i + 1
		if item.Quantity < 0 || item.UnitPrice < 0 {
			return errAmountRange
		}
		if item.Quantity != 0 && item.UnitPrice > MaxAmount/item.Quantity {
			return errAmountRange
		}
		item.Amount = item.Quantity * item.UnitPrice
		if subtotal > MaxAmount-item.Amount {
			return errAmountRange
		}
		subtotal += item.Amount
	}
	if inv.Tax < 0 || inv.Tax > MaxAmount || inv.Discount < 0 || inv.Discount > MaxAmount {
		return errAmountRange
	}
	inv.Subtotal = subtotal
	inv.Total = subtotal + inv.Tax - inv.Discount
	if inv.Total < 0 {
		return shared.Validationf("discount exceeds invoice amount")
	}
	if inv.Total > MaxAmount {
		return errAmountRange
	}
	return nil
}

// IsOverdue reports whether a sent invoice is past its due date on now.
func (inv Invoice) IsOverdue(now time.Time) bool {
	return inv.Status == StatusSent && shared.DateOnly(inv.DueDate).Before(shared.DateOnly(now))
}

// IncomeDate is the date the invoice counts as income: the payment date,
// falling back to the issue date.
func (inv Invoice) IncomeDate() time.Time {
	if inv.PaymentDate != nil {
		return *inv.PaymentDate
	}
	return inv.IssueDate
}

// TaxFromBPS applies a basis-point rate to amount, rounding half up.
func TaxFromBPS(amount, bps int64) int64 {
	if amount <= 0 || bps <= 0 {
		return 0
	}
	// split so amount*bps cannot overflow
	return amount/10000*bps + (amount%10000*bps+5000)/10000
}

// NumberPrefix is the per-month prefix of invoice numbers.
func NumberPrefix(issued time.Time) string {
	return "INV-" + issued.Format("200601") + "-"
}

// FormatNumber renders the seq-th invoice number of the month.
func FormatNumber(issued time.Time, seq int) string {
	return fmt.Sprintf("%s%04d", NumberPrefix(issued), seq)
}

// View adds display amounts.
type View struct {
	Invoice
	SubtotalDisplay string `json:"subtotal_display"`
	TotalDisplay    string `json:"total_display"`
}

func NewView(inv Invoice) View {
	return View{
		Invoice:         inv,
		SubtotalDisplay: shared.FormatIDR(inv.Subtotal),
		TotalDisplay:    shared.FormatIDR(inv.Total),
	}
}

// Filter narrows invoice listings. Period applies to IncomeDate.
type Filter struct {
	Status   Status
	ClientID *int64
	Period   shared.Period
	Limit    int
	Offset   int
}
