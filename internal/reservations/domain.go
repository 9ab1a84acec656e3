package reservations

import (
	"time"

	"github.com/staybook/staybook/internal/shared"
)

// Status enumerates reservation lifecycle states.
type Status string

const (
	StatusPending Status = "Pending"
	StatusProses  Status = "Proses"
	StatusSelesai Status = "Selesai"
	StatusBatal   Status = "Batal"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusProses, StatusSelesai, StatusBatal:
		return true
	}
	return false
}

var transitions = map[Status][]Status{
	StatusPending: {StatusProses, StatusSelesai, StatusBatal},
	StatusProses:  {StatusPending, StatusSelesai, StatusBatal},
	StatusSelesai: {},
	StatusBatal:   {StatusPending},
}

// CanTransition reports whether from -> to is allowed. Staying put is always allowed.
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

// Reservation is a villa/room booking. Money is whole Rupiah.
type Reservation struct {
	ID              int64     `json:"id"`
	BookingCode     string    `json:"booking_code"`
	CustomerName    string    `json:"customer_name"`
	Property        string    `json:"property"`
	CheckIn         time.Time `json:"check_in"`
	CheckOut        time.Time `json:"check_out"`
	StaffID         *int64    `json:"staff_id,omitempty"`
	FinalPrice      int64     `json:"final_price"`
	CustomerDeposit int64     `json:"customer_deposit"`
	BasePrice       *int64    `json:"base_price,omitempty"`
	Status          Status    `json:"status"`
	Notes           string    `json:"notes,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// RemainingPayment is what the guest still owes after the deposit (DP).
func (r Reservation) RemainingPayment() int64 {
	return r.FinalPrice - r.CustomerDeposit
}

// Profit is final price minus base price; a missing base price counts as 0.
func (r Reservation) Profit() int64 {
	var base int64
	if r.BasePrice != nil {
		base = *r.BasePrice
	}
	return r.FinalPrice - base
}

// Assigned reports whether a GRO is attached.
func (r Reservation) Assigned() bool {
	return r.StaffID != nil
}

// Cancelled reports whether the reservation is Batal.
func (r Reservation) Cancelled() bool {
	return r.Status == StatusBatal
}

// Nights returns the stay length in nights.
func (r Reservation) Nights() int {
	return int(shared.DateOnly(r.CheckOut).Sub(shared.DateOnly(r.CheckIn)).Hours() / 24)
}

// View is the API representation with derived amounts computed on the fly.
type View struct {
	Reservation
	Nights           int          `json:"nights"`
	RemainingPayment shared.Money `json:"remaining_payment"`
	Profit           shared.Money `json:"profit"`
	FinalPriceText   string       `json:"final_price_display"`
}

// NewView derives the presentation fields.
func NewView(r Reservation) View {
	return View{
		Reservation:      r,
		Nights:           r.Nights(),
		RemainingPayment: shared.NewMoney(r.RemainingPayment()),
		Profit:           shared.NewMoney(r.Profit()),
		FinalPriceText:   shared.FormatIDR(r.FinalPrice),
	}
}

// Filter narrows reservation listings. Zero Limit means no limit.
type Filter struct {
	StaffID *int64
	Status  Status
	Period  shared.Period
	Search  string
	Limit   int
	Offset  int
}
