package commission

import (
	"time"

	"github.com/google/uuid"

	"github.com/staybook/staybook/internal/reservations"
	"github.com/staybook/staybook/internal/shared"
)

// Status enumerates commission entry states.
type Status string

const (
	StatusPending   Status = "pending"
	StatusPaid      Status = "paid"
	StatusCancelled Status = "cancelled"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	return s == StatusPending || s == StatusPaid || s == StatusCancelled
}

// CanTransition reports whether an entry may move from one status to another.
// A paid entry has to be reversed to pending before it can be cancelled.
func CanTransition(from, to Status) bool {
	if !from.Valid() || !to.Valid() {
		return false
	}
	if from == to {
		return true
	}
	switch from {
	case StatusPending:
		return to == StatusPaid || to == StatusCancelled
	case StatusPaid, StatusCancelled:
		return to == StatusPending
	}
	return false
}

// Entry is the commission owed to a GRO for one reservation.
type Entry struct {
	ID            uuid.UUID  `json:"id"`
	ReservationID int64      `json:"reservation_id"`
	StaffID       int64      `json:"staff_id"`
	Amount        int64      `json:"amount"`
	Status        Status     `json:"status"`
	PaidAt        *time.Time `json:"paid_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// EntryView adds the display amount.
type EntryView struct {
	Entry
	AmountDisplay string `json:"amount_display"`
}

// NewEntryView formats an entry for API output.
func NewEntryView(e Entry) EntryView {
	return EntryView{Entry: e, AmountDisplay: shared.FormatIDR(e.Amount)}
}

// Policy decides the commission amount for a reservation. The ledger uses a
// fixed amount per reservation, captured on the entry when it is recorded.
type Policy struct {
	FixedAmount int64
}

// AmountFor returns the commission earned by res.
func (p Policy) AmountFor(reservations.Reservation) int64 {
	return p.FixedAmount
}

// Filter narrows entry listings.
type Filter struct {
	StaffID       *int64
	ReservationID *int64
	Status        Status
}

// SeedResult reports what a seeding pass did.
type SeedResult struct {
	Created int `json:"created"`
	Skipped int `json:"skipped"`
}
