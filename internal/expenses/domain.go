package expenses

import (
	"time"

	"github.com/staybook/staybook/internal/shared"
)

// Status enumerates expense states.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

func (s Status) Valid() bool {
	return s == StatusPending || s == StatusCompleted || s == StatusCancelled
}

// CanTransition allows pending to settle either way and a completed expense to
// be voided. Cancelled is terminal.
func CanTransition(from, to Status) bool {
	if from == to {
		return to.Valid()
	}
	switch from {
	case StatusPending:
		return to == StatusCompleted || to == StatusCancelled
	case StatusCompleted:
		return to == StatusCancelled
	}
	return false
}

type Expense struct {
	ID          int64     `json:"id"`
	Date        time.Time `json:"date"`
	Category    string    `json:"category"`
	Description string    `json:"description"`
	Amount      int64     `json:"amount"`
	Status      Status    `json:"status"`
	Vendor      string    `json:"vendor,omitempty"`
	Reference   string    `json:"reference,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Label is the cash-flow description: the description, or the category when
// none was given.
func (e Expense) Label() string {
	if e.Description != "" {
		return e.Description
	}
	return e.Category
}

type View struct {
	Expense
	AmountDisplay string `json:"amount_display"`
}

func NewView(e Expense) View {
	return View{Expense: e, AmountDisplay: shared.FormatIDR(e.Amount)}
}

type Filter struct {
	Status   Status
	Category string
	Period   shared.Period
	Limit    int
	Offset   int
}
