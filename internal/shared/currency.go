package shared

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var idrPrinter = message.NewPrinter(language.Indonesian)

// FormatIDR renders whole Rupiah the way id-ID displays IDR: "Rp" prefix,
// "." thousands separator, no decimals.
func FormatIDR(amount int64) string {
	if amount < 0 {
		// negate as uint64 so math.MinInt64 does not overflow
		return "-Rp " + idrPrinter.Sprintf("%d", uint64(-(amount+1))+1)
	}
	return "Rp " + idrPrinter.Sprintf("%d", amount)
}

// Money pairs an amount with its display string for API payloads.
type Money struct {
	Amount  int64  `json:"amount"`
	Display string `json:"display"`
}

// NewMoney wraps an amount with its IDR rendering.
func NewMoney(amount int64) Money {
	return Money{Amount: amount, Display: FormatIDR(amount)}
}
