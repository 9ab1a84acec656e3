package shared

import (
	"net/http"
	"time"

	"github.com/staybook/staybook/internal/platform/httpx"
)

// Period is an optional inclusive date range. A nil bound is open.
type Period struct {
	From *time.Time `json:"from,omitempty"`
	To   *time.Time `json:"to,omitempty"`
}

// Validate rejects ranges whose start is after their end.
func (p Period) Validate() error {
	if p.From != nil && p.To != nil && DateOnly(*p.From).After(DateOnly(*p.To)) {
		return ErrInvalidPeriod
	}
	return nil
}

// Contains reports whether the calendar day of t falls inside the period.
func (p Period) Contains(t time.Time) bool {
	day := DateOnly(t)
	if p.From != nil && day.Before(DateOnly(*p.From)) {
		return false
	}
	if p.To != nil && day.After(DateOnly(*p.To)) {
		return false
	}
	return true
}

// Key renders the period for cache keys.
func (p Period) Key() string {
	from, to := "-", "-"
	if p.From != nil {
		from = p.From.Format("2006-01-02")
	}
	if p.To != nil {
		to = p.To.Format("2006-01-02")
	}
	return from + ".." + to
}

// DateOnly truncates t to midnight UTC of its calendar day.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, Validationf("invalid date %q", s)
	}
	return t, nil
}

// PeriodFromRequest reads the from and to query parameters.
func PeriodFromRequest(r *http.Request) (Period, error) {
	from, err := httpx.QueryDate(r, "from")
	if err != nil {
		return Period{}, err
	}
	to, err := httpx.QueryDate(r, "to")
	if err != nil {
		return Period{}, err
	}
	p := Period{From: from, To: to}
	return p, p.Validate()
}
