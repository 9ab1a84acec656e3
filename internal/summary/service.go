package summary

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/staybook/staybook/internal/commission"
	"github.com/staybook/staybook/internal/reservations"
	"github.com/staybook/staybook/internal/shared"
	"github.com/staybook/staybook/internal/staff"
)

// ReservationSource lists reservations.
type ReservationSource interface {
	List(ctx context.Context, f reservations.Filter) ([]reservations.Reservation, int, error)
}

// EntrySource lists commission entries.
type EntrySource interface {
	List(ctx context.Context, f commission.Filter) ([]commission.Entry, error)
}

// StaffDirectory resolves staff members and their display names.
type StaffDirectory interface {
	Get(ctx context.Context, id int64) (*staff.Member, error)
	Names(ctx context.Context) (map[int64]string, error)
}

// Service computes staff summaries with a Redis cache in front.
type Service struct {
	reservations ReservationSource
	entries      EntrySource
	staff        StaffDirectory
	policy       commission.Policy
	cache        *Cache
	logger       *slog.Logger
	group        singleflight.Group
}

func NewService(res ReservationSource, entries EntrySource, dir StaffDirectory, policy commission.Policy, cache *Cache, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{reservations: res, entries: entries, staff: dir, policy: policy, cache: cache, logger: logger}
}

// Summarize returns the summary of one staff member. A member without
// reservations in period gets a zero summary.
func (s *Service) Summarize(ctx context.Context, staffID int64, period shared.Period) (StaffSummary, error) {
	if err := period.Validate(); err != nil {
		return StaffSummary{}, err
	}
	member, err := s.staff.Get(ctx, staffID)
	if err != nil {
		return StaffSummary{}, err
	}
	var out StaffSummary
	err = s.cached(ctx, &out, func(ctx context.Context) (any, error) {
		rows, _, err := s.reservations.List(ctx, reservations.Filter{StaffID: &staffID, Period: period})
		if err != nil {
			return nil, fmt.Errorf("list reservations: %w", err)
		}
		entries, err := s.entries.List(ctx, commission.Filter{})
		if err != nil {
			return nil, fmt.Errorf("list commissions: %w", err)
		}
		names := map[int64]string{member.ID: member.Name}
		for _, row := range Aggregate(rows, entries, names, s.policy) {
			if row.StaffID == staffID {
				return row, nil
			}
		}
		return StaffSummary{StaffID: member.ID, StaffName: member.Name}, nil
	}, strconv.FormatInt(staffID, 10), period.Key())
	return out, err
}

// SummarizeAll returns one summary per staff member with reservations in period.
func (s *Service) SummarizeAll(ctx context.Context, period shared.Period) ([]StaffSummary, error) {
	if err := period.Validate(); err != nil {
		return nil, err
	}
	out := []StaffSummary{}
	err := s.cached(ctx, &out, func(ctx context.Context) (any, error) {
		rows, _, err := s.reservations.List(ctx, reservations.Filter{Period: period})
		if err != nil {
			return nil, fmt.Errorf("list reservations: %w", err)
		}
		entries, err := s.entries.List(ctx, commission.Filter{})
		if err != nil {
			return nil, fmt.Errorf("list commissions: %w", err)
		}
		names, err := s.staff.Names(ctx)
		if err != nil {
			return nil, fmt.Errorf("staff names: %w", err)
		}
		return Aggregate(rows, entries, names, s.policy), nil
	}, "all", period.Key())
	return out, err
}

// Warmup fills the cache for the current month and for all time.
func (s *Service) Warmup(ctx context.Context, now time.Time) error {
	from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, -1)
	for _, p := range []shared.Period{{}, {From: &from, To: &to}} {
		if _, err := s.SummarizeAll(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

// Bump invalidates cached summaries.
func (s *Service) Bump(ctx context.Context) error {
	return s.cache.Bump(ctx)
}

func (s *Service) cached(ctx context.Context, dest any, loader func(context.Context) (any, error), parts ...string) error {
	key, err := s.cache.BuildKey(ctx, parts...)
	if err != nil {
		s.logger.Warn("summary cache unavailable", slog.Any("error", err))
		raw, err := encode(ctx, loader)
		if err != nil {
			return err
		}
		return json.Unmarshal(raw, dest)
	}
	v, err, _ := s.group.Do(key, func() (any, error) {
		return s.cache.Fetch(ctx, key, loader)
	})
	if err != nil {
		return err
	}
	return json.Unmarshal(v.([]byte), dest)
}
