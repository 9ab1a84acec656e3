package reservations

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/staybook/staybook/internal/shared"
	"github.com/staybook/staybook/internal/staff"
)

// StaffDirectory resolves GRO staff members.
type StaffDirectory interface {
	Get(ctx context.Context, id int64) (*staff.Member, error)
}

// LedgerSync keeps commission entries aligned with reservation state.
type LedgerSync interface {
	SyncReservation(ctx context.Context, r Reservation) error
}

// Invalidator drops cached aggregates after a write.
type Invalidator interface {
	Bump(ctx context.Context) error
}

type Service struct {
	repo   Repository
	staff  StaffDirectory
	ledger LedgerSync
	cache  Invalidator
	audit  shared.AuditRecorder
	logger *slog.Logger
}

func NewService(repo Repository, staffDir StaffDirectory, ledger LedgerSync, cache Invalidator, audit shared.AuditRecorder, logger *slog.Logger) *Service {
	if audit == nil {
		audit = shared.NopAudit{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, staff: staffDir, ledger: ledger, cache: cache, audit: audit, logger: logger}
}

func (s *Service) Get(ctx context.Context, id int64) (*Reservation, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, f Filter) ([]Reservation, int, error) {
	if err := f.Period.Validate(); err != nil {
		return nil, 0, err
	}
	if f.Status != "" && !f.Status.Valid() {
		return nil, 0, shared.Validationf("unknown status %q", f.Status)
	}
	f.Search = strings.TrimSpace(f.Search)
	return s.repo.List(ctx, f)
}

// All returns every reservation whose check-in falls in period.
func (s *Service) All(ctx context.Context, period shared.Period) ([]Reservation, error) {
	rows, _, err := s.List(ctx, Filter{Period: period})
	return rows, err
}

func (s *Service) Create(ctx context.Context, req CreateReservationRequest) (*Reservation, error) {
	checkIn, checkOut, err := parseStay(req.CheckIn, req.CheckOut)
	if err != nil {
		return nil, err
	}
	if err := s.checkStaff(ctx, req.StaffID); err != nil {
		return nil, err
	}
	res := Reservation{
		BookingCode:     normaliseCode(req.BookingCode),
		CustomerName:    strings.TrimSpace(req.CustomerName),
		Property:        strings.TrimSpace(req.Property),
		CheckIn:         checkIn,
		CheckOut:        checkOut,
		StaffID:         req.StaffID,
		FinalPrice:      req.FinalPrice,
		CustomerDeposit: req.CustomerDeposit,
		BasePrice:       req.BasePrice,
		Status:          StatusPending,
		Notes:           strings.TrimSpace(req.Notes),
	}

	var created *Reservation
	err = s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		id, err := repo.Create(ctx, res)
		if err != nil {
			return err
		}
		created, err = repo.Get(ctx, id)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("create reservation: %w", err)
	}
	s.afterWrite(ctx, *created, "reservation.create")
	return created, nil
}

func (s *Service) Update(ctx context.Context, id int64, req UpdateReservationRequest) (*Reservation, error) {
	var updated *Reservation
	err := s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		res, err := repo.Get(ctx, id)
		if err != nil {
			return err
		}
		if err := s.apply(ctx, res, req); err != nil {
			return err
		}
		if err := repo.Update(ctx, *res); err != nil {
			return err
		}
		updated, err = repo.Get(ctx, id)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("update reservation: %w", err)
	}
	s.afterWrite(ctx, *updated, "reservation.update")
	return updated, nil
}

func (s *Service) apply(ctx context.Context, res *Reservation, req UpdateReservationRequest) error {
	if req.CustomerName != nil {
		res.CustomerName = strings.TrimSpace(*req.CustomerName)
	}
	if req.Property != nil {
		res.Property = strings.TrimSpace(*req.Property)
	}
	checkIn := res.CheckIn.Format("2006-01-02")
	checkOut := res.CheckOut.Format("2006-01-02")
	if req.CheckIn != nil {
		checkIn = *req.CheckIn
	}
	if req.CheckOut != nil {
		checkOut = *req.CheckOut
	}
	in, out, err := parseStay(checkIn, checkOut)
	if err != nil {
		return err
	}
	res.CheckIn, res.CheckOut = in, out

	switch {
	case req.ClearStaff:
		res.StaffID = nil
	case req.StaffID != nil:
		if res.StaffID == nil || *res.StaffID != *req.StaffID {
			if err := s.checkStaff(ctx, req.StaffID); err != nil {
				return err
			}
		}
		res.StaffID = req.StaffID
	}
	if req.FinalPrice != nil {
		res.FinalPrice = *req.FinalPrice
	}
	if req.CustomerDeposit != nil {
		res.CustomerDeposit = *req.CustomerDeposit
	}
	if req.BasePrice != nil {
		res.BasePrice = req.BasePrice
	}
	if req.Notes != nil {
		res.Notes = strings.TrimSpace(*req.Notes)
	}
	return nil
}

// SetStatus moves the reservation through its lifecycle. Cancelling (Batal)
// cancels the pending commission; reinstating re-opens it.
func (s *Service) SetStatus(ctx context.Context, id int64, status Status) (*Reservation, error) {
	if !status.Valid() {
		return nil, shared.Validationf("unknown status %q", status)
	}
	var (
		updated *Reservation
		from    Status
	)
	err := s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		res, err := repo.Get(ctx, id)
		if err != nil {
			return err
		}
		from = res.Status
		if !CanTransition(from, status) {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, status)
		}
		if from != status {
			if err := repo.UpdateStatus(ctx, id, from, status); err != nil {
				return err
			}
		}
		updated, err = repo.Get(ctx, id)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("set reservation status: %w", err)
	}
	if from == status {
		return updated, nil
	}
	if err := s.audit.Record(ctx, shared.AuditLog{
		ActorID:  shared.ActorID(ctx),
		Action:   "reservation.status",
		Entity:   "reservation",
		EntityID: strconv.FormatInt(id, 10),
		Meta:     map[string]any{"from": string(from), "to": string(status)},
	}); err != nil {
		s.logger.Warn("audit reservation status", slog.Int64("reservation_id", id), slog.Any("error", err))
	}
	s.afterWrite(ctx, *updated, "reservation.status")
	return updated, nil
}

// afterWrite syncs the ledger and invalidates cached summaries. Failures are
// logged; the periodic seeding job repairs missed ledger entries.
func (s *Service) afterWrite(ctx context.Context, res Reservation, op string) {
	if s.ledger != nil {
		if err := s.ledger.SyncReservation(ctx, res); err != nil {
			s.logger.Warn("sync commission ledger", slog.String("op", op), slog.Int64("reservation_id", res.ID), slog.Any("error", err))
		}
	}
	if s.cache != nil {
		if err := s.cache.Bump(ctx); err != nil {
			s.logger.Warn("bump summary cache", slog.String("op", op), slog.Any("error", err))
		}
	}
}

func (s *Service) checkStaff(ctx context.Context, staffID *int64) error {
	if staffID == nil || s.staff == nil {
		return nil
	}
	member, err := s.staff.Get(ctx, *staffID)
	if err != nil {
		if shared.IsNotFound(err) {
			return shared.Validationf("staff member %d does not exist", *staffID)
		}
		return err
	}
	if !member.IsActive {
		return shared.Validationf("staff member %d is inactive", *staffID)
	}
	return nil
}

func parseStay(checkIn, checkOut string) (time.Time, time.Time, error) {
	in, err := shared.ParseDate(checkIn)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	out, err := shared.ParseDate(checkOut)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if out.Before(in) {
		return time.Time{}, time.Time{}, shared.Validationf("check-out %s is before check-in %s", checkOut, checkIn)
	}
	return in, out, nil
}

func normaliseCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
