package expenses

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/staybook/staybook/internal/shared"
)

type Service struct {
	repo   Repository
	audit  shared.AuditRecorder
	logger *slog.Logger
}

func NewService(repo Repository, audit shared.AuditRecorder, logger *slog.Logger) *Service {
	if audit == nil {
		audit = shared.NopAudit{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, audit: audit, logger: logger}
}

func (s *Service) Get(ctx context.Context, id int64) (*Expense, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, f Filter) ([]Expense, int, error) {
	if err := f.Period.Validate(); err != nil {
		return nil, 0, err
	}
	if f.Status != "" && !f.Status.Valid() {
		return nil, 0, shared.Validationf("unknown expense status %q", f.Status)
	}
	return s.repo.List(ctx, f)
}

func (s *Service) Create(ctx context.Context, req CreateExpenseRequest) (*Expense, error) {
	date, err := shared.ParseDate(req.Date)
	if err != nil {
		return nil, err
	}
	status := StatusPending
	if req.Status != "" {
		status = Status(req.Status)
	}
	e := Expense{
		Date:        date,
		Category:    strings.TrimSpace(req.Category),
		Description: strings.TrimSpace(req.Description),
		Amount:      req.Amount,
		Status:      status,
		Vendor:      strings.TrimSpace(req.Vendor),
		Reference:   strings.TrimSpace(req.Reference),
	}
	id, err := s.repo.Create(ctx, e)
	if err != nil {
		return nil, fmt.Errorf("create expense: %w", err)
	}
	return s.repo.Get(ctx, id)
}

// Update edits a pending or completed expense. Cancelled expenses are frozen.
func (s *Service) Update(ctx context.Context, id int64, req UpdateExpenseRequest) (*Expense, error) {
	e, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if e.Status == StatusCancelled {
		return nil, fmt.Errorf("%w: cancelled expense cannot be edited", ErrInvalidTransition)
	}
	if req.Date != nil {
		if e.Date, err = shared.ParseDate(*req.Date); err != nil {
			return nil, err
		}
	}
	if req.Category != nil {
		e.Category = strings.TrimSpace(*req.Category)
	}
	if req.Description != nil {
		e.Description = strings.TrimSpace(*req.Description)
	}
	if req.Amount != nil {
		e.Amount = *req.Amount
	}
	if req.Vendor != nil {
		e.Vendor = strings.TrimSpace(*req.Vendor)
	}
	if req.Reference != nil {
		e.Reference = strings.TrimSpace(*req.Reference)
	}
	if err := s.repo.Update(ctx, *e); err != nil {
		return nil, fmt.Errorf("update expense: %w", err)
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) SetStatus(ctx context.Context, id int64, status Status) (*Expense, error) {
	if !status.Valid() {
		return nil, shared.Validationf("unknown expense status %q", status)
	}
	e, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	from := e.Status
	if from == status {
		return e, nil
	}
	if !CanTransition(from, status) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, status)
	}
	if err := s.repo.UpdateStatus(ctx, id, from, status); err != nil {
		return nil, fmt.Errorf("set expense status: %w", err)
	}
	e.Status = status
	if err := s.audit.Record(ctx, shared.AuditLog{
		ActorID:  shared.ActorID(ctx),
		Action:   "expense.status",
		Entity:   "expense",
		EntityID: strconv.FormatInt(id, 10),
		Meta:     map[string]any{"from": string(from), "to": string(status)},
	}); err != nil {
		s.logger.Warn("audit expense status", slog.Int64("expense_id", id), slog.Any("error", err))
	}
	return e, nil
}
