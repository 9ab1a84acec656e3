package invoices

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/staybook/staybook/internal/clients"
	"github.com/staybook/staybook/internal/shared"
)

// ClientDirectory resolves billed clients.
type ClientDirectory interface {
	Get(ctx context.Context, id int64) (*clients.Client, error)
}

// Settings holds invoice defaults.
type Settings struct {
	DueDays    int
	TaxRateBPS int64
}

type Service struct {
	repo     Repository
	clients  ClientDirectory
	settings Settings
	renderer *PDFRenderer
	audit    shared.AuditRecorder
	logger   *slog.Logger
	clock    func() time.Time
}

func NewService(repo Repository, dir ClientDirectory, settings Settings, renderer *PDFRenderer, audit shared.AuditRecorder, logger *slog.Logger) *Service {
	if audit == nil {
		audit = shared.NopAudit{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:     repo,
		clients:  dir,
		settings: settings,
		renderer: renderer,
		audit:    audit,
		logger:   logger,
		clock:    func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) Get(ctx context.Context, id int64) (*Invoice, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, f Filter) ([]Invoice, int, error) {
	if err := f.Period.Validate(); err != nil {
		return nil, 0, err
	}
	if f.Status != "" && !f.Status.Valid() {
		return nil, 0, shared.Validationf("unknown invoice status %q", f.Status)
	}
	return s.repo.List(ctx, f)
}

// Create computes the invoice amounts and allocates the next INV-YYYYMM-NNNN
// number of the issue month.
func (s *Service) Create(ctx context.Context, req CreateInvoiceRequest) (*Invoice, error) {
	client, err := s.clients.Get(ctx, req.ClientID)
	if err != nil {
		if shared.IsNotFound(err) {
			return nil, shared.Validationf("client %d does not exist", req.ClientID)
		}
		return nil, err
	}
	if !client.IsActive {
		return nil, shared.Validationf("client %d is inactive", req.ClientID)
	}
	issued, err := shared.ParseDate(req.IssueDate)
	if err != nil {
		return nil, err
	}
	due := issued.AddDate(0, 0, s.settings.DueDays)
	if req.DueDate != "" {
		if due, err = shared.ParseDate(req.DueDate); err != nil {
			return nil, err
		}
	}
	if due.Before(issued) {
		return nil, shared.Validationf("due date before issue date")
	}

	inv := Invoice{
		ClientID:   client.ID,
		ClientName: client.Name,
		IssueDate:  issued,
		DueDate:    due,
		Discount:   req.Discount,
		Status:     StatusDraft,
		Notes:      strings.TrimSpace(req.Notes),
	}
	if req.Send {
		inv.Status = StatusSent
	}
	for _, item := range req.Items {
		inv.Items = append(inv.Items, Item{
			Description: strings.TrimSpace(item.Description),
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
		})
	}
	if err := inv.Recalculate(); err != nil {
		return nil, err
	}
	rate := s.settings.TaxRateBPS
	if req.TaxRateBPS != nil {
		rate = *req.TaxRateBPS
	}
	inv.Tax = TaxFromBPS(inv.Subtotal, rate)
	if err := inv.Recalculate(); err != nil {
		return nil, err
	}

	var created *Invoice
	err = s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		if err := repo.LockNumbering(ctx); err != nil {
			return err
		}
		seq, err := repo.NextSequence(ctx, NumberPrefix(issued))
		if err != nil {
			return err
		}
		inv.Number = FormatNumber(issued, seq)
		id, err := repo.Create(ctx, inv)
		if err != nil {
			return err
		}
		created, err = repo.Get(ctx, id)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("create invoice: %w", err)
	}
	s.record(ctx, *created, "invoice.create", nil)
	return created, nil
}

// SetStatus applies a lifecycle change. Moving to paid stamps the payment
// date, defaulting to today.
func (s *Service) SetStatus(ctx context.Context, id int64, req StatusRequest) (*Invoice, error) {
	status := Status(req.Status)
	if !status.Valid() {
		return nil, shared.Validationf("unknown invoice status %q", req.Status)
	}
	var (
		updated *Invoice
		from    Status
	)
	err := s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		inv, err := repo.Get(ctx, id)
		if err != nil {
			return err
		}
		from = inv.Status
		if from == status {
			updated = inv
			return nil
		}
		if !CanTransition(from, status) {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, status)
		}
		inv.Status = status
		if status == StatusPaid {
			paid := shared.DateOnly(s.clock())
			if req.PaymentDate != "" {
				if paid, err = shared.ParseDate(req.PaymentDate); err != nil {
					return err
				}
			}
			inv.PaymentDate = &paid
			inv.PaymentMethod = strings.TrimSpace(req.PaymentMethod)
		}
		if err := repo.UpdateStatus(ctx, *inv, from); err != nil {
			return err
		}
		updated = inv
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("set invoice status: %w", err)
	}
	if from != status {
		s.record(ctx, *updated, "invoice.status", map[string]any{"from": string(from), "to": string(status)})
	}
	return updated, nil
}

// MarkOverdue moves every sent invoice past its due date to overdue and
// returns how many changed.
func (s *Service) MarkOverdue(ctx context.Context, now time.Time) (int, error) {
	due, err := s.repo.ListOverdue(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("list overdue invoices: %w", err)
	}
	changed := 0
	for _, inv := range due {
		if !inv.IsOverdue(now) {
			continue
		}
		inv.Status = StatusOverdue
		if err := s.repo.UpdateStatus(ctx, inv, StatusSent); err != nil {
			if errors.Is(err, ErrInvalidTransition) {
				// settled or cancelled since the listing
				continue
			}
			return changed, fmt.Errorf("mark invoice %s overdue: %w", inv.Number, err)
		}
		changed++
		s.record(ctx, inv, "invoice.status", map[string]any{"from": string(StatusSent), "to": string(StatusOverdue)})
	}
	return changed, nil
}

// RenderPDF renders the invoice document.
func (s *Service) RenderPDF(ctx context.Context, id int64) (*Invoice, []byte, error) {
	inv, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	pdf, err := s.renderer.Render(ctx, *inv)
	if err != nil {
		return nil, nil, fmt.Errorf("render invoice %s: %w", inv.Number, err)
	}
	return inv, pdf, nil
}

func (s *Service) record(ctx context.Context, inv Invoice, action string, meta map[string]any) {
	if meta == nil {
		meta = map[string]any{}
	}
	meta["number"] = inv.Number
	err := s.audit.Record(ctx, shared.AuditLog{
		ActorID:  shared.ActorID(ctx),
		Action:   action,
		Entity:   "invoice",
		EntityID: strconv.FormatInt(inv.ID, 10),
		Meta:     meta,
	})
	if err != nil {
		s.logger.Warn("audit invoice", slog.Int64("invoice_id", inv.ID), slog.Any("error", err))
	}
}
