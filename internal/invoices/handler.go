package invoices

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/staybook/staybook/internal/platform/httpx"
	"github.com/staybook/staybook/internal/shared"
)

type Handler struct {
	logger  *slog.Logger
	service *Service
	guard   shared.RoleGuard
}

func NewHandler(logger *slog.Logger, service *Service, guard shared.RoleGuard) *Handler {
	return &Handler{logger: logger, service: service, guard: guard}
}

func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Get("/{id}", h.show)
	r.Get("/{id}/pdf", h.pdf)
	r.Group(func(r chi.Router) {
		r.Use(h.guard.RequireRole(shared.RoleAdmin))
		r.Post("/", h.create)
		r.Post("/{id}/status", h.setStatus)
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	period, err := shared.PeriodFromRequest(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	clientID, err := httpx.QueryInt64(r, "client_id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	page, perPage := shared.PageFromRequest(r)
	p := shared.NewPagination(page, perPage, 0)

	rows, total, err := h.service.List(r.Context(), Filter{
		Status:   Status(r.URL.Query().Get("status")),
		ClientID: clientID,
		Period:   period,
		Limit:    p.PerPage,
		Offset:   p.Offset(),
	})
	if err != nil {
		httpx.Fail(w, h.logger, "list invoices", err)
		return
	}
	views := make([]View, 0, len(rows))
	for _, inv := range rows {
		views = append(views, NewView(inv))
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"data":       views,
		"pagination": shared.NewPagination(p.Page, p.PerPage, total),
	})
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.URLID(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	inv, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.Fail(w, h.logger, "get invoice", err)
		return
	}
	httpx.JSON(w, http.StatusOK, NewView(*inv))
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req CreateInvoiceRequest
	if !httpx.Bind(w, r, &req) {
		return
	}
	inv, err := h.service.Create(r.Context(), req)
	if err != nil {
		httpx.Fail(w, h.logger, "create invoice", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, NewView(*inv))
}

func (h *Handler) setStatus(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.URLID(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var req StatusRequest
	if !httpx.Bind(w, r, &req) {
		return
	}
	inv, err := h.service.SetStatus(r.Context(), id, req)
	if err != nil {
		httpx.Fail(w, h.logger, "set invoice status", err)
		return
	}
	httpx.JSON(w, http.StatusOK, NewView(*inv))
}

func (h *Handler) pdf(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.URLID(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	inv, pdf, err := h.service.RenderPDF(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrPDFUnavailable) {
			httpx.Problem(w, http.StatusServiceUnavailable, "PDF unavailable", "document rendering is not configured")
			return
		}
		httpx.Fail(w, h.logger, "render invoice pdf", err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "inline; filename="+inv.Number+".pdf")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pdf)
}
