package expenses

import (
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
	r.Group(func(r chi.Router) {
		r.Use(h.guard.RequireRole(shared.RoleAdmin))
		r.Post("/", h.create)
		r.Put("/{id}", h.update)
		r.Post("/{id}/status", h.setStatus)
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	period, err := shared.PeriodFromRequest(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	page, perPage := shared.PageFromRequest(r)
	p := shared.NewPagination(page, perPage, 0)

	rows, total, err := h.service.List(r.Context(), Filter{
		Status:   Status(r.URL.Query().Get("status")),
		Category: r.URL.Query().Get("category"),
		Period:   period,
		Limit:    p.PerPage,
		Offset:   p.Offset(),
	})
	if err != nil {
		httpx.Fail(w, h.logger, "list expenses", err)
		return
	}
	views := make([]View, 0, len(rows))
	for _, e := range rows {
		views = append(views, NewView(e))
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
	e, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.Fail(w, h.logger, "get expense", err)
		return
	}
	httpx.JSON(w, http.StatusOK, NewView(*e))
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req CreateExpenseRequest
	if !httpx.Bind(w, r, &req) {
		return
	}
	e, err := h.service.Create(r.Context(), req)
	if err != nil {
		httpx.Fail(w, h.logger, "create expense", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, NewView(*e))
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.URLID(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var req UpdateExpenseRequest
	if !httpx.Bind(w, r, &req) {
		return
	}
	e, err := h.service.Update(r.Context(), id, req)
	if err != nil {
		httpx.Fail(w, h.logger, "update expense", err)
		return
	}
	httpx.JSON(w, http.StatusOK, NewView(*e))
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
	e, err := h.service.SetStatus(r.Context(), id, Status(req.Status))
	if err != nil {
		httpx.Fail(w, h.logger, "set expense status", err)
		return
	}
	httpx.JSON(w, http.StatusOK, NewView(*e))
}
