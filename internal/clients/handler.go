package clients

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
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	var isActive *bool
	if v := r.URL.Query().Get("is_active"); v != "" {
		val := v == "true"
		isActive = &val
	}
	page, perPage := shared.PageFromRequest(r)
	p := shared.NewPagination(page, perPage, 0)

	clients, total, err := h.service.List(r.Context(), ListClientsRequest{
		IsActive: isActive,
		Search:   r.URL.Query().Get("search"),
		Limit:    p.PerPage,
		Offset:   p.Offset(),
	})
	if err != nil {
		httpx.Fail(w, h.logger, "list clients", err)
		return
	}
	if clients == nil {
		clients = []Client{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"data":       clients,
		"pagination": shared.NewPagination(p.Page, p.PerPage, total),
	})
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.URLID(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	c, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.Fail(w, h.logger, "get client", err)
		return
	}
	httpx.JSON(w, http.StatusOK, c)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req CreateClientRequest
	if !httpx.Bind(w, r, &req) {
		return
	}
	c, err := h.service.Create(r.Context(), req)
	if err != nil {
		httpx.Fail(w, h.logger, "create client", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, c)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.URLID(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var req UpdateClientRequest
	if !httpx.Bind(w, r, &req) {
		return
	}
	c, err := h.service.Update(r.Context(), id, req)
	if err != nil {
		httpx.Fail(w, h.logger, "update client", err)
		return
	}
	httpx.JSON(w, http.StatusOK, c)
}
