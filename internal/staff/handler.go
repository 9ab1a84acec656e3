package staff

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
	members, err := h.service.List(r.Context(), r.URL.Query().Get("active") == "true")
	if err != nil {
		httpx.Fail(w, h.logger, "list staff", err)
		return
	}
	if members == nil {
		members = []Member{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"data": members})
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.URLID(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	m, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.Fail(w, h.logger, "get staff", err)
		return
	}
	httpx.JSON(w, http.StatusOK, m)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req CreateMemberRequest
	if !httpx.Bind(w, r, &req) {
		return
	}
	m, err := h.service.Create(r.Context(), req)
	if err != nil {
		httpx.Fail(w, h.logger, "create staff", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, m)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.URLID(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var req UpdateMemberRequest
	if !httpx.Bind(w, r, &req) {
		return
	}
	m, err := h.service.Update(r.Context(), id, req)
	if err != nil {
		httpx.Fail(w, h.logger, "update staff", err)
		return
	}
	httpx.JSON(w, http.StatusOK, m)
}
