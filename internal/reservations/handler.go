package reservations

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
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/{id}", h.show)
	r.Put("/{id}", h.update)
	r.Post("/{id}/status", h.setStatus)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	from, err := httpx.QueryDate(r, "from")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	to, err := httpx.QueryDate(r, "to")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	staffID, err := httpx.QueryInt64(r, "staff_id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	page, perPage := shared.PageFromRequest(r)
	p := shared.NewPagination(page, perPage, 0)

	rows, total, err := h.service.List(r.Context(), Filter{
		StaffID: staffID,
		Status:  Status(r.URL.Query().Get("status")),
		Period:  shared.Period{From: from, To: to},
		Search:  r.URL.Query().Get("search"),
		Limit:   p.PerPage,
		Offset:  p.Offset(),
	})
	if err != nil {
		httpx.Fail(w, h.logger, "list reservations", err)
		return
	}
	views := make([]View, 0, len(rows))
	for _, res := range rows {
		views = append(views, NewView(res))
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
	res, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.Fail(w, h.logger, "get reservation", err)
		return
	}
	httpx.JSON(w, http.StatusOK, NewView(*res))
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req CreateReservationRequest
	if !httpx.Bind(w, r, &req) {
		return
	}
	res, err := h.service.Create(r.Context(), req)
	if err != nil {
		httpx.Fail(w, h.logger, "create reservation", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, NewView(*res))
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.URLID(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var req UpdateReservationRequest
	if !httpx.Bind(w, r, &req) {
		return
	}
	res, err := h.service.Update(r.Context(), id, req)
	if err != nil {
		httpx.Fail(w, h.logger, "update reservation", err)
		return
	}
	httpx.JSON(w, http.StatusOK, NewView(*res))
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
	res, err := h.service.SetStatus(r.Context(), id, Status(req.Status))
	if err != nil {
		httpx.Fail(w, h.logger, "set reservation status", err)
		return
	}
	httpx.JSON(w, http.StatusOK, NewView(*res))
}
