package summary

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
	r.Get("/", h.all)
	r.Get("/{staffID}", h.one)
}

func (h *Handler) all(w http.ResponseWriter, r *http.Request) {
	period, err := shared.PeriodFromRequest(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	rows, err := h.service.SummarizeAll(r.Context(), period)
	if err != nil {
		httpx.Fail(w, h.logger, "summarize staff", err)
		return
	}
	views := make([]View, 0, len(rows))
	for _, s := range rows {
		views = append(views, NewView(s))
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"data":   views,
		"totals": NewView(Totals(rows)),
		"period": period,
	})
}

func (h *Handler) one(w http.ResponseWriter, r *http.Request) {
	staffID, err := httpx.URLID(r, "staffID")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	period, err := shared.PeriodFromRequest(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	s, err := h.service.Summarize(r.Context(), staffID, period)
	if err != nil {
		httpx.Fail(w, h.logger, "summarize staff member", err)
		return
	}
	httpx.JSON(w, http.StatusOK, NewView(s))
}
