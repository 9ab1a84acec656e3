package commission

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/staybook/staybook/internal/platform/httpx"
	"github.com/staybook/staybook/internal/shared"
)

type Handler struct {
	logger *slog.Logger
	ledger *Ledger
	guard  shared.RoleGuard
}

func NewHandler(logger *slog.Logger, ledger *Ledger, guard shared.RoleGuard) *Handler {
	return &Handler{logger: logger, ledger: ledger, guard: guard}
}

func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Get("/{id}", h.show)
	r.Group(func(r chi.Router) {
		r.Use(h.guard.RequireRole(shared.RoleAdmin))
		r.Post("/seed", h.seed)
		r.Post("/{id}/status", h.setStatus)
	})
}

type statusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending paid cancelled"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	staffID, err := httpx.QueryInt64(r, "staff_id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	reservationID, err := httpx.QueryInt64(r, "reservation_id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	entries, err := h.ledger.List(r.Context(), Filter{
		StaffID:       staffID,
		ReservationID: reservationID,
		Status:        Status(r.URL.Query().Get("status")),
	})
	if err != nil {
		httpx.Fail(w, h.logger, "list commissions", err)
		return
	}
	views := make([]EntryView, 0, len(entries))
	for _, e := range entries {
		views = append(views, NewEntryView(e))
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"data": views})
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	id, err := parseEntryID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	entry, err := h.ledger.Get(r.Context(), id)
	if err != nil {
		httpx.Fail(w, h.logger, "get commission", err)
		return
	}
	httpx.JSON(w, http.StatusOK, NewEntryView(*entry))
}

func (h *Handler) seed(w http.ResponseWriter, r *http.Request) {
	result, err := h.ledger.SeedAll(r.Context())
	if err != nil {
		httpx.Fail(w, h.logger, "seed commissions", err)
		return
	}
	if h.logger != nil {
		h.logger.Info("commission seed", slog.Int("created", result.Created), slog.Int("skipped", result.Skipped))
	}
	httpx.JSON(w, http.StatusOK, result)
}

func (h *Handler) setStatus(w http.ResponseWriter, r *http.Request) {
	id, err := parseEntryID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var req statusRequest
	if !httpx.Bind(w, r, &req) {
		return
	}
	entry, err := h.ledger.SetStatus(r.Context(), id, Status(req.Status))
	if err != nil {
		httpx.Fail(w, h.logger, "set commission status", err)
		return
	}
	httpx.JSON(w, http.StatusOK, NewEntryView(*entry))
}

func parseEntryID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, shared.Validationf("invalid commission id")
	}
	return id, nil
}
