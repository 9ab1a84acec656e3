package cashflow

import (
	"fmt"
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
	r.Get("/ledger", h.ledger)
	r.Get("/stats", h.stats)
	r.Get("/trend", h.trend)
	r.Get("/export.csv", h.export)
}

type ledgerView struct {
	Report
	ClosingBalanceDisplay string `json:"closing_balance_display"`
}

func (h *Handler) ledger(w http.ResponseWriter, r *http.Request) {
	report, ok := h.loadLedger(w, r)
	if !ok {
		return
	}
	httpx.JSON(w, http.StatusOK, ledgerView{Report: report, ClosingBalanceDisplay: shared.FormatIDR(report.ClosingBalance)})
}

func (h *Handler) export(w http.ResponseWriter, r *http.Request) {
	report, ok := h.loadLedger(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=cashflow-%s.csv", h.service.clock().Format("20060102")))
	w.WriteHeader(http.StatusOK)
	if err := WriteLedgerCSV(w, report); err != nil {
		h.logger.Error("write cashflow csv", slog.Any("error", err))
	}
}

func (h *Handler) loadLedger(w http.ResponseWriter, r *http.Request) (Report, bool) {
	period, err := shared.PeriodFromRequest(r)
	if err != nil {
		httpx.RespondError(w, err)
		return Report{}, false
	}
	opening, err := httpx.QueryInt64(r, "opening")
	if err != nil {
		httpx.RespondError(w, err)
		return Report{}, false
	}
	report, err := h.service.Ledger(r.Context(), period, opening)
	if err != nil {
		httpx.Fail(w, h.logger, "build cashflow ledger", err)
		return Report{}, false
	}
	return report, true
}

func (h *Handler) stats(w http.ResponseWriter, r *http.Request) {
	period, err := shared.PeriodFromRequest(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	stats, err := h.service.Stats(r.Context(), period)
	if err != nil {
		httpx.Fail(w, h.logger, "cashflow stats", err)
		return
	}
	httpx.JSON(w, http.StatusOK, stats)
}

func (h *Handler) trend(w http.ResponseWriter, r *http.Request) {
	period, err := shared.PeriodFromRequest(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	points, err := h.service.Trend(r.Context(), period)
	if err != nil {
		httpx.Fail(w, h.logger, "cashflow trend", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"data": points})
}
