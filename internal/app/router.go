package app

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/staybook/staybook/internal/auth"
	"github.com/staybook/staybook/internal/cashflow"
	"github.com/staybook/staybook/internal/clients"
	"github.com/staybook/staybook/internal/commission"
	"github.com/staybook/staybook/internal/expenses"
	"github.com/staybook/staybook/internal/invoices"
	"github.com/staybook/staybook/internal/observability"
	"github.com/staybook/staybook/internal/platform/httpx"
	"github.com/staybook/staybook/internal/reservations"
	"github.com/staybook/staybook/internal/staff"
	"github.com/staybook/staybook/internal/summary"
	"github.com/staybook/staybook/jobs"
)

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a function to Pinger.
type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger  *slog.Logger
	Config  *Config
	Metrics *observability.Metrics

	AuthMiddleware *auth.Middleware
	AuthHandler    *auth.Handler

	ClientsHandler      *clients.Handler
	StaffHandler        *staff.Handler
	ReservationsHandler *reservations.Handler
	CommissionHandler   *commission.Handler
	SummaryHandler      *summary.Handler
	InvoicesHandler     *invoices.Handler
	ExpensesHandler     *expenses.Handler
	CashflowHandler     *cashflow.Handler
	JobHandler          *jobs.Handler

	// Checks are probed by /healthz, keyed by dependency name. A failing
	// check turns the response into 503.
	Checks map[string]Pinger
	// Optional checks are reported but never fail the probe.
	Optional map[string]Pinger
}

// NewRouter constructs the chi.Router with StayBook defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Get("/healthz", healthz(params.Checks, params.Optional))
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}
	if params.JobHandler != nil {
		r.Route("/jobs", params.JobHandler.MountRoutes)
	}

	r.Route("/api", func(r chi.Router) {
		if params.AuthHandler != nil {
			r.Route("/auth", params.AuthHandler.MountRoutes)
		}
		r.Group(func(r chi.Router) {
			requireAuth := denyUnauthenticated
			if params.AuthMiddleware != nil {
				requireAuth = params.AuthMiddleware.RequireAuth
			}
			r.Use(requireAuth)
			if params.ClientsHandler != nil {
				r.Route("/clients", params.ClientsHandler.MountRoutes)
			}
			if params.StaffHandler != nil {
				r.Route("/staff", params.StaffHandler.MountRoutes)
			}
			if params.ReservationsHandler != nil {
				r.Route("/reservations", params.ReservationsHandler.MountRoutes)
			}
			if params.CommissionHandler != nil {
				r.Route("/commissions", params.CommissionHandler.MountRoutes)
			}
			if params.SummaryHandler != nil {
				r.Route("/summary", params.SummaryHandler.MountRoutes)
			}
			if params.InvoicesHandler != nil {
				r.Route("/invoices", params.InvoicesHandler.MountRoutes)
			}
			if params.ExpensesHandler != nil {
				r.Route("/expenses", params.ExpensesHandler.MountRoutes)
			}
			if params.CashflowHandler != nil {
				r.Route("/cashflow", params.CashflowHandler.MountRoutes)
			}
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httpx.Problem(w, http.StatusNotFound, "Not Found", "no route for "+r.URL.Path)
	})
	return r
}

func healthz(checks, optional map[string]Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()
		status := http.StatusOK
		deps := make(map[string]string, len(checks)+len(optional))
		probe := func(set map[string]Pinger, critical bool) {
			for name, check := range set {
				if check == nil {
					continue
				}
				if err := check.Ping(ctx); err != nil {
					deps[name] = "down"
					if critical {
						status = http.StatusServiceUnavailable
					}
					continue
				}
				deps[name] = "ok"
			}
		}
		probe(checks, true)
		probe(optional, false)
		overall := "ok"
		if status != http.StatusOK {
			overall = "degraded"
		}
		httpx.JSON(w, status, map[string]any{"status": overall, "dependencies": deps})
	}
}

// denyUnauthenticated rejects every request when no authenticator is wired.
func denyUnauthenticated(http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		httpx.RespondError(w, httpx.ErrUnauthorized)
	})
}
