package app

import (
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/staybook/staybook/internal/auth"
	"github.com/staybook/staybook/internal/cashflow"
	"github.com/staybook/staybook/internal/clients"
	"github.com/staybook/staybook/internal/commission"
	"github.com/staybook/staybook/internal/expenses"
	"github.com/staybook/staybook/internal/invoices"
	"github.com/staybook/staybook/internal/observability"
	"github.com/staybook/staybook/internal/reservations"
	"github.com/staybook/staybook/internal/shared"
	"github.com/staybook/staybook/internal/staff"
	"github.com/staybook/staybook/internal/summary"
	"github.com/staybook/staybook/report"
)

// Services holds the domain services shared by the server, worker and CLI.
type Services struct {
	Auth         *auth.Service
	Tokens       *auth.TokenIssuer
	Clients      *clients.Service
	Staff        *staff.Service
	Reservations *reservations.Service
	Ledger       *commission.Ledger
	Summary      *summary.Service
	SummaryCache *summary.Cache
	Invoices     *invoices.Service
	Expenses     *expenses.Service
	Cashflow     *cashflow.Service
	PDF          *report.Client
}

// NewServices wires repositories and services over pool and redisClient.
// metrics may be nil.
func NewServices(cfg *Config, pool *pgxpool.Pool, redisClient *redis.Client, metrics *observability.Metrics, logger *slog.Logger) (*Services, error) {
	audit := shared.NewAuditLogger(pool)
	policy := commission.Policy{FixedAmount: cfg.CommissionFixedAmount}

	tokens := auth.NewTokenIssuer(cfg.JWTSecret, cfg.JWTAccessTTL)
	authService := auth.NewService(auth.NewRepository(pool), tokens, auth.NewRefreshStore(redisClient, cfg.JWTRefreshTTL))

	clientService := clients.NewService(clients.NewRepository(pool))
	staffService := staff.NewService(staff.NewRepository(pool))

	reservationRepo := reservations.NewRepository(pool)
	commissionRepo := commission.NewRepository(pool)

	summaryCache := summary.NewCache(redisClient, cfg.SummaryCacheTTL, metrics)
	summaryService := summary.NewService(reservationRepo, commissionRepo, staffService, policy, summaryCache, logger)

	ledger := commission.NewLedger(commissionRepo, reservationRepo, policy,
		commission.WithCache(summaryService),
		commission.WithAudit(audit),
		commission.WithMetrics(metrics),
		commission.WithLogger(logger),
	)
	reservationService := reservations.NewService(reservationRepo, staffService, ledger, summaryService, audit, logger)

	pdfClient := report.NewClient(cfg.GotenbergURL)
	renderer, err := invoices.NewPDFRenderer(pdfClient)
	if err != nil {
		return nil, err
	}
	invoiceService := invoices.NewService(invoices.NewRepository(pool), clientService, invoices.Settings{
		DueDays:    cfg.InvoiceDueDays,
		TaxRateBPS: cfg.InvoiceTaxRateBPS,
	}, renderer, audit, logger)
	expenseService := expenses.NewService(expenses.NewRepository(pool), audit, logger)

	return &Services{
		Auth:         authService,
		Tokens:       tokens,
		Clients:      clientService,
		Staff:        staffService,
		Reservations: reservationService,
		Ledger:       ledger,
		Summary:      summaryService,
		SummaryCache: summaryCache,
		Invoices:     invoiceService,
		Expenses:     expenseService,
		Cashflow:     cashflow.NewService(invoiceService, expenseService),
		PDF:          pdfClient,
	}, nil
}
