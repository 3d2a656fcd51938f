package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/ledgerline/ledgerline/internal/ledger/accounts"
	"github.com/ledgerline/ledgerline/internal/ledger/aging"
	"github.com/ledgerline/ledgerline/internal/ledger/docs"
	"github.com/ledgerline/ledgerline/internal/ledger/journal"
	"github.com/ledgerline/ledgerline/internal/ledger/reports"
	"github.com/ledgerline/ledgerline/internal/ledger/tax"
	"github.com/ledgerline/ledgerline/internal/observability"
	"github.com/ledgerline/ledgerline/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger          *slog.Logger
	Config          *Config
	AccountsHandler *accounts.Handler
	JournalHandler  *journal.Handler
	ReportsHandler  *reports.Handler
	AgingHandler    *aging.Handler
	TaxHandler      *tax.Handler
	DocsHandler     *docs.Handler
	JobsHandler     *jobs.Handler
	Metrics         *observability.Metrics
}

// NewRouter constructs the chi.Router with ledgerline defaults. Every ledger
// route lives under /v1 and requires the tenant header.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}
	if params.JobsHandler != nil {
		r.Route("/jobs", params.JobsHandler.MountRoutes)
	}

	r.Route("/v1", func(r chi.Router) {
		r.Use(RequireTenant)
		if params.AccountsHandler != nil {
			params.AccountsHandler.MountRoutes(r)
		}
		if params.JournalHandler != nil {
			params.JournalHandler.MountRoutes(r)
		}
		if params.ReportsHandler != nil {
			params.ReportsHandler.MountRoutes(r)
		}
		if params.AgingHandler != nil {
			params.AgingHandler.MountRoutes(r)
		}
		if params.TaxHandler != nil {
			params.TaxHandler.MountRoutes(r)
		}
		if params.DocsHandler != nil {
			params.DocsHandler.MountRoutes(r)
		}
	})

	return r
}
