package reports

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ledgerline/ledgerline/internal/platform/httpx"
	internalShared "github.com/ledgerline/ledgerline/internal/shared"
	"github.com/ledgerline/ledgerline/internal/view"
)

// Handler wires HTTP endpoints for the financial statements.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers report routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/reports/trial-balance", h.trialBalance)
	r.Get("/reports/trial-balance.csv", h.trialBalanceCSV)
	r.Get("/reports/profit-and-loss", h.profitAndLoss)
	r.Get("/reports/balance-sheet", h.balanceSheet)
}

func (h *Handler) trialBalance(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := internalShared.TenantFromContext(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusBadRequest, "Missing Tenant", "tenant context required")
		return
	}
	asOf, err := dateParam(r, "asOf", time.Now())
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	tb, err := h.service.TrialBalance(r.Context(), tenantID, asOf)
	if err != nil {
		h.logger.Error("trial balance failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, tb)
}

func (h *Handler) trialBalanceCSV(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := internalShared.TenantFromContext(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusBadRequest, "Missing Tenant", "tenant context required")
		return
	}
	asOf, err := dateParam(r, "asOf", time.Now())
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	tb, err := h.service.TrialBalance(r.Context(), tenantID, asOf)
	if err != nil {
		h.logger.Error("trial balance export failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=trial-balance-%s.csv", asOf.Format(dayLayout)))
	writer := csv.NewWriter(w)
	_ = writer.Write([]string{"class", "code", "name", "debit", "credit"})
	for _, group := range tb.Groups {
		for _, row := range group.Rows {
			_ = writer.Write([]string{
				string(group.Class),
				row.Code,
				row.Name,
				view.Money(row.Debit),
				view.Money(row.Credit),
			})
		}
	}
	_ = writer.Write([]string{"", "", "TOTAL", view.Money(tb.TotalDebit), view.Money(tb.TotalCredit)})
	writer.Flush()
}

func (h *Handler) profitAndLoss(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := internalShared.TenantFromContext(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusBadRequest, "Missing Tenant", "tenant context required")
		return
	}
	start, err := dateParam(r, "start", time.Time{})
	if err != nil || start.IsZero() {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "start must be YYYY-MM-DD")
		return
	}
	end, err := dateParam(r, "end", time.Time{})
	if err != nil || end.IsZero() {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "end must be YYYY-MM-DD")
		return
	}
	pl, err := h.service.ProfitAndLoss(r.Context(), tenantID, start, end)
	if err != nil {
		h.logger.Error("profit and loss failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, pl)
}

func (h *Handler) balanceSheet(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := internalShared.TenantFromContext(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusBadRequest, "Missing Tenant", "tenant context required")
		return
	}
	asOf, err := dateParam(r, "asOf", time.Now())
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	bs, err := h.service.BalanceSheet(r.Context(), tenantID, asOf)
	if err != nil {
		h.logger.Error("balance sheet failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, bs)
}

func dateParam(r *http.Request, name string, fallback time.Time) (time.Time, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}
	parsed, err := time.Parse(dayLayout, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s must be YYYY-MM-DD", name)
	}
	return parsed, nil
}
