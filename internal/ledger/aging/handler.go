package aging

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/ledgerline/ledgerline/internal/platform/httpx"
	internalShared "github.com/ledgerline/ledgerline/internal/shared"
)

// Handler wires HTTP endpoints for aging reports.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers aging routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/aging/receivables", h.receivables)
	r.Get("/aging/payables", h.payables)
}

func (h *Handler) receivables(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, h.service.Receivables)
}

func (h *Handler) payables(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, h.service.Payables)
}

func (h *Handler) respond(w http.ResponseWriter, r *http.Request, report func(ctx context.Context, tenantID uuid.UUID, ref time.Time) (Report, error)) {
	tenantID, ok := internalShared.TenantFromContext(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusBadRequest, "Missing Tenant", "tenant context required")
		return
	}
	var ref time.Time
	if raw := r.URL.Query().Get("referenceDate"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", fmt.Sprintf("referenceDate %q must be YYYY-MM-DD", raw))
			return
		}
		ref = parsed
	}
	out, err := report(r.Context(), tenantID, ref)
	if err != nil {
		h.logger.Error("aging report failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, out)
}
