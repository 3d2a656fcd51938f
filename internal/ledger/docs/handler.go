package docs

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/ledgerline/ledgerline/internal/ledger/journal"
	"github.com/ledgerline/ledgerline/internal/platform/httpx"
	internalShared "github.com/ledgerline/ledgerline/internal/shared"
)

// Handler wires HTTP endpoints for the source-document registry.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

// MountRoutes registers registry routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/documents", h.outstanding)
	r.Post("/documents", h.register)
	r.Get("/documents/{id}", h.show)
	r.Post("/documents/{id}/settle", h.settle)
}

// respondError maps registry sentinels before the generic ledger mapping.
func respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, ErrOverSettled):
		httpx.Problem(w, http.StatusUnprocessableEntity, "Unprocessable", err.Error())
	default:
		httpx.RespondError(w, err)
	}
}

type registerRequest struct {
	Kind      string  `json:"kind" validate:"required"`
	Number    string  `json:"number" validate:"required"`
	Party     string  `json:"party"`
	IssueDate string  `json:"issueDate" validate:"required"`
	DueDate   *string `json:"dueDate"`
	Total     float64 `json:"total" validate:"gte=0"`
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := internalShared.TenantFromContext(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusBadRequest, "Missing Tenant", "tenant context required")
		return
	}
	var req registerRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Malformed Body", err.Error())
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	issueDate, err := time.Parse("2006-01-02", req.IssueDate)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "issueDate must be YYYY-MM-DD")
		return
	}
	in := RegisterInput{
		TenantID:  tenantID,
		Kind:      journal.SourceKind(req.Kind),
		Number:    req.Number,
		Party:     req.Party,
		IssueDate: issueDate,
		Total:     req.Total,
	}
	if req.DueDate != nil {
		dueDate, err := time.Parse("2006-01-02", *req.DueDate)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "dueDate must be YYYY-MM-DD")
			return
		}
		in.DueDate = &dueDate
	}
	doc, err := h.service.Register(r.Context(), in)
	if err != nil {
		h.logger.Warn("document register failed", slog.Any("error", err))
		respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, doc)
}

func (h *Handler) outstanding(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := internalShared.TenantFromContext(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusBadRequest, "Missing Tenant", "tenant context required")
		return
	}
	kind := journal.SourceKind(r.URL.Query().Get("kind"))
	documents, err := h.service.Outstanding(r.Context(), tenantID, kind)
	if err != nil {
		h.logger.Warn("document list failed", slog.Any("error", err))
		respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"documents": documents})
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := internalShared.TenantFromContext(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusBadRequest, "Missing Tenant", "tenant context required")
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "document id must be a UUID")
		return
	}
	doc, err := h.service.Get(r.Context(), tenantID, id)
	if err != nil {
		respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, doc)
}

type settleRequest struct {
	Amount float64 `json:"amount" validate:"required,gt=0"`
}

func (h *Handler) settle(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := internalShared.TenantFromContext(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusBadRequest, "Missing Tenant", "tenant context required")
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "document id must be a UUID")
		return
	}
	var req settleRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Malformed Body", err.Error())
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	doc, err := h.service.Settle(r.Context(), SettleInput{TenantID: tenantID, ID: id, Amount: req.Amount})
	if err != nil {
		h.logger.Warn("document settle failed", slog.Any("error", err))
		respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, doc)
}
