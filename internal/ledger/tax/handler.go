package tax

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/ledgerline/ledgerline/internal/platform/httpx"
	internalShared "github.com/ledgerline/ledgerline/internal/shared"
)

// Handler wires HTTP endpoints for tax configuration and the summary report.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

// MountRoutes registers tax routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/tax/codes", h.listCodes)
	r.Put("/tax/codes", h.saveCode)
	r.Get("/tax/codes/{code}", h.showCode)
	r.Get("/tax/summary", h.summary)
}

func respondError(w http.ResponseWriter, err error) {
	if errors.Is(err, ErrCodeNotFound) {
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
		return
	}
	httpx.RespondError(w, err)
}

func (h *Handler) showCode(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := internalShared.TenantFromContext(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusBadRequest, "Missing Tenant", "tenant context required")
		return
	}
	code, err := h.service.Code(r.Context(), tenantID, chi.URLParam(r, "code"))
	if err != nil {
		respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, code)
}

func (h *Handler) listCodes(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := internalShared.TenantFromContext(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusBadRequest, "Missing Tenant", "tenant context required")
		return
	}
	codes, err := h.service.Codes(r.Context(), tenantID)
	if err != nil {
		h.logger.Error("tax code list failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"codes": codes})
}

type saveCodeRequest struct {
	Code string  `json:"code" validate:"required"`
	Name string  `json:"name" validate:"required"`
	Rate float64 `json:"rate" validate:"gte=0"`
}

func (h *Handler) saveCode(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := internalShared.TenantFromContext(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusBadRequest, "Missing Tenant", "tenant context required")
		return
	}
	var req saveCodeRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Malformed Body", err.Error())
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	code, err := h.service.SaveCode(r.Context(), Code{
		TenantID: tenantID,
		Code:     req.Code,
		Name:     req.Name,
		Rate:     req.Rate,
	})
	if err != nil {
		h.logger.Warn("tax code save failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, code)
}

func (h *Handler) summary(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := internalShared.TenantFromContext(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusBadRequest, "Missing Tenant", "tenant context required")
		return
	}
	start, err := time.Parse("2006-01-02", r.URL.Query().Get("start"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "start must be YYYY-MM-DD")
		return
	}
	end, err := time.Parse("2006-01-02", r.URL.Query().Get("end"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "end must be YYYY-MM-DD")
		return
	}
	summary, err := h.service.Summarise(r.Context(), tenantID, start, end)
	if err != nil {
		h.logger.Error("tax summary failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, summary)
}
