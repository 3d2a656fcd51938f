package accounts

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/ledgerline/ledgerline/internal/platform/httpx"
	internalShared "github.com/ledgerline/ledgerline/internal/shared"
	"github.com/ledgerline/ledgerline/internal/view"
)

// Handler wires HTTP endpoints for the account registry.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

// MountRoutes registers account routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/accounts", h.list)
	r.Post("/accounts", h.create)
	r.Patch("/accounts/{id}", h.update)
	r.Post("/accounts/{id}/deactivate", h.deactivate)
	r.Get("/accounts/{id}/balance", h.balance)
}

type createAccountRequest struct {
	Code           string  `json:"code" validate:"required"`
	Name           string  `json:"name" validate:"required"`
	Class          string  `json:"class" validate:"required"`
	ParentID       *int64  `json:"parentId"`
	IsHeader       bool    `json:"isHeader"`
	ExpenseGroup   string  `json:"expenseGroup"`
	TaxCode        *string `json:"taxCode"`
	OpeningBalance float64 `json:"openingBalance"`
	OpeningDate    *string `json:"openingDate"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := internalShared.TenantFromContext(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusBadRequest, "Missing Tenant", "tenant context required")
		return
	}
	var req createAccountRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Malformed Body", err.Error())
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	in := CreateInput{
		TenantID:       tenantID,
		Code:           req.Code,
		Name:           req.Name,
		Class:          Classification(req.Class),
		ParentID:       req.ParentID,
		IsHeader:       req.IsHeader,
		ExpenseGroup:   ExpenseGroup(req.ExpenseGroup),
		TaxCode:        req.TaxCode,
		OpeningBalance: req.OpeningBalance,
	}
	if req.OpeningDate != nil {
		date, err := time.Parse("2006-01-02", *req.OpeningDate)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "openingDate must be YYYY-MM-DD")
			return
		}
		in.OpeningDate = &date
	}
	account, err := h.service.Create(r.Context(), in)
	if err != nil {
		h.logger.Warn("account create failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, account)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := internalShared.TenantFromContext(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusBadRequest, "Missing Tenant", "tenant context required")
		return
	}
	list, err := h.service.List(r.Context(), tenantID)
	if err != nil {
		h.logger.Error("account list failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"accounts": list})
}

type updateAccountRequest struct {
	Code     *string `json:"code"`
	Name     *string `json:"name"`
	Class    *string `json:"class"`
	ParentID *int64  `json:"parentId"`
	IsActive *bool   `json:"isActive"`
	TaxCode  *string `json:"taxCode"`
	Force    bool    `json:"force"`
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := internalShared.TenantFromContext(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusBadRequest, "Missing Tenant", "tenant context required")
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "account id must be numeric")
		return
	}
	var req updateAccountRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Malformed Body", err.Error())
		return
	}
	in := UpdateInput{
		ID:       id,
		TenantID: tenantID,
		Code:     req.Code,
		Name:     req.Name,
		ParentID: req.ParentID,
		IsActive: req.IsActive,
		TaxCode:  req.TaxCode,
		Force:    req.Force,
	}
	if req.Class != nil {
		class := Classification(*req.Class)
		in.Class = &class
	}
	account, err := h.service.Update(r.Context(), in)
	if err != nil {
		h.logger.Warn("account update failed", slog.Any("error", err), slog.Int64("id", id))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, account)
}

func (h *Handler) deactivate(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := internalShared.TenantFromContext(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusBadRequest, "Missing Tenant", "tenant context required")
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "account id must be numeric")
		return
	}
	force := r.URL.Query().Get("force") == "true"
	account, err := h.service.Deactivate(r.Context(), tenantID, id, force)
	if err != nil {
		h.logger.Warn("account deactivate failed", slog.Any("error", err), slog.Int64("id", id))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, account)
}

func (h *Handler) balance(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := internalShared.TenantFromContext(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusBadRequest, "Missing Tenant", "tenant context required")
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "account id must be numeric")
		return
	}
	asOf := time.Now()
	if raw := r.URL.Query().Get("asOf"); raw != "" {
		asOf, err = time.Parse("2006-01-02", raw)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "asOf must be YYYY-MM-DD")
			return
		}
	}
	amount, err := h.service.GetBalanceAsOf(r.Context(), tenantID, id, asOf)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"accountId": id,
		"asOf":      asOf.Format("2006-01-02"),
		"balance":   amount,
		"display":   view.Money(amount),
	})
}
