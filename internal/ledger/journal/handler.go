package journal

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/ledgerline/ledgerline/internal/platform/httpx"
	internalShared "github.com/ledgerline/ledgerline/internal/shared"
)

// Handler wires HTTP endpoints for the journal entry lifecycle.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

// MountRoutes registers journal routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/entries", h.list)
	r.Post("/entries", h.createDraft)
	r.Get("/entries/{id}", h.show)
	r.Put("/entries/{id}", h.updateDraft)
	r.Delete("/entries/{id}", h.deleteDraft)
	r.Post("/entries/{id}/post", h.post)
	r.Post("/entries/{id}/reverse", h.reverse)
}

type lineRequest struct {
	AccountID int64   `json:"accountId" validate:"required"`
	Debit     float64 `json:"debit"`
	Credit    float64 `json:"credit"`
	TaxCode   *string `json:"taxCode"`
	TaxAmount float64 `json:"taxAmount"`
	Memo      string  `json:"memo"`
}

type draftRequest struct {
	Date        string        `json:"date" validate:"required"`
	Description string        `json:"description"`
	Reference   string        `json:"reference"`
	SourceKind  string        `json:"sourceKind"`
	SourceID    string        `json:"sourceId"`
	Lines       []lineRequest `json:"lines" validate:"required,min=2"`
}

func (h *Handler) decodeDraft(r *http.Request) (DraftInput, error) {
	tenantID, _ := internalShared.TenantFromContext(r.Context())
	var req draftRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		return DraftInput{}, err
	}
	if err := h.validator.Struct(req); err != nil {
		return DraftInput{}, err
	}
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return DraftInput{}, err
	}
	in := DraftInput{
		TenantID:    tenantID,
		Date:        date,
		Description: req.Description,
		Reference:   req.Reference,
	}
	if req.SourceKind != "" {
		sourceID, err := uuid.Parse(req.SourceID)
		if err != nil {
			return DraftInput{}, err
		}
		in.Source = &SourceRef{Kind: SourceKind(req.SourceKind), ID: sourceID}
	}
	for _, line := range req.Lines {
		in.Lines = append(in.Lines, LineInput{
			AccountID: line.AccountID,
			Debit:     line.Debit,
			Credit:    line.Credit,
			TaxCode:   line.TaxCode,
			TaxAmount: line.TaxAmount,
			Memo:      line.Memo,
		})
	}
	return in, nil
}

func (h *Handler) createDraft(w http.ResponseWriter, r *http.Request) {
	in, err := h.decodeDraft(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	entry, err := h.service.CreateDraft(r.Context(), in)
	if err != nil {
		h.logger.Warn("draft create failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, entry)
}

func (h *Handler) updateDraft(w http.ResponseWriter, r *http.Request) {
	id, err := entryID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	in, err := h.decodeDraft(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	entry, err := h.service.UpdateDraft(r.Context(), id, in)
	if err != nil {
		h.logger.Warn("draft update failed", slog.Any("error", err), slog.Int64("id", id))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, entry)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := internalShared.TenantFromContext(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusBadRequest, "Missing Tenant", "tenant context required")
		return
	}
	entries, err := h.service.List(r.Context(), tenantID)
	if err != nil {
		h.logger.Error("entry list failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"entries": entries})
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	tenantID, _ := internalShared.TenantFromContext(r.Context())
	id, err := entryID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	entry, err := h.service.Get(r.Context(), tenantID, id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, entry)
}

func (h *Handler) post(w http.ResponseWriter, r *http.Request) {
	tenantID, _ := internalShared.TenantFromContext(r.Context())
	id, err := entryID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	entry, err := h.service.Post(r.Context(), tenantID, id)
	if err != nil {
		h.logger.Warn("entry post failed", slog.Any("error", err), slog.Int64("id", id))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, entry)
}

type reverseRequest struct {
	ReversalDate string `json:"reversalDate"`
	Description  string `json:"description"`
}

func (h *Handler) reverse(w http.ResponseWriter, r *http.Request) {
	tenantID, _ := internalShared.TenantFromContext(r.Context())
	id, err := entryID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	var req reverseRequest
	if err := httpx.DecodeJSON(r, &req); err != nil && !errors.Is(err, io.EOF) {
		httpx.Problem(w, http.StatusBadRequest, "Malformed Body", err.Error())
		return
	}
	in := ReverseInput{TenantID: tenantID, EntryID: id, Description: req.Description}
	if req.ReversalDate != "" {
		date, err := time.Parse("2006-01-02", req.ReversalDate)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "reversalDate must be YYYY-MM-DD")
			return
		}
		in.ReversalDate = date
	}
	reversal, err := h.service.Reverse(r.Context(), in)
	if err != nil {
		h.logger.Warn("entry reverse failed", slog.Any("error", err), slog.Int64("id", id))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, reversal)
}

func (h *Handler) deleteDraft(w http.ResponseWriter, r *http.Request) {
	tenantID, _ := internalShared.TenantFromContext(r.Context())
	id, err := entryID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	if err := h.service.Delete(r.Context(), tenantID, id); err != nil {
		h.logger.Warn("draft delete failed", slog.Any("error", err), slog.Int64("id", id))
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func entryID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}
