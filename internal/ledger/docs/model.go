// Package docs keeps the registry of outstanding source documents. The
// ledger itself only sees journal entries; collaborators register their
// invoices and bills here so aging reports have due dates and open balances
// to work from.
package docs

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/ledgerline/ledgerline/internal/ledger/journal"
)

var (
	ErrNotFound    = errors.New("docs: document not found")
	ErrOverSettled = errors.New("docs: settlement exceeds open balance")
)

// Document is one registered receivable or payable.
type Document struct {
	ID          uuid.UUID          `json:"id"`
	TenantID    uuid.UUID          `json:"tenantId"`
	Kind        journal.SourceKind `json:"kind"`
	Number      string             `json:"number"`
	Party       string             `json:"party"`
	IssueDate   time.Time          `json:"issueDate"`
	DueDate     *time.Time         `json:"dueDate,omitempty"`
	Total       float64            `json:"total"`
	OpenBalance float64            `json:"openBalance"`
	CreatedAt   time.Time          `json:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt"`
}

// RegisterInput captures a new document registration.
type RegisterInput struct {
	TenantID  uuid.UUID
	Kind      journal.SourceKind
	Number    string
	Party     string
	IssueDate time.Time
	DueDate   *time.Time
	Total     float64
}

// Validate checks the registration for structural problems.
func (in RegisterInput) Validate() error {
	if in.TenantID == uuid.Nil {
		return errors.New("docs: tenant required")
	}
	if !in.Kind.Valid() || in.Kind == journal.SourceManual {
		return errors.New("docs: kind must be a registrable document kind")
	}
	if in.Number == "" {
		return errors.New("docs: document number required")
	}
	if in.IssueDate.IsZero() {
		return errors.New("docs: issue date required")
	}
	if in.Total < 0 {
		return errors.New("docs: total must not be negative")
	}
	return nil
}

// SettleInput reduces a document's open balance after a payment entry posts.
type SettleInput struct {
	TenantID uuid.UUID
	ID       uuid.UUID
	Amount   float64
}
