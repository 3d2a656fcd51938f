package aging

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ledgerline/ledgerline/internal/ledger/docs"
	"github.com/ledgerline/ledgerline/internal/ledger/journal"
)

// DocumentPort reads outstanding documents from the registry.
type DocumentPort interface {
	Outstanding(ctx context.Context, tenantID uuid.UUID, kind journal.SourceKind) ([]docs.Document, error)
}

// Service derives receivable and payable aging from the registry.
type Service struct {
	documents DocumentPort
	now       func() time.Time
}

// NewService constructs the aging service.
func NewService(documents DocumentPort) *Service {
	return &Service{documents: documents, now: time.Now}
}

// WithNow overrides the clock for testing.
func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// Receivables ages outstanding invoices as of referenceDate.
func (s *Service) Receivables(ctx context.Context, tenantID uuid.UUID, referenceDate time.Time) (Report, error) {
	return s.report(ctx, tenantID, journal.SourceInvoice, referenceDate)
}

// Payables ages outstanding bills as of referenceDate.
func (s *Service) Payables(ctx context.Context, tenantID uuid.UUID, referenceDate time.Time) (Report, error) {
	return s.report(ctx, tenantID, journal.SourceBill, referenceDate)
}

func (s *Service) report(ctx context.Context, tenantID uuid.UUID, kind journal.SourceKind, referenceDate time.Time) (Report, error) {
	if referenceDate.IsZero() {
		referenceDate = s.now()
	}
	outstanding, err := s.documents.Outstanding(ctx, tenantID, kind)
	if err != nil {
		return Report{}, err
	}
	items := make([]Item, 0, len(outstanding))
	for _, doc := range outstanding {
		items = append(items, Item{DueDate: doc.DueDate, Amount: doc.OpenBalance})
	}
	return Build(items, referenceDate), nil
}
