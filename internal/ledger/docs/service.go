package docs

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/ledgerline/ledgerline/internal/ledger/journal"
	internalShared "github.com/ledgerline/ledgerline/internal/shared"
)

// RepositoryPort abstracts registry persistence.
type RepositoryPort interface {
	Insert(ctx context.Context, in RegisterInput) (Document, error)
	Get(ctx context.Context, tenantID, id uuid.UUID) (Document, error)
	ApplySettlement(ctx context.Context, in SettleInput) (Document, error)
	ListOutstanding(ctx context.Context, tenantID uuid.UUID, kind journal.SourceKind) ([]Document, error)
}

// AuditPort records registry changes for compliance.
type AuditPort interface {
	Record(ctx context.Context, log internalShared.AuditLog) error
}

// Service owns the source-document registry.
type Service struct {
	repo  RepositoryPort
	audit AuditPort
	now   func() time.Time
}

// NewService constructs the registry service.
func NewService(repo RepositoryPort, audit AuditPort) *Service {
	return &Service{repo: repo, audit: audit, now: time.Now}
}

// WithNow overrides the clock for testing.
func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// Register records a new outstanding document. The open balance starts at the
// document total; settlements reduce it as payments post.
func (s *Service) Register(ctx context.Context, in RegisterInput) (Document, error) {
	if err := in.Validate(); err != nil {
		return Document{}, err
	}
	doc, err := s.repo.Insert(ctx, in)
	if err != nil {
		return Document{}, err
	}
	s.recordAudit(ctx, doc, "docs.register")
	return doc, nil
}

// Get fetches one document.
func (s *Service) Get(ctx context.Context, tenantID, id uuid.UUID) (Document, error) {
	return s.repo.Get(ctx, tenantID, id)
}

// Settle reduces a document's open balance after the matching payment entry
// has been posted. Settling past zero is rejected, never clamped.
func (s *Service) Settle(ctx context.Context, in SettleInput) (Document, error) {
	if in.Amount <= 0 {
		return Document{}, errors.New("docs: settlement amount must be positive")
	}
	doc, err := s.repo.ApplySettlement(ctx, in)
	if err != nil {
		return Document{}, err
	}
	s.recordAudit(ctx, doc, "docs.settle")
	return doc, nil
}

// Outstanding lists documents of a kind that still carry an open balance.
func (s *Service) Outstanding(ctx context.Context, tenantID uuid.UUID, kind journal.SourceKind) ([]Document, error) {
	if !kind.Valid() || kind == journal.SourceManual {
		return nil, errors.New("docs: kind must be a registrable document kind")
	}
	return s.repo.ListOutstanding(ctx, tenantID, kind)
}

func (s *Service) recordAudit(ctx context.Context, doc Document, action string) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, internalShared.AuditLog{
		TenantID: doc.TenantID,
		Action:   action,
		Entity:   "source_document",
		EntityID: doc.ID.String(),
		Meta:     map[string]any{"kind": string(doc.Kind), "number": doc.Number, "openBalance": doc.OpenBalance},
		At:       s.now(),
	})
}
