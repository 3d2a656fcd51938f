package journal

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ledgerline/ledgerline/internal/ledger/shared"
	internalShared "github.com/ledgerline/ledgerline/internal/shared"
)

// RepositoryPort abstracts transactional repository behaviour.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	List(ctx context.Context, tenantID uuid.UUID) ([]Entry, error)
	Get(ctx context.Context, tenantID uuid.UUID, entryID int64) (Entry, error)
}

// AuditPort records ledger events for compliance.
type AuditPort interface {
	Record(ctx context.Context, log internalShared.AuditLog) error
}

// CachePort invalidates derived report caches after a write.
type CachePort interface {
	Bump(ctx context.Context) error
}

// MetricsPort counts posted entries.
type MetricsPort interface {
	EntryPosted(status string)
}

// Service coordinates the journal entry lifecycle: draft, post, reverse.
// It is the single gate through which all financial state changes pass.
type Service struct {
	repo    RepositoryPort
	audit   AuditPort
	cache   CachePort
	metrics MetricsPort
	now     func() time.Time
}

// NewService constructs the journal service.
func NewService(repo RepositoryPort, audit AuditPort, cache CachePort, metrics MetricsPort) *Service {
	return &Service{repo: repo, audit: audit, cache: cache, metrics: metrics, now: time.Now}
}

// WithNow overrides the clock for testing.
func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// CreateDraft validates and stores a new draft entry. Drafts do not affect
// balances and may be temporarily unbalanced to support incremental editing.
func (s *Service) CreateDraft(ctx context.Context, in DraftInput) (Entry, error) {
	if err := in.Validate(); err != nil {
		return Entry{}, err
	}
	var entry Entry
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		if err := ensurePostable(ctx, tx, in.TenantID, in.Lines); err != nil {
			return err
		}
		inserted, err := tx.InsertEntry(ctx, in, StatusDraft)
		if err != nil {
			return err
		}
		lines, err := tx.InsertLines(ctx, inserted.ID, in.Lines)
		if err != nil {
			return err
		}
		inserted.Lines = lines
		entry = inserted
		return nil
	})
	if err != nil {
		return Entry{}, err
	}
	s.record(ctx, "journal.draft", entry, nil)
	return entry, nil
}

// UpdateDraft replaces the header and lines of an existing draft.
func (s *Service) UpdateDraft(ctx context.Context, entryID int64, in DraftInput) (Entry, error) {
	if err := in.Validate(); err != nil {
		return Entry{}, err
	}
	var entry Entry
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		current, err := tx.GetEntryWithLines(ctx, in.TenantID, entryID)
		if err != nil {
			return err
		}
		if current.Status != StatusDraft {
			return shared.ErrInvalidStatus
		}
		if err := ensurePostable(ctx, tx, in.TenantID, in.Lines); err != nil {
			return err
		}
		current.Date = in.Date
		current.Description = in.Description
		current.Reference = in.Reference
		current.Source = in.Source
		if err := tx.UpdateDraftHeader(ctx, current); err != nil {
			return err
		}
		lines, err := tx.ReplaceLines(ctx, entryID, in.Lines)
		if err != nil {
			return err
		}
		current.Lines = lines
		entry = current
		return nil
	})
	if err != nil {
		return Entry{}, err
	}
	return entry, nil
}

// Post makes a draft permanent. The balance invariant is re-validated here,
// the per-tenant entry number is assigned, and the transition is atomic:
// either every line becomes effective or none do. Re-posting a posted or
// reversed entry fails with a state error, never silently succeeds.
func (s *Service) Post(ctx context.Context, tenantID uuid.UUID, entryID int64) (Entry, error) {
	var entry Entry
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		current, err := tx.GetEntryWithLines(ctx, tenantID, entryID)
		if err != nil {
			return err
		}
		switch current.Status {
		case StatusPosted:
			return shared.ErrAlreadyPosted
		case StatusReversed:
			return shared.ErrAlreadyReversed
		}
		if !current.Status.CanTransition(StatusPosted) {
			return shared.ErrInvalidStatus
		}
		debit, credit := Totals(current.Lines)
		if !Balanced(debit, credit) {
			return shared.ErrUnbalanced
		}
		if err := ensurePostableLines(ctx, tx, tenantID, current.Lines); err != nil {
			return err
		}
		number, err := tx.NextEntryNumber(ctx, tenantID)
		if err != nil {
			return err
		}
		postedAt := s.now()
		if err := tx.MarkPosted(ctx, tenantID, entryID, number, postedAt); err != nil {
			return err
		}
		current.Status = StatusPosted
		current.Number = &number
		current.PostedAt = &postedAt
		entry = current
		return nil
	})
	if err != nil {
		return Entry{}, err
	}
	s.bump(ctx)
	if s.metrics != nil {
		s.metrics.EntryPosted(string(StatusPosted))
	}
	s.record(ctx, "journal.post", entry, map[string]any{"number": deref(entry.Number)})
	return entry, nil
}

// Reverse cancels a posted entry by appending a mirrored entry. The original
// is never mutated beyond its status flip; both records coexist in history.
func (s *Service) Reverse(ctx context.Context, in ReverseInput) (Entry, error) {
	if in.EntryID == 0 {
		return Entry{}, errors.New("ledger: entry id required")
	}
	var reversal Entry
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		original, err := tx.GetEntryWithLines(ctx, in.TenantID, in.EntryID)
		if err != nil {
			return err
		}
		switch original.Status {
		case StatusDraft:
			return shared.ErrNotPosted
		case StatusReversed:
			return shared.ErrAlreadyReversed
		}
		if !original.Status.CanTransition(StatusReversed) {
			return shared.ErrInvalidStatus
		}
		reversalDate := in.ReversalDate
		if reversalDate.IsZero() {
			reversalDate = original.Date
		}
		if reversalDate.Before(original.Date) {
			return shared.ErrInvalidDate
		}
		draft := DraftInput{
			TenantID:    in.TenantID,
			Date:        reversalDate,
			Description: defaultReversalDescription(in.Description, original),
			Reference:   original.Reference,
			Source:      original.Source,
			Lines:       mirrorLines(original.Lines),
		}
		inserted, err := tx.InsertEntry(ctx, draft, StatusDraft)
		if err != nil {
			return err
		}
		lines, err := tx.InsertLines(ctx, inserted.ID, draft.Lines)
		if err != nil {
			return err
		}
		number, err := tx.NextEntryNumber(ctx, in.TenantID)
		if err != nil {
			return err
		}
		postedAt := s.now()
		if err := tx.MarkPosted(ctx, in.TenantID, inserted.ID, number, postedAt); err != nil {
			return err
		}
		if err := tx.LinkReversal(ctx, in.TenantID, inserted.ID, original.ID); err != nil {
			return err
		}
		if err := tx.MarkReversed(ctx, in.TenantID, original.ID, inserted.ID); err != nil {
			return err
		}
		inserted.Status = StatusPosted
		inserted.Number = &number
		inserted.PostedAt = &postedAt
		inserted.ReversesID = &original.ID
		inserted.Lines = lines
		reversal = inserted
		return nil
	})
	if err != nil {
		return Entry{}, err
	}
	s.bump(ctx)
	if s.metrics != nil {
		s.metrics.EntryPosted(string(StatusReversed))
	}
	s.record(ctx, "journal.reverse", reversal, map[string]any{
		"original_id": in.EntryID,
		"number":      deref(reversal.Number),
	})
	return reversal, nil
}

// Delete removes a draft. Posted financial history is never deleted.
func (s *Service) Delete(ctx context.Context, tenantID uuid.UUID, entryID int64) error {
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		current, err := tx.GetEntryWithLines(ctx, tenantID, entryID)
		if err != nil {
			return err
		}
		if current.Status != StatusDraft {
			return shared.ErrInvalidStatus
		}
		return tx.DeleteEntry(ctx, tenantID, entryID)
	})
	if err != nil {
		return err
	}
	return nil
}

// List returns the tenant's entries, most recent first.
func (s *Service) List(ctx context.Context, tenantID uuid.UUID) ([]Entry, error) {
	return s.repo.List(ctx, tenantID)
}

// Get returns a single entry with lines.
func (s *Service) Get(ctx context.Context, tenantID uuid.UUID, entryID int64) (Entry, error) {
	return s.repo.Get(ctx, tenantID, entryID)
}

func ensurePostable(ctx context.Context, tx TxRepository, tenantID uuid.UUID, lines []LineInput) error {
	ids := make([]int64, 0, len(lines))
	for _, line := range lines {
		ids = append(ids, line.AccountID)
	}
	return checkAccounts(ctx, tx, tenantID, ids)
}

func ensurePostableLines(ctx context.Context, tx TxRepository, tenantID uuid.UUID, lines []Line) error {
	ids := make([]int64, 0, len(lines))
	for _, line := range lines {
		ids = append(ids, line.AccountID)
	}
	return checkAccounts(ctx, tx, tenantID, ids)
}

func checkAccounts(ctx context.Context, tx TxRepository, tenantID uuid.UUID, ids []int64) error {
	metas, err := tx.AccountsMeta(ctx, tenantID, ids)
	if err != nil {
		return err
	}
	for _, id := range ids {
		meta, ok := metas[id]
		if !ok {
			return shared.ErrAccountNotFound
		}
		if !meta.IsActive {
			return shared.ErrAccountInactive
		}
		if meta.IsHeader {
			return shared.ErrHeaderPosting
		}
	}
	return nil
}

// mirrorLines swaps debit and credit per line, keeping accounts and amounts.
func mirrorLines(lines []Line) []LineInput {
	out := make([]LineInput, 0, len(lines))
	for _, line := range lines {
		out = append(out, LineInput{
			AccountID: line.AccountID,
			Debit:     line.Credit,
			Credit:    line.Debit,
			TaxCode:   line.TaxCode,
			TaxAmount: -line.TaxAmount,
			Memo:      line.Memo,
		})
	}
	return out
}

func defaultReversalDescription(desc string, original Entry) string {
	if desc != "" {
		return desc
	}
	if original.Number != nil {
		return fmt.Sprintf("Reversal of entry %d", *original.Number)
	}
	return "Reversal"
}

func (s *Service) bump(ctx context.Context) {
	if s.cache != nil {
		_ = s.cache.Bump(ctx)
	}
}

func (s *Service) record(ctx context.Context, action string, entry Entry, meta map[string]any) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, internalShared.AuditLog{
		TenantID: entry.TenantID,
		Action:   action,
		Entity:   "journal_entry",
		EntityID: fmt.Sprintf("%d", entry.ID),
		Meta:     meta,
		At:       s.now(),
	})
}

func deref(v *int64) int64 {
	if v == nil {
		return 0
	}
	return *v
}
