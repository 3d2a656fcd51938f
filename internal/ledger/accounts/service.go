package accounts

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ledgerline/ledgerline/internal/ledger/shared"
	internalShared "github.com/ledgerline/ledgerline/internal/shared"
)

// RepositoryPort abstracts transactional repository behaviour.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	List(ctx context.Context, tenantID uuid.UUID) ([]Account, error)
}

// BalancePort reads computed balances; the registry never computes them itself.
type BalancePort interface {
	AccountBalance(ctx context.Context, tenantID uuid.UUID, accountID int64, asOf time.Time) (float64, error)
}

// AuditPort records registry changes for compliance.
type AuditPort interface {
	Record(ctx context.Context, log internalShared.AuditLog) error
}

// Service owns the chart of accounts.
type Service struct {
	repo     RepositoryPort
	balances BalancePort
	audit    AuditPort
	now      func() time.Time
}

// NewService constructs the account registry service.
func NewService(repo RepositoryPort, balances BalancePort, audit AuditPort) *Service {
	return &Service{repo: repo, balances: balances, audit: audit, now: time.Now}
}

// WithNow overrides the clock for testing.
func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// Create validates and persists a new account. The normal balance side is
// derived from the classification and never accepted as input.
func (s *Service) Create(ctx context.Context, in CreateInput) (Account, error) {
	if err := validateCreate(in); err != nil {
		return Account{}, err
	}
	var account Account
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		if in.ParentID != nil {
			parent, err := tx.GetAccount(ctx, in.TenantID, *in.ParentID)
			if err != nil {
				if errors.Is(err, shared.ErrAccountNotFound) {
					return shared.ErrInvalidParent
				}
				return err
			}
			if !parent.IsHeader {
				return shared.ErrInvalidParent
			}
		}
		inserted, err := tx.InsertAccount(ctx, in)
		if err != nil {
			return err
		}
		account = inserted
		return nil
	})
	if err != nil {
		return Account{}, err
	}
	s.record(ctx, "account.create", account, map[string]any{"code": account.Code})
	return account, nil
}

// Update applies a partial mutation under the registry's immutability rules.
func (s *Service) Update(ctx context.Context, in UpdateInput) (Account, error) {
	if in.ID == 0 {
		return Account{}, errors.New("ledger: account id required")
	}
	var account Account
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		current, err := tx.GetAccount(ctx, in.TenantID, in.ID)
		if err != nil {
			return err
		}
		posted, err := tx.HasPostedLines(ctx, in.TenantID, in.ID)
		if err != nil {
			return err
		}
		if posted {
			if in.Code != nil && *in.Code != current.Code {
				return shared.ErrImmutableField
			}
			if in.Class != nil && in.Class.NormalSide() != current.Side() {
				return shared.ErrImmutableField
			}
		}
		next := current
		if in.Code != nil {
			next.Code = strings.TrimSpace(*in.Code)
		}
		if in.Name != nil {
			next.Name = strings.TrimSpace(*in.Name)
		}
		if in.Class != nil {
			if !in.Class.Valid() {
				return fmt.Errorf("ledger: unknown classification %q", *in.Class)
			}
			next.Class = *in.Class
		}
		if in.ParentID != nil {
			parent, err := tx.GetAccount(ctx, in.TenantID, *in.ParentID)
			if err != nil {
				if errors.Is(err, shared.ErrAccountNotFound) {
					return shared.ErrInvalidParent
				}
				return err
			}
			if !parent.IsHeader {
				return shared.ErrInvalidParent
			}
			next.ParentID = in.ParentID
			if err := s.ensureNoCycle(ctx, tx, next); err != nil {
				return err
			}
		}
		if in.TaxCode != nil {
			next.TaxCode = in.TaxCode
		}
		if in.IsActive != nil {
			if !*in.IsActive && current.IsActive && !in.Force {
				balance, err := s.balances.AccountBalance(ctx, in.TenantID, in.ID, s.now())
				if err != nil {
					return err
				}
				if balance != 0 {
					return shared.ErrAccountInUse
				}
			}
			next.IsActive = *in.IsActive
		}
		if err := tx.UpdateAccount(ctx, next); err != nil {
			return err
		}
		account = next
		return nil
	})
	if err != nil {
		return Account{}, err
	}
	s.record(ctx, "account.update", account, nil)
	return account, nil
}

// Deactivate soft-deletes an account. Referenced accounts are never removed.
func (s *Service) Deactivate(ctx context.Context, tenantID uuid.UUID, id int64, force bool) (Account, error) {
	inactive := false
	return s.Update(ctx, UpdateInput{ID: id, TenantID: tenantID, IsActive: &inactive, Force: force})
}

// List returns the tenant's chart of accounts ordered by code.
func (s *Service) List(ctx context.Context, tenantID uuid.UUID) ([]Account, error) {
	return s.repo.List(ctx, tenantID)
}

// GetBalanceAsOf delegates to the balance engine. Pure read.
func (s *Service) GetBalanceAsOf(ctx context.Context, tenantID uuid.UUID, accountID int64, asOf time.Time) (float64, error) {
	return s.balances.AccountBalance(ctx, tenantID, accountID, asOf)
}

// ensureNoCycle walks the parent chain of the proposed account and rejects
// self-reference or any loop back to the account itself.
func (s *Service) ensureNoCycle(ctx context.Context, tx TxRepository, account Account) error {
	seen := map[int64]bool{account.ID: true}
	cursor := account.ParentID
	for cursor != nil {
		if seen[*cursor] {
			return shared.ErrInvalidParent
		}
		seen[*cursor] = true
		parent, err := tx.GetAccount(ctx, account.TenantID, *cursor)
		if err != nil {
			if errors.Is(err, shared.ErrAccountNotFound) {
				return shared.ErrInvalidParent
			}
			return err
		}
		cursor = parent.ParentID
	}
	return nil
}

func (s *Service) record(ctx context.Context, action string, account Account, meta map[string]any) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, internalShared.AuditLog{
		TenantID: account.TenantID,
		Action:   action,
		Entity:   "account",
		EntityID: fmt.Sprintf("%d", account.ID),
		Meta:     meta,
		At:       s.now(),
	})
}

func validateCreate(in CreateInput) error {
	if in.TenantID == uuid.Nil {
		return errors.New("ledger: tenant required")
	}
	if strings.TrimSpace(in.Code) == "" {
		return errors.New("ledger: account code required")
	}
	if strings.TrimSpace(in.Name) == "" {
		return errors.New("ledger: account name required")
	}
	if !in.Class.Valid() {
		return fmt.Errorf("ledger: unknown classification %q", in.Class)
	}
	if in.ExpenseGroup != "" && in.Class != ClassExpense {
		return errors.New("ledger: expense group only applies to expense accounts")
	}
	if in.OpeningBalance != 0 && in.OpeningDate == nil {
		return errors.New("ledger: opening balance requires an opening date")
	}
	return nil
}
