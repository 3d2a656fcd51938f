package accounts

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/ledgerline/ledgerline/internal/ledger/shared"
)

// memRegistry is an in-memory RepositoryPort/TxRepository double.
type memRegistry struct {
	accounts map[int64]*Account
	posted   map[int64]bool
	nextID   int64
}

func newMemRegistry() *memRegistry {
	return &memRegistry{
		accounts: make(map[int64]*Account),
		posted:   make(map[int64]bool),
		nextID:   1,
	}
}

func (m *memRegistry) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return fn(ctx, m)
}

func (m *memRegistry) List(ctx context.Context, tenantID uuid.UUID) ([]Account, error) {
	return m.ListAccounts(ctx, tenantID)
}

func (m *memRegistry) GetAccount(ctx context.Context, tenantID uuid.UUID, id int64) (Account, error) {
	account, ok := m.accounts[id]
	if !ok || account.TenantID != tenantID {
		return Account{}, shared.ErrAccountNotFound
	}
	return *account, nil
}

func (m *memRegistry) ListAccounts(ctx context.Context, tenantID uuid.UUID) ([]Account, error) {
	var out []Account
	for _, account := range m.accounts {
		if account.TenantID == tenantID {
			out = append(out, *account)
		}
	}
	return out, nil
}

func (m *memRegistry) InsertAccount(ctx context.Context, in CreateInput) (Account, error) {
	for _, existing := range m.accounts {
		if existing.TenantID == in.TenantID && existing.Code == in.Code {
			return Account{}, shared.ErrDuplicateCode
		}
	}
	group := in.ExpenseGroup
	if in.Class == ClassExpense && group == "" {
		group = ExpenseOperating
	}
	account := Account{
		ID:             m.nextID,
		TenantID:       in.TenantID,
		Code:           in.Code,
		Name:           in.Name,
		Class:          in.Class,
		ParentID:       in.ParentID,
		IsHeader:       in.IsHeader,
		IsActive:       true,
		ExpenseGroup:   group,
		TaxCode:        in.TaxCode,
		OpeningBalance: in.OpeningBalance,
		OpeningDate:    in.OpeningDate,
	}
	m.nextID++
	stored := account
	m.accounts[account.ID] = &stored
	return account, nil
}

func (m *memRegistry) UpdateAccount(ctx context.Context, account Account) error {
	stored, ok := m.accounts[account.ID]
	if !ok {
		return shared.ErrAccountNotFound
	}
	*stored = account
	return nil
}

func (m *memRegistry) HasPostedLines(ctx context.Context, tenantID uuid.UUID, accountID int64) (bool, error) {
	return m.posted[accountID], nil
}

// fixedBalances returns the configured amount for every account.
type fixedBalances struct {
	amount float64
}

func (f fixedBalances) AccountBalance(ctx context.Context, tenantID uuid.UUID, accountID int64, asOf time.Time) (float64, error) {
	return f.amount, nil
}

func newRegistryService(balance float64) (*Service, *memRegistry) {
	repo := newMemRegistry()
	svc := NewService(repo, fixedBalances{amount: balance}, nil)
	svc.WithNow(func() time.Time { return time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC) })
	return svc, repo
}

func TestCreateValidation(t *testing.T) {
	svc, _ := newRegistryService(0)
	tenantID := uuid.New()
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateInput{TenantID: tenantID, Name: "Cash", Class: ClassAsset})
	require.Error(t, err, "code required")

	_, err = svc.Create(ctx, CreateInput{TenantID: tenantID, Code: "1100", Class: ClassAsset})
	require.Error(t, err, "name required")

	_, err = svc.Create(ctx, CreateInput{TenantID: tenantID, Code: "1100", Name: "Cash", Class: "BANK"})
	require.Error(t, err, "unknown classification")

	_, err = svc.Create(ctx, CreateInput{
		TenantID: tenantID, Code: "1100", Name: "Cash", Class: ClassAsset, ExpenseGroup: ExpenseCOGS,
	})
	require.Error(t, err, "expense group on non-expense account")

	_, err = svc.Create(ctx, CreateInput{
		TenantID: tenantID, Code: "1100", Name: "Cash", Class: ClassAsset, OpeningBalance: 100,
	})
	require.Error(t, err, "opening balance without opening date")
}

func TestCreateDerivesDefaults(t *testing.T) {
	svc, _ := newRegistryService(0)
	tenantID := uuid.New()

	account, err := svc.Create(context.Background(), CreateInput{
		TenantID: tenantID, Code: "6000", Name: "Rent", Class: ClassExpense,
	})
	require.NoError(t, err)
	require.True(t, account.IsActive)
	require.Equal(t, ExpenseOperating, account.ExpenseGroup)
	require.Equal(t, SideDebit, account.Side())
}

func TestCreateParentMustBeHeader(t *testing.T) {
	svc, _ := newRegistryService(0)
	tenantID := uuid.New()
	ctx := context.Background()

	leaf, err := svc.Create(ctx, CreateInput{TenantID: tenantID, Code: "1100", Name: "Cash", Class: ClassAsset})
	require.NoError(t, err)

	_, err = svc.Create(ctx, CreateInput{
		TenantID: tenantID, Code: "1110", Name: "Petty Cash", Class: ClassAsset, ParentID: &leaf.ID,
	})
	require.ErrorIs(t, err, shared.ErrInvalidParent)

	missing := int64(999)
	_, err = svc.Create(ctx, CreateInput{
		TenantID: tenantID, Code: "1120", Name: "Bank", Class: ClassAsset, ParentID: &missing,
	})
	require.ErrorIs(t, err, shared.ErrInvalidParent)

	header, err := svc.Create(ctx, CreateInput{
		TenantID: tenantID, Code: "1000", Name: "Assets", Class: ClassAsset, IsHeader: true,
	})
	require.NoError(t, err)

	child, err := svc.Create(ctx, CreateInput{
		TenantID: tenantID, Code: "1200", Name: "AR", Class: ClassAsset, ParentID: &header.ID,
	})
	require.NoError(t, err)
	require.Equal(t, header.ID, *child.ParentID)
}

func TestUpdateImmutableAfterPosting(t *testing.T) {
	svc, repo := newRegistryService(0)
	tenantID := uuid.New()
	ctx := context.Background()

	account, err := svc.Create(ctx, CreateInput{TenantID: tenantID, Code: "1100", Name: "Cash", Class: ClassAsset})
	require.NoError(t, err)
	repo.posted[account.ID] = true

	newCode := "1199"
	_, err = svc.Update(ctx, UpdateInput{ID: account.ID, TenantID: tenantID, Code: &newCode})
	require.ErrorIs(t, err, shared.ErrImmutableField)

	// Changing the class is rejected once it would flip the normal side.
	liability := ClassLiability
	_, err = svc.Update(ctx, UpdateInput{ID: account.ID, TenantID: tenantID, Class: &liability})
	require.ErrorIs(t, err, shared.ErrImmutableField)

	// Same-side reclassification stays allowed.
	expense := ClassExpense
	updated, err := svc.Update(ctx, UpdateInput{ID: account.ID, TenantID: tenantID, Class: &expense})
	require.NoError(t, err)
	require.Equal(t, ClassExpense, updated.Class)

	// Renaming never hits the immutability rules.
	name := "Cash on Hand"
	updated, err = svc.Update(ctx, UpdateInput{ID: account.ID, TenantID: tenantID, Name: &name})
	require.NoError(t, err)
	require.Equal(t, "Cash on Hand", updated.Name)
}

func TestUpdateRejectsParentCycle(t *testing.T) {
	svc, repo := newRegistryService(0)
	tenantID := uuid.New()
	ctx := context.Background()

	top, err := svc.Create(ctx, CreateInput{TenantID: tenantID, Code: "1000", Name: "Assets", Class: ClassAsset, IsHeader: true})
	require.NoError(t, err)
	mid, err := svc.Create(ctx, CreateInput{TenantID: tenantID, Code: "1100", Name: "Current", Class: ClassAsset, IsHeader: true, ParentID: &top.ID})
	require.NoError(t, err)

	// Reparenting the top under its own descendant closes a loop.
	_, err = svc.Update(ctx, UpdateInput{ID: top.ID, TenantID: tenantID, ParentID: &mid.ID})
	require.ErrorIs(t, err, shared.ErrInvalidParent)

	// Self-reference is the degenerate cycle.
	_, err = svc.Update(ctx, UpdateInput{ID: top.ID, TenantID: tenantID, ParentID: &top.ID})
	require.ErrorIs(t, err, shared.ErrInvalidParent)

	require.True(t, repo.accounts[top.ID].ParentID == nil, "failed updates leave the chart untouched")
}

func TestUpdateParentMustBeHeader(t *testing.T) {
	svc, repo := newRegistryService(0)
	tenantID := uuid.New()
	ctx := context.Background()

	leaf, err := svc.Create(ctx, CreateInput{TenantID: tenantID, Code: "1100", Name: "Cash", Class: ClassAsset})
	require.NoError(t, err)
	other, err := svc.Create(ctx, CreateInput{TenantID: tenantID, Code: "1200", Name: "AR", Class: ClassAsset})
	require.NoError(t, err)

	// Reparenting follows the same rule as creation: only headers hold children.
	_, err = svc.Update(ctx, UpdateInput{ID: other.ID, TenantID: tenantID, ParentID: &leaf.ID})
	require.ErrorIs(t, err, shared.ErrInvalidParent)

	missing := int64(999)
	_, err = svc.Update(ctx, UpdateInput{ID: other.ID, TenantID: tenantID, ParentID: &missing})
	require.ErrorIs(t, err, shared.ErrInvalidParent)
	require.Nil(t, repo.accounts[other.ID].ParentID)

	header, err := svc.Create(ctx, CreateInput{TenantID: tenantID, Code: "1000", Name: "Assets", Class: ClassAsset, IsHeader: true})
	require.NoError(t, err)

	moved, err := svc.Update(ctx, UpdateInput{ID: other.ID, TenantID: tenantID, ParentID: &header.ID})
	require.NoError(t, err)
	require.Equal(t, header.ID, *moved.ParentID)
}

func TestDeactivateRequiresZeroBalance(t *testing.T) {
	svc, _ := newRegistryService(150)
	tenantID := uuid.New()
	ctx := context.Background()

	account, err := svc.Create(ctx, CreateInput{TenantID: tenantID, Code: "1100", Name: "Cash", Class: ClassAsset})
	require.NoError(t, err)

	_, err = svc.Deactivate(ctx, tenantID, account.ID, false)
	require.ErrorIs(t, err, shared.ErrAccountInUse)

	deactivated, err := svc.Deactivate(ctx, tenantID, account.ID, true)
	require.NoError(t, err)
	require.False(t, deactivated.IsActive)
}

func TestDeactivateZeroBalanceSucceeds(t *testing.T) {
	svc, _ := newRegistryService(0)
	tenantID := uuid.New()
	ctx := context.Background()

	account, err := svc.Create(ctx, CreateInput{TenantID: tenantID, Code: "1100", Name: "Cash", Class: ClassAsset})
	require.NoError(t, err)

	deactivated, err := svc.Deactivate(ctx, tenantID, account.ID, false)
	require.NoError(t, err)
	require.False(t, deactivated.IsActive)
}

func TestDuplicateCodeRejected(t *testing.T) {
	svc, _ := newRegistryService(0)
	tenantID := uuid.New()
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateInput{TenantID: tenantID, Code: "1100", Name: "Cash", Class: ClassAsset})
	require.NoError(t, err)
	_, err = svc.Create(ctx, CreateInput{TenantID: tenantID, Code: "1100", Name: "Cash Again", Class: ClassAsset})
	require.ErrorIs(t, err, shared.ErrDuplicateCode)
}

func TestNormalSideDerivation(t *testing.T) {
	require.Equal(t, SideDebit, ClassAsset.NormalSide())
	require.Equal(t, SideDebit, ClassExpense.NormalSide())
	require.Equal(t, SideCredit, ClassLiability.NormalSide())
	require.Equal(t, SideCredit, ClassEquity.NormalSide())
	require.Equal(t, SideCredit, ClassRevenue.NormalSide())
}
