package balance

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/ledgerline/ledgerline/internal/ledger/accounts"
	"github.com/ledgerline/ledgerline/internal/ledger/shared"
)

type fakeRepo struct {
	asOf    []Activity
	between []Activity
}

func (f *fakeRepo) ActivityAsOf(ctx context.Context, tenantID uuid.UUID, asOf time.Time) ([]Activity, error) {
	return f.asOf, nil
}

func (f *fakeRepo) ActivityBetween(ctx context.Context, tenantID uuid.UUID, start, end time.Time) ([]Activity, error) {
	return f.between, nil
}

func account(id int64, code string, class accounts.Classification) accounts.Account {
	return accounts.Account{ID: id, Code: code, Name: code, Class: class, IsActive: true}
}

func TestBalancesOrientToNormalSide(t *testing.T) {
	// A 1000 sale on credit: AR debited, revenue credited. Both balances
	// come out positive because each sits on its class's normal side.
	repo := &fakeRepo{asOf: []Activity{
		{Account: account(1, "1200", accounts.ClassAsset), Debit: 1000},
		{Account: account(2, "4000", accounts.ClassRevenue), Credit: 1000},
	}}
	svc := NewService(repo)

	balances, err := svc.Balances(context.Background(), uuid.New(), time.Now())
	require.NoError(t, err)
	require.Len(t, balances, 2)

	byID := map[int64]float64{}
	for _, b := range balances {
		byID[b.Account.ID] = b.Amount
	}
	require.Equal(t, 1000.0, byID[1])
	require.Equal(t, 1000.0, byID[2])
}

func TestBalancesNegativeWhenOppositeSide(t *testing.T) {
	// Credit activity on an asset account drives its oriented balance negative.
	repo := &fakeRepo{asOf: []Activity{
		{Account: account(1, "1100", accounts.ClassAsset), Credit: 250},
	}}
	svc := NewService(repo)

	balances, err := svc.Balances(context.Background(), uuid.New(), time.Now())
	require.NoError(t, err)
	require.Equal(t, -250.0, balances[0].Amount)
}

func TestHeaderRollsUpDescendants(t *testing.T) {
	rootID := int64(1)
	midID := int64(2)

	root := account(rootID, "1000", accounts.ClassAsset)
	root.IsHeader = true
	mid := account(midID, "1100", accounts.ClassAsset)
	mid.IsHeader = true
	mid.ParentID = &rootID
	leafA := account(3, "1110", accounts.ClassAsset)
	leafA.ParentID = &midID
	leafB := account(4, "1120", accounts.ClassAsset)
	leafB.ParentID = &midID

	repo := &fakeRepo{asOf: []Activity{
		{Account: root},
		{Account: mid},
		{Account: leafA, Debit: 300},
		{Account: leafB, Debit: 200, Credit: 50},
	}}
	svc := NewService(repo)

	balances, err := svc.Balances(context.Background(), uuid.New(), time.Now())
	require.NoError(t, err)

	byID := map[int64]float64{}
	for _, b := range balances {
		byID[b.Account.ID] = b.Amount
	}
	require.Equal(t, 300.0, byID[3])
	require.Equal(t, 150.0, byID[4])
	require.Equal(t, 450.0, byID[midID], "intermediate header sums its leaves")
	require.Equal(t, 450.0, byID[rootID], "root header sums the whole subtree")
}

func TestOpeningBalanceIncludedOnlyCumulatively(t *testing.T) {
	opening := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	cash := account(1, "1100", accounts.ClassAsset)
	cash.OpeningBalance = 5000
	cash.OpeningDate = &opening

	repo := &fakeRepo{
		asOf:    []Activity{{Account: cash, Debit: 100}},
		between: []Activity{{Account: cash, Debit: 100}},
	}
	svc := NewService(repo)
	tenantID := uuid.New()
	ctx := context.Background()

	balances, err := svc.Balances(ctx, tenantID, time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Equal(t, 5100.0, balances[0].Amount)

	period, err := svc.PeriodBalances(ctx, tenantID,
		time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Equal(t, 100.0, period[0].Amount, "period activity excludes the opening balance")
}

func TestOpeningBalanceIgnoredBeforeOpeningDate(t *testing.T) {
	opening := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)
	cash := account(1, "1100", accounts.ClassAsset)
	cash.OpeningBalance = 5000
	cash.OpeningDate = &opening

	repo := &fakeRepo{asOf: []Activity{{Account: cash, Debit: 100}}}
	svc := NewService(repo)

	balances, err := svc.Balances(context.Background(), uuid.New(), time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Equal(t, 100.0, balances[0].Amount)
}

func TestAccountBalanceLooksUpSingleAccount(t *testing.T) {
	repo := &fakeRepo{asOf: []Activity{
		{Account: account(7, "1200", accounts.ClassAsset), Debit: 420},
	}}
	svc := NewService(repo)

	amount, err := svc.AccountBalance(context.Background(), uuid.New(), 7, time.Now())
	require.NoError(t, err)
	require.Equal(t, 420.0, amount)

	_, err = svc.AccountBalance(context.Background(), uuid.New(), 99, time.Now())
	require.ErrorIs(t, err, shared.ErrAccountNotFound)
}

func TestTrialBalanceColumnsAndFlip(t *testing.T) {
	// AR 1000 debit, revenue 1000 credit, plus an overdrawn bank account
	// whose negative asset balance flips to the credit column.
	repo := &fakeRepo{asOf: []Activity{
		{Account: account(1, "1200", accounts.ClassAsset), Debit: 1000},
		{Account: account(2, "4000", accounts.ClassRevenue), Credit: 1000},
		{Account: account(3, "1100", accounts.ClassAsset), Debit: 200, Credit: 500},
		{Account: account(4, "2100", accounts.ClassLiability), Debit: 300},
	}}
	svc := NewService(repo)

	tb, err := svc.TrialBalance(context.Background(), uuid.New(), time.Now())
	require.NoError(t, err)
	require.Len(t, tb.Rows, 4)

	rows := map[string]TrialBalanceRow{}
	for _, row := range tb.Rows {
		rows[row.Account.Code] = row
	}
	require.Equal(t, 1000.0, rows["1200"].Debit)
	require.Equal(t, 1000.0, rows["4000"].Credit)
	require.Equal(t, 300.0, rows["1100"].Credit, "overdrawn asset moves to the credit column")
	require.Equal(t, 0.0, rows["1100"].Debit)
	require.Equal(t, 300.0, rows["2100"].Debit, "debit-balance liability moves to the debit column")

	require.InDelta(t, tb.TotalDebit, tb.TotalCredit, 0.01)
}

func TestTrialBalanceSkipsHeadersAndZero(t *testing.T) {
	header := account(1, "1000", accounts.ClassAsset)
	header.IsHeader = true
	settled := account(2, "1900", accounts.ClassAsset)
	settled.IsActive = false

	repo := &fakeRepo{asOf: []Activity{
		{Account: header},
		{Account: settled, Debit: 100, Credit: 100},
		{Account: account(3, "1100", accounts.ClassAsset), Debit: 50},
		{Account: account(4, "3000", accounts.ClassEquity), Credit: 50},
	}}
	svc := NewService(repo)

	tb, err := svc.TrialBalance(context.Background(), uuid.New(), time.Now())
	require.NoError(t, err)
	require.Len(t, tb.Rows, 2)
}

func TestTrialBalanceKeepsInactiveNonzeroAccount(t *testing.T) {
	// Force-deactivation leaves the balance behind. The row must stay on the
	// report or the columns diverge over a perfectly legal registry state.
	parked := account(1, "1900", accounts.ClassAsset)
	parked.IsActive = false

	repo := &fakeRepo{asOf: []Activity{
		{Account: parked, Debit: 500},
		{Account: account(2, "4000", accounts.ClassRevenue), Credit: 500},
	}}
	svc := NewService(repo)

	tb, err := svc.TrialBalance(context.Background(), uuid.New(), time.Now())
	require.NoError(t, err)
	require.Len(t, tb.Rows, 2)
	require.Equal(t, 500.0, tb.TotalDebit)
	require.Equal(t, 500.0, tb.TotalCredit)
}

func TestTrialBalanceDetectsIntegrityViolation(t *testing.T) {
	// Rigged activity that could never come from balanced entries.
	repo := &fakeRepo{asOf: []Activity{
		{Account: account(1, "1100", accounts.ClassAsset), Debit: 1000},
		{Account: account(2, "4000", accounts.ClassRevenue), Credit: 400},
	}}
	svc := NewService(repo)

	_, err := svc.TrialBalance(context.Background(), uuid.New(), time.Now())
	require.ErrorIs(t, err, shared.ErrIntegrity)
}
