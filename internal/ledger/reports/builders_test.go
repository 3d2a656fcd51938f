package reports

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ledgerline/ledgerline/internal/ledger/accounts"
	"github.com/ledgerline/ledgerline/internal/ledger/balance"
)

func bal(code string, class accounts.Classification, amount float64) balance.Balance {
	return balance.Balance{
		Account: accounts.Account{Code: code, Name: "Account " + code, Class: class, IsActive: true},
		Amount:  amount,
	}
}

func TestBuildProfitAndLossSections(t *testing.T) {
	revA := bal("4000", accounts.ClassRevenue, 10000)
	revB := bal("4100", accounts.ClassRevenue, 2000)
	cogs := bal("5000", accounts.ClassExpense, 4000)
	cogs.Account.ExpenseGroup = accounts.ExpenseCOGS
	rent := bal("6000", accounts.ClassExpense, 1500)
	rent.Account.ExpenseGroup = accounts.ExpenseOperating
	fx := bal("7000", accounts.ClassExpense, 300)
	fx.Account.ExpenseGroup = accounts.ExpenseOther
	// Accounts outside revenue/expense never show on the statement.
	cash := bal("1100", accounts.ClassAsset, 99999)

	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC)
	pl := BuildProfitAndLoss([]balance.Balance{fx, rent, cogs, revB, revA, cash}, start, end)

	require.Equal(t, 12000.0, pl.Revenue.Total)
	require.Len(t, pl.Revenue.Lines, 2)
	require.Equal(t, "4000", pl.Revenue.Lines[0].Code, "lines sort by code")
	require.Equal(t, 4000.0, pl.COGS.Total)
	require.Equal(t, 1500.0, pl.OperatingExpenses.Total)
	require.Equal(t, 300.0, pl.OtherExpenses.Total)

	require.Equal(t, 8000.0, pl.GrossProfit)
	require.Equal(t, 6500.0, pl.OperatingProfit)
	require.Equal(t, 6200.0, pl.NetProfit)
}

func TestBuildProfitAndLossDefaultsUngroupedExpenseToOperating(t *testing.T) {
	misc := bal("6900", accounts.ClassExpense, 120)
	pl := BuildProfitAndLoss([]balance.Balance{misc}, time.Time{}, time.Time{})
	require.Equal(t, 120.0, pl.OperatingExpenses.Total)
	require.Empty(t, pl.OtherExpenses.Lines)
}

func TestBuildProfitAndLossSkipsHeadersAndZeroes(t *testing.T) {
	header := bal("4000", accounts.ClassRevenue, 500)
	header.Account.IsHeader = true
	zero := bal("4100", accounts.ClassRevenue, 0)

	pl := BuildProfitAndLoss([]balance.Balance{header, zero}, time.Time{}, time.Time{})
	require.Empty(t, pl.Revenue.Lines)
	require.Equal(t, 0.0, pl.Revenue.Total)
}

func TestBuildBalanceSheetFoldsRetainedEarnings(t *testing.T) {
	cumulative := []balance.Balance{
		bal("1100", accounts.ClassAsset, 47500),
		bal("1200", accounts.ClassAsset, 1060),
		bal("2200", accounts.ClassLiability, 60),
		bal("3000", accounts.ClassEquity, 50000),
		bal("4000", accounts.ClassRevenue, 1000),
		bal("6000", accounts.ClassExpense, 2500),
	}
	asOf := time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC)
	bs := BuildBalanceSheet(cumulative, asOf)

	require.Equal(t, 48560.0, bs.Assets.Total)
	require.Equal(t, 60.0, bs.Liabilities.Total)
	require.Equal(t, -1500.0, bs.RetainedEarnings)
	require.Equal(t, 48500.0, bs.Equity.Total)
	require.Equal(t, bs.Assets.Total, bs.TotalLiabilitiesAndEquity,
		"assets equal liabilities plus equity once retained earnings fold in")

	last := bs.Equity.Lines[len(bs.Equity.Lines)-1]
	require.Equal(t, "Retained Earnings", last.Name)
	require.Equal(t, -1500.0, last.Balance)
}

func TestBuildBalanceSheetOmitsRevenueExpenseLines(t *testing.T) {
	bs := BuildBalanceSheet([]balance.Balance{
		bal("4000", accounts.ClassRevenue, 900),
		bal("5000", accounts.ClassExpense, 400),
	}, time.Now())

	require.Empty(t, bs.Assets.Lines)
	require.Empty(t, bs.Liabilities.Lines)
	require.Len(t, bs.Equity.Lines, 1)
	require.Equal(t, 500.0, bs.Equity.Lines[0].Balance)
}

func TestBuildTrialBalanceViewGroupsByClass(t *testing.T) {
	tb := balance.TrialBalance{
		AsOf: time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC),
		Rows: []balance.TrialBalanceRow{
			{Account: accounts.Account{Code: "4000", Name: "Revenue", Class: accounts.ClassRevenue}, Credit: 1000},
			{Account: accounts.Account{Code: "1200", Name: "AR", Class: accounts.ClassAsset}, Debit: 1060},
			{Account: accounts.Account{Code: "1100", Name: "Cash", Class: accounts.ClassAsset}, Debit: 440},
			{Account: accounts.Account{Code: "2200", Name: "Tax Payable", Class: accounts.ClassLiability}, Credit: 500},
		},
		TotalDebit:  1500,
		TotalCredit: 1500,
	}

	view := BuildTrialBalanceView(tb)
	require.Len(t, view.Groups, 3)
	require.Equal(t, accounts.ClassAsset, view.Groups[0].Class)
	require.Equal(t, accounts.ClassLiability, view.Groups[1].Class)
	require.Equal(t, accounts.ClassRevenue, view.Groups[2].Class)

	assets := view.Groups[0]
	require.Equal(t, "1100", assets.Rows[0].Code)
	require.Equal(t, "1200", assets.Rows[1].Code)
	require.Equal(t, 1500.0, assets.Debit)

	require.Equal(t, 1500.0, view.TotalDebit)
	require.Equal(t, 1500.0, view.TotalCredit)
}
