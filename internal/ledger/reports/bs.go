package reports

import (
	"sort"
	"time"

	"github.com/ledgerline/ledgerline/internal/ledger/accounts"
	"github.com/ledgerline/ledgerline/internal/ledger/balance"
)

// BalanceSheetLine summarises one account's cumulative position.
type BalanceSheetLine struct {
	Code    string  `json:"code,omitempty"`
	Name    string  `json:"name"`
	Balance float64 `json:"balance"`
}

// BalanceSheetSection contains the lines and total for a classification.
type BalanceSheetSection struct {
	Label string             `json:"label"`
	Lines []BalanceSheetLine `json:"lines"`
	Total float64            `json:"total"`
}

// BalanceSheet is the structured statement as of a date. Equity includes the
// retained earnings line so Assets = Liabilities + Equity holds.
type BalanceSheet struct {
	AsOf                      time.Time           `json:"asOf"`
	Assets                    BalanceSheetSection `json:"assets"`
	Liabilities               BalanceSheetSection `json:"liabilities"`
	Equity                    BalanceSheetSection `json:"equity"`
	RetainedEarnings          float64             `json:"retainedEarnings"`
	TotalLiabilitiesAndEquity float64             `json:"totalLiabilitiesAndEquity"`
}

// BuildBalanceSheet aggregates cumulative balances into the statement.
// Revenue and expense accounts never appear as lines; their lifetime net
// folds into equity as retained earnings.
func BuildBalanceSheet(cumulative []balance.Balance, asOf time.Time) BalanceSheet {
	bs := BalanceSheet{
		AsOf:        asOf,
		Assets:      BalanceSheetSection{Label: "Assets"},
		Liabilities: BalanceSheetSection{Label: "Liabilities"},
		Equity:      BalanceSheetSection{Label: "Equity"},
	}
	for _, b := range cumulative {
		if b.Account.IsHeader {
			continue
		}
		line := BalanceSheetLine{Code: b.Account.Code, Name: b.Account.Name, Balance: b.Amount}
		switch b.Account.Class {
		case accounts.ClassAsset:
			if b.Amount != 0 {
				bs.Assets.Lines = append(bs.Assets.Lines, line)
			}
			bs.Assets.Total += b.Amount
		case accounts.ClassLiability:
			if b.Amount != 0 {
				bs.Liabilities.Lines = append(bs.Liabilities.Lines, line)
			}
			bs.Liabilities.Total += b.Amount
		case accounts.ClassEquity:
			if b.Amount != 0 {
				bs.Equity.Lines = append(bs.Equity.Lines, line)
			}
			bs.Equity.Total += b.Amount
		case accounts.ClassRevenue:
			bs.RetainedEarnings += b.Amount
		case accounts.ClassExpense:
			bs.RetainedEarnings -= b.Amount
		}
	}
	if bs.RetainedEarnings != 0 {
		bs.Equity.Lines = append(bs.Equity.Lines, BalanceSheetLine{Name: "Retained Earnings", Balance: bs.RetainedEarnings})
		bs.Equity.Total += bs.RetainedEarnings
	}
	for _, section := range []*BalanceSheetSection{&bs.Assets, &bs.Liabilities, &bs.Equity} {
		sort.Slice(section.Lines, func(i, j int) bool { return section.Lines[i].Code < section.Lines[j].Code })
	}
	bs.TotalLiabilitiesAndEquity = bs.Liabilities.Total + bs.Equity.Total
	return bs
}
