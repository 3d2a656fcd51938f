package reports

import (
	"sort"
	"time"

	"github.com/ledgerline/ledgerline/internal/ledger/accounts"
	"github.com/ledgerline/ledgerline/internal/ledger/balance"
)

// TrialBalanceAccount represents a row inside a trial balance group.
type TrialBalanceAccount struct {
	Code   string  `json:"code"`
	Name   string  `json:"name"`
	Debit  float64 `json:"debit"`
	Credit float64 `json:"credit"`
}

// TrialBalanceGroup aggregates accounts of one classification.
type TrialBalanceGroup struct {
	Class  accounts.Classification `json:"class"`
	Rows   []TrialBalanceAccount   `json:"rows"`
	Debit  float64                 `json:"debit"`
	Credit float64                 `json:"credit"`
}

// TrialBalanceView is the grouped structure rendered by the API and CSV export.
type TrialBalanceView struct {
	AsOf        time.Time           `json:"asOf"`
	Groups      []TrialBalanceGroup `json:"groups"`
	TotalDebit  float64             `json:"totalDebit"`
	TotalCredit float64             `json:"totalCredit"`
}

var classOrder = map[accounts.Classification]int{
	accounts.ClassAsset:     0,
	accounts.ClassLiability: 1,
	accounts.ClassEquity:    2,
	accounts.ClassRevenue:   3,
	accounts.ClassExpense:   4,
}

// BuildTrialBalanceView groups trial balance rows by classification.
func BuildTrialBalanceView(tb balance.TrialBalance) TrialBalanceView {
	groups := make(map[accounts.Classification]*TrialBalanceGroup)
	for _, row := range tb.Rows {
		grp, ok := groups[row.Account.Class]
		if !ok {
			grp = &TrialBalanceGroup{Class: row.Account.Class}
			groups[row.Account.Class] = grp
		}
		grp.Rows = append(grp.Rows, TrialBalanceAccount{
			Code:   row.Account.Code,
			Name:   row.Account.Name,
			Debit:  row.Debit,
			Credit: row.Credit,
		})
		grp.Debit += row.Debit
		grp.Credit += row.Credit
	}
	view := TrialBalanceView{AsOf: tb.AsOf, TotalDebit: tb.TotalDebit, TotalCredit: tb.TotalCredit}
	for _, grp := range groups {
		sort.Slice(grp.Rows, func(i, j int) bool { return grp.Rows[i].Code < grp.Rows[j].Code })
		view.Groups = append(view.Groups, *grp)
	}
	sort.Slice(view.Groups, func(i, j int) bool {
		return classOrder[view.Groups[i].Class] < classOrder[view.Groups[j].Class]
	})
	return view
}
