package reports

import (
	"sort"
	"time"

	"github.com/ledgerline/ledgerline/internal/ledger/accounts"
	"github.com/ledgerline/ledgerline/internal/ledger/balance"
)

// ProfitAndLossLine summarises one revenue or expense account for the period.
type ProfitAndLossLine struct {
	Code   string  `json:"code"`
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
}

// ProfitAndLossSection groups lines by nature.
type ProfitAndLossSection struct {
	Label string              `json:"label"`
	Lines []ProfitAndLossLine `json:"lines"`
	Total float64             `json:"total"`
}

// ProfitAndLoss is the structured statement for a period. Amounts are period
// activity, not cumulative balances since inception.
type ProfitAndLoss struct {
	Start             time.Time            `json:"start"`
	End               time.Time            `json:"end"`
	Revenue           ProfitAndLossSection `json:"revenue"`
	COGS              ProfitAndLossSection `json:"cogs"`
	OperatingExpenses ProfitAndLossSection `json:"operatingExpenses"`
	OtherExpenses     ProfitAndLossSection `json:"otherExpenses"`
	GrossProfit       float64              `json:"grossProfit"`
	OperatingProfit   float64              `json:"operatingProfit"`
	NetProfit         float64              `json:"netProfit"`
}

// BuildProfitAndLoss partitions period balances into the statement sections.
// Expense accounts split by their expense group; COGS feeds gross profit.
func BuildProfitAndLoss(period []balance.Balance, start, end time.Time) ProfitAndLoss {
	pl := ProfitAndLoss{
		Start:             start,
		End:               end,
		Revenue:           ProfitAndLossSection{Label: "Revenue"},
		COGS:              ProfitAndLossSection{Label: "Cost of Goods Sold"},
		OperatingExpenses: ProfitAndLossSection{Label: "Operating Expenses"},
		OtherExpenses:     ProfitAndLossSection{Label: "Other Expenses"},
	}
	for _, b := range period {
		if b.Account.IsHeader || b.Amount == 0 {
			continue
		}
		line := ProfitAndLossLine{Code: b.Account.Code, Name: b.Account.Name, Amount: b.Amount}
		switch b.Account.Class {
		case accounts.ClassRevenue:
			pl.Revenue.Lines = append(pl.Revenue.Lines, line)
			pl.Revenue.Total += line.Amount
		case accounts.ClassExpense:
			switch b.Account.ExpenseGroup {
			case accounts.ExpenseCOGS:
				pl.COGS.Lines = append(pl.COGS.Lines, line)
				pl.COGS.Total += line.Amount
			case accounts.ExpenseOther:
				pl.OtherExpenses.Lines = append(pl.OtherExpenses.Lines, line)
				pl.OtherExpenses.Total += line.Amount
			default:
				pl.OperatingExpenses.Lines = append(pl.OperatingExpenses.Lines, line)
				pl.OperatingExpenses.Total += line.Amount
			}
		}
	}
	for _, section := range []*ProfitAndLossSection{&pl.Revenue, &pl.COGS, &pl.OperatingExpenses, &pl.OtherExpenses} {
		sort.Slice(section.Lines, func(i, j int) bool { return section.Lines[i].Code < section.Lines[j].Code })
	}
	pl.GrossProfit = pl.Revenue.Total - pl.COGS.Total
	pl.OperatingProfit = pl.GrossProfit - pl.OperatingExpenses.Total
	pl.NetProfit = pl.OperatingProfit - pl.OtherExpenses.Total
	return pl
}
