package accounts

import (
	"time"

	"github.com/google/uuid"
)

// Classification enumerates chart of accounts categories.
type Classification string

const (
	ClassAsset     Classification = "ASSET"
	ClassLiability Classification = "LIABILITY"
	ClassEquity    Classification = "EQUITY"
	ClassRevenue   Classification = "REVENUE"
	ClassExpense   Classification = "EXPENSE"
)

// Valid reports whether the classification is one of the five categories.
func (c Classification) Valid() bool {
	switch c {
	case ClassAsset, ClassLiability, ClassEquity, ClassRevenue, ClassExpense:
		return true
	}
	return false
}

// NormalSide enumerates the side on which an account balance is positive.
type NormalSide string

const (
	SideDebit  NormalSide = "DEBIT"
	SideCredit NormalSide = "CREDIT"
)

// NormalSide derives the normal balance side from the classification.
// Asset and expense accounts are debit-normal, the rest credit-normal.
func (c Classification) NormalSide() NormalSide {
	switch c {
	case ClassAsset, ClassExpense:
		return SideDebit
	default:
		return SideCredit
	}
}

// ExpenseGroup splits expense accounts for the profit and loss layout.
type ExpenseGroup string

const (
	ExpenseOperating ExpenseGroup = "OPERATING"
	ExpenseCOGS      ExpenseGroup = "COGS"
	ExpenseOther     ExpenseGroup = "OTHER"
)

// Account models a chart of accounts node.
type Account struct {
	ID             int64          `json:"id"`
	TenantID       uuid.UUID      `json:"tenantId"`
	Code           string         `json:"code"`
	Name           string         `json:"name"`
	Class          Classification `json:"class"`
	ParentID       *int64         `json:"parentId,omitempty"`
	IsHeader       bool           `json:"isHeader"`
	IsActive       bool           `json:"isActive"`
	ExpenseGroup   ExpenseGroup   `json:"expenseGroup,omitempty"`
	TaxCode        *string        `json:"taxCode,omitempty"`
	OpeningBalance float64        `json:"openingBalance"`
	OpeningDate    *time.Time     `json:"openingDate,omitempty"`
	CreatedAt      time.Time      `json:"createdAt"`
	UpdatedAt      time.Time      `json:"updatedAt"`
}

// Side returns the account's normal balance side.
func (a Account) Side() NormalSide {
	return a.Class.NormalSide()
}

// CreateInput groups fields required to create an account.
type CreateInput struct {
	TenantID       uuid.UUID
	Code           string
	Name           string
	Class          Classification
	ParentID       *int64
	IsHeader       bool
	ExpenseGroup   ExpenseGroup
	TaxCode        *string
	OpeningBalance float64
	OpeningDate    *time.Time
}

// UpdateInput carries a partial account mutation. Nil fields are untouched.
type UpdateInput struct {
	ID       int64
	TenantID uuid.UUID
	Code     *string
	Name     *string
	Class    *Classification
	ParentID *int64
	IsActive *bool
	TaxCode  *string
	// Force permits deactivating an account that still carries a balance.
	Force bool
}
