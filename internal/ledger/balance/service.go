// Package balance derives account balances and the trial balance from posted
// history. Balances are computed views, never stored running totals, so a
// recomputation from scratch always produces identical results.
package balance

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/ledgerline/ledgerline/internal/ledger/accounts"
	"github.com/ledgerline/ledgerline/internal/ledger/shared"
)

// equalityTolerance bounds float drift when comparing column totals.
const equalityTolerance = 0.01

// RepositoryPort reads posted activity.
type RepositoryPort interface {
	ActivityAsOf(ctx context.Context, tenantID uuid.UUID, asOf time.Time) ([]Activity, error)
	ActivityBetween(ctx context.Context, tenantID uuid.UUID, start, end time.Time) ([]Activity, error)
}

// Service computes balances on demand.
type Service struct {
	repo RepositoryPort
}

// NewService constructs the balance engine.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// Balance is an account with its oriented balance.
type Balance struct {
	Account accounts.Account
	// Amount is signed on the account's normal side: positive means the
	// balance sits on the side the classification expects.
	Amount float64
}

// TrialBalanceRow places one account balance on its debit or credit column.
type TrialBalanceRow struct {
	Account accounts.Account
	Debit   float64
	Credit  float64
}

// TrialBalance lists every nonzero leaf account with column totals. Inactive
// accounts stay listed while they carry a balance: force-deactivation permits
// a nonzero remainder, and dropping the row would fake a column mismatch.
type TrialBalance struct {
	AsOf        time.Time
	Rows        []TrialBalanceRow
	TotalDebit  float64
	TotalCredit float64
}

// AccountBalance computes the balance of one account as of a date. Header
// accounts aggregate every descendant leaf, computed bottom-up on query.
func (s *Service) AccountBalance(ctx context.Context, tenantID uuid.UUID, accountID int64, asOf time.Time) (float64, error) {
	balances, err := s.Balances(ctx, tenantID, asOf)
	if err != nil {
		return 0, err
	}
	for _, b := range balances {
		if b.Account.ID == accountID {
			return b.Amount, nil
		}
	}
	return 0, shared.ErrAccountNotFound
}

// Balances computes oriented balances for every account of the tenant,
// including recursive header aggregation.
func (s *Service) Balances(ctx context.Context, tenantID uuid.UUID, asOf time.Time) ([]Balance, error) {
	activities, err := s.repo.ActivityAsOf(ctx, tenantID, asOf)
	if err != nil {
		return nil, err
	}
	return aggregate(activities, asOf, true), nil
}

// PeriodBalances computes oriented period deltas for entries dated within
// [start, end]. Opening balances dated before the window are excluded: this
// is activity, not a cumulative position.
func (s *Service) PeriodBalances(ctx context.Context, tenantID uuid.UUID, start, end time.Time) ([]Balance, error) {
	activities, err := s.repo.ActivityBetween(ctx, tenantID, start, end)
	if err != nil {
		return nil, err
	}
	return aggregate(activities, end, false), nil
}

// TrialBalance emits every nonzero leaf account on its normal side and
// checks the debit/credit column equality. A mismatch means the core
// invariant was violated and surfaces as an integrity error.
func (s *Service) TrialBalance(ctx context.Context, tenantID uuid.UUID, asOf time.Time) (TrialBalance, error) {
	balances, err := s.Balances(ctx, tenantID, asOf)
	if err != nil {
		return TrialBalance{}, err
	}
	tb := TrialBalance{AsOf: asOf}
	for _, b := range balances {
		if b.Account.IsHeader || b.Amount == 0 {
			continue
		}
		row := TrialBalanceRow{Account: b.Account}
		// A negative oriented balance flips to the opposite column.
		onNormalSide := b.Amount >= 0
		amount := math.Abs(b.Amount)
		debitNormal := b.Account.Side() == accounts.SideDebit
		if debitNormal == onNormalSide {
			row.Debit = amount
		} else {
			row.Credit = amount
		}
		tb.Rows = append(tb.Rows, row)
		tb.TotalDebit += row.Debit
		tb.TotalCredit += row.Credit
	}
	if math.Abs(tb.TotalDebit-tb.TotalCredit) > equalityTolerance {
		return TrialBalance{}, fmt.Errorf("%w: trial balance columns differ (debit %.2f, credit %.2f)",
			shared.ErrIntegrity, tb.TotalDebit, tb.TotalCredit)
	}
	return tb, nil
}

// aggregate orients activity to each account's normal side and rolls leaf
// balances up into header accounts. The chart is an arena keyed by id with
// parent pointers only; children indexes are derived here, never stored.
func aggregate(activities []Activity, asOf time.Time, includeOpening bool) []Balance {
	oriented := make(map[int64]float64, len(activities))
	arena := make(map[int64]accounts.Account, len(activities))
	for _, act := range activities {
		amount := act.Debit - act.Credit
		if act.Account.Side() == accounts.SideCredit {
			amount = -amount
		}
		if includeOpening && act.Account.OpeningDate != nil && !act.Account.OpeningDate.After(asOf) {
			amount += act.Account.OpeningBalance
		}
		oriented[act.Account.ID] = amount
		arena[act.Account.ID] = act.Account
	}
	// Roll every leaf amount up through its parent chain.
	rolled := make(map[int64]float64, len(arena))
	for id, amount := range oriented {
		account := arena[id]
		if account.IsHeader {
			// Headers carry no own postings; their balance is purely derived.
			continue
		}
		rolled[id] += amount
		cursor := account.ParentID
		for cursor != nil {
			parent, ok := arena[*cursor]
			if !ok {
				break
			}
			rolled[parent.ID] += amount
			cursor = parent.ParentID
		}
	}
	out := make([]Balance, 0, len(activities))
	for _, act := range activities {
		out = append(out, Balance{Account: act.Account, Amount: rolled[act.Account.ID]})
	}
	return out
}
