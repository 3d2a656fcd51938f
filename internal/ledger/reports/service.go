package reports

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/ledgerline/ledgerline/internal/ledger/balance"
)

// BalancePort exposes the balance engine reads the generator depends on.
type BalancePort interface {
	Balances(ctx context.Context, tenantID uuid.UUID, asOf time.Time) ([]balance.Balance, error)
	PeriodBalances(ctx context.Context, tenantID uuid.UUID, start, end time.Time) ([]balance.Balance, error)
	TrialBalance(ctx context.Context, tenantID uuid.UUID, asOf time.Time) (balance.TrialBalance, error)
}

// Service derives financial statements from classified balances. All reads
// are pure; concurrent identical requests collapse into one computation.
type Service struct {
	balances BalancePort
	cache    *Cache
	group    singleflight.Group
}

// NewService constructs the statement generator.
func NewService(balances BalancePort, cache *Cache) *Service {
	return &Service{balances: balances, cache: cache}
}

const dayLayout = "2006-01-02"

// TrialBalance returns the grouped trial balance view, cached per version.
func (s *Service) TrialBalance(ctx context.Context, tenantID uuid.UUID, asOf time.Time) (TrialBalanceView, error) {
	var view TrialBalanceView
	err := s.fetch(ctx, &view,
		[]string{"reports", "tb", tenantID.String(), asOf.Format(dayLayout)},
		func(ctx context.Context) (interface{}, error) {
			tb, err := s.balances.TrialBalance(ctx, tenantID, asOf)
			if err != nil {
				return nil, err
			}
			return BuildTrialBalanceView(tb), nil
		})
	return view, err
}

// ProfitAndLoss computes the statement for entries dated within the period.
// Period amounts equal balance(end) minus balance(start-1) per account; the
// engine derives them from a single window scan rather than two cumulative
// recomputations.
func (s *Service) ProfitAndLoss(ctx context.Context, tenantID uuid.UUID, start, end time.Time) (ProfitAndLoss, error) {
	if end.Before(start) {
		return ProfitAndLoss{}, fmt.Errorf("reports: period end %s precedes start %s", end.Format(dayLayout), start.Format(dayLayout))
	}
	var pl ProfitAndLoss
	err := s.fetch(ctx, &pl,
		[]string{"reports", "pl", tenantID.String(), start.Format(dayLayout), end.Format(dayLayout)},
		func(ctx context.Context) (interface{}, error) {
			period, err := s.balances.PeriodBalances(ctx, tenantID, start, end)
			if err != nil {
				return nil, err
			}
			return BuildProfitAndLoss(period, start, end), nil
		})
	return pl, err
}

// BalanceSheet computes the cumulative statement as of a date.
func (s *Service) BalanceSheet(ctx context.Context, tenantID uuid.UUID, asOf time.Time) (BalanceSheet, error) {
	var bs BalanceSheet
	err := s.fetch(ctx, &bs,
		[]string{"reports", "bs", tenantID.String(), asOf.Format(dayLayout)},
		func(ctx context.Context) (interface{}, error) {
			cumulative, err := s.balances.Balances(ctx, tenantID, asOf)
			if err != nil {
				return nil, err
			}
			return BuildBalanceSheet(cumulative, asOf), nil
		})
	return bs, err
}

// fetch funnels a report build through singleflight and the versioned cache.
// The flight returns raw JSON so shared callers each decode their own copy.
func (s *Service) fetch(ctx context.Context, dest interface{}, keyParts []string, loader func(context.Context) (interface{}, error)) error {
	key, err := s.cache.BuildKey(ctx, keyParts...)
	if err != nil {
		return err
	}
	resultChan := s.group.DoChan(key, func() (interface{}, error) {
		var raw json.RawMessage
		if err := s.cache.FetchJSON(ctx, key, &raw, loader); err != nil {
			return nil, err
		}
		return raw, nil
	})
	select {
	case <-ctx.Done():
		return ctx.Err()
	case res := <-resultChan:
		if res.Err != nil {
			return res.Err
		}
		return json.Unmarshal(res.Val.(json.RawMessage), dest)
	}
}
