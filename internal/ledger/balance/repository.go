package balance

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ledgerline/ledgerline/internal/ledger/accounts"
)

// Activity pairs an account with its posted debit/credit sums over a window.
// Lines of reversed entries still count: their net effect is cancelled by the
// mirrored reversal entry, never by erasing history.
type Activity struct {
	Account accounts.Account
	Debit   float64
	Credit  float64
}

// Repository reads posted activity. It never writes.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// The status and date predicates live inside the parenthesised line/entry
// join: a line only reaches the aggregate when its entry is posted (or
// reversed) and dated inside the window. Attaching them to an outer LEFT JOIN
// on journal_entries would merely null the entry columns while the line still
// joins and gets summed, silently counting drafts and out-of-window activity.
const activityQuery = `
SELECT a.id, a.tenant_id, a.code, a.name, a.class, a.parent_id, a.is_header, a.is_active,
       a.expense_group, a.tax_code, a.opening_balance, a.opening_date, a.created_at, a.updated_at,
       COALESCE(SUM(l.debit), 0), COALESCE(SUM(l.credit), 0)
FROM accounts a
LEFT JOIN (journal_lines l
    JOIN journal_entries e ON e.id = l.entry_id
        AND e.status IN ('POSTED','REVERSED')
        AND e.date >= $2 AND e.date <= $3)
    ON l.account_id = a.id
WHERE a.tenant_id = $1
GROUP BY a.id
ORDER BY a.code`

// ActivityBetween returns per-account debit/credit sums for entries dated
// within [start, end], for every account of the tenant.
func (r *Repository) ActivityBetween(ctx context.Context, tenantID uuid.UUID, start, end time.Time) ([]Activity, error) {
	rows, err := r.pool.Query(ctx, activityQuery, tenantID, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanActivities(rows)
}

// ActivityAsOf returns cumulative per-account sums up to and including asOf.
func (r *Repository) ActivityAsOf(ctx context.Context, tenantID uuid.UUID, asOf time.Time) ([]Activity, error) {
	return r.ActivityBetween(ctx, tenantID, time.Time{}, asOf)
}

func scanActivities(rows pgx.Rows) ([]Activity, error) {
	var out []Activity
	for rows.Next() {
		var act Activity
		var group *string
		err := rows.Scan(&act.Account.ID, &act.Account.TenantID, &act.Account.Code, &act.Account.Name,
			&act.Account.Class, &act.Account.ParentID, &act.Account.IsHeader, &act.Account.IsActive,
			&group, &act.Account.TaxCode, &act.Account.OpeningBalance, &act.Account.OpeningDate,
			&act.Account.CreatedAt, &act.Account.UpdatedAt, &act.Debit, &act.Credit)
		if err != nil {
			return nil, err
		}
		if group != nil {
			act.Account.ExpenseGroup = accounts.ExpenseGroup(*group)
		}
		out = append(out, act)
	}
	return out, rows.Err()
}
