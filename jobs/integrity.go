// Package jobs runs the background work of the ledger: the periodic
// integrity check that proves the books still balance.
package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ledgerline/ledgerline/internal/ledger/balance"
	"github.com/ledgerline/ledgerline/internal/ledger/reports"
	"github.com/ledgerline/ledgerline/internal/ledger/shared"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskLedgerIntegrity re-proves the two ledger equalities per tenant.
	TaskLedgerIntegrity = "ledger:integrity"

	equationTolerance = 0.01
)

// IntegrityPayload scopes a check to one tenant, or all when zero.
type IntegrityPayload struct {
	TenantID uuid.UUID `json:"tenantId"`
}

// NewIntegrityTask constructs an Asynq task.
func NewIntegrityTask(payload IntegrityPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskLedgerIntegrity, data), nil
}

// MetricsPort counts integrity check outcomes.
type MetricsPort interface {
	IntegrityCheck(outcome string)
}

// IntegrityChecker recomputes the trial balance and the balance sheet
// equation from raw posted lines. A failure here means the core invariant
// broke; it is escalated, never retried into silence.
type IntegrityChecker struct {
	pool     *pgxpool.Pool
	balances *balance.Service
	metrics  MetricsPort
	logger   *slog.Logger
}

// NewIntegrityChecker constructs the checker.
func NewIntegrityChecker(pool *pgxpool.Pool, balances *balance.Service, metrics MetricsPort, logger *slog.Logger) *IntegrityChecker {
	return &IntegrityChecker{pool: pool, balances: balances, metrics: metrics, logger: logger}
}

// Handle processes TaskLedgerIntegrity tasks.
func (c *IntegrityChecker) Handle(ctx context.Context, t *asynq.Task) error {
	var payload IntegrityPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	tenants := []uuid.UUID{payload.TenantID}
	if payload.TenantID == uuid.Nil {
		var err error
		tenants, err = c.listTenants(ctx)
		if err != nil {
			return err
		}
	}
	for _, tenantID := range tenants {
		if err := c.CheckTenant(ctx, tenantID); err != nil {
			// Violations are escalated through the log and the metric; the
			// task itself succeeds so the scheduler keeps probing the rest.
			if errors.Is(err, shared.ErrIntegrity) {
				continue
			}
			return err
		}
	}
	return nil
}

// CheckTenant verifies both system-level equalities for one tenant as of now.
func (c *IntegrityChecker) CheckTenant(ctx context.Context, tenantID uuid.UUID) error {
	asOf := time.Now()

	tb, err := c.balances.TrialBalance(ctx, tenantID, asOf)
	if err != nil {
		if errors.Is(err, shared.ErrIntegrity) {
			c.report(tenantID, "trial balance columns diverged", err)
			return err
		}
		return err
	}
	if math.Abs(tb.TotalDebit-tb.TotalCredit) > equationTolerance {
		err := fmt.Errorf("%w: trial balance debit %.2f credit %.2f", shared.ErrIntegrity, tb.TotalDebit, tb.TotalCredit)
		c.report(tenantID, "trial balance columns diverged", err)
		return err
	}

	cumulative, err := c.balances.Balances(ctx, tenantID, asOf)
	if err != nil {
		return err
	}
	bs := reports.BuildBalanceSheet(cumulative, asOf)
	if math.Abs(bs.Assets.Total-bs.TotalLiabilitiesAndEquity) > equationTolerance {
		err := fmt.Errorf("%w: assets %.2f vs liabilities+equity %.2f", shared.ErrIntegrity, bs.Assets.Total, bs.TotalLiabilitiesAndEquity)
		c.report(tenantID, "balance sheet equation broken", err)
		return err
	}

	if c.metrics != nil {
		c.metrics.IntegrityCheck("ok")
	}
	return nil
}

func (c *IntegrityChecker) report(tenantID uuid.UUID, msg string, err error) {
	if c.metrics != nil {
		c.metrics.IntegrityCheck("violation")
	}
	if c.logger != nil {
		c.logger.Error("ledger integrity violation",
			slog.String("tenant", tenantID.String()),
			slog.String("check", msg),
			slog.Any("error", err))
	}
}

func (c *IntegrityChecker) listTenants(ctx context.Context) ([]uuid.UUID, error) {
	rows, err := c.pool.Query(ctx, `SELECT DISTINCT tenant_id FROM accounts`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tenants []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		tenants = append(tenants, id)
	}
	return tenants, rows.Err()
}
