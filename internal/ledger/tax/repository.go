package tax

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository provides PostgreSQL backed persistence for tax codes and the
// aggregation query.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ListCodes returns the tenant's configured tax codes ordered by code.
func (r *Repository) ListCodes(ctx context.Context, tenantID uuid.UUID) ([]Code, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, tenant_id, code, name, rate FROM tax_codes WHERE tenant_id = $1 ORDER BY code`,
		tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var codes []Code
	for rows.Next() {
		var c Code
		if err := rows.Scan(&c.ID, &c.TenantID, &c.Code, &c.Name, &c.Rate); err != nil {
			return nil, err
		}
		codes = append(codes, c)
	}
	return codes, rows.Err()
}

// UpsertCode creates or updates a tax code keyed by (tenant, code).
func (r *Repository) UpsertCode(ctx context.Context, c Code) (Code, error) {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO tax_codes (tenant_id, code, name, rate)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (tenant_id, code) DO UPDATE SET name = EXCLUDED.name, rate = EXCLUDED.rate
		RETURNING id`,
		c.TenantID, c.Code, c.Name, c.Rate).Scan(&c.ID)
	return c, err
}

// GetCode fetches one tax code by its symbolic code.
func (r *Repository) GetCode(ctx context.Context, tenantID uuid.UUID, code string) (Code, error) {
	var c Code
	err := r.pool.QueryRow(ctx,
		`SELECT id, tenant_id, code, name, rate FROM tax_codes WHERE tenant_id = $1 AND code = $2`,
		tenantID, code).Scan(&c.ID, &c.TenantID, &c.Code, &c.Name, &c.Rate)
	if err == pgx.ErrNoRows {
		return Code{}, ErrCodeNotFound
	}
	return c, err
}

// CollectedLine is the raw aggregation row before code metadata is joined in.
type CollectedLine struct {
	Code      string
	TaxAmount float64
	BaseCount int
}

// Collected sums tagged tax amounts per code over entries dated within the
// period. Reversed entries stay in scope; their mirror entries carry negated
// tax amounts, so the pair nets to zero.
func (r *Repository) Collected(ctx context.Context, tenantID uuid.UUID, start, end time.Time) ([]CollectedLine, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT l.tax_code, COALESCE(SUM(l.tax_amount), 0), COUNT(*)
		FROM journal_lines l
		JOIN journal_entries e ON e.id = l.entry_id
		WHERE e.tenant_id = $1
		  AND e.status IN ('POSTED', 'REVERSED')
		  AND e.date >= $2 AND e.date <= $3
		  AND l.tax_code IS NOT NULL
		GROUP BY l.tax_code
		ORDER BY l.tax_code`,
		tenantID, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []CollectedLine
	for rows.Next() {
		var line CollectedLine
		if err := rows.Scan(&line.Code, &line.TaxAmount, &line.BaseCount); err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
	return lines, rows.Err()
}
