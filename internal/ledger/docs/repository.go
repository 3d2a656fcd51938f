package docs

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ledgerline/ledgerline/internal/ledger/journal"
)

const documentColumns = `id, tenant_id, kind, number, party, issue_date, due_date, total, open_balance, created_at, updated_at`

// Repository provides PostgreSQL backed persistence for the registry.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Insert stores a new document and returns it fully populated.
func (r *Repository) Insert(ctx context.Context, in RegisterInput) (Document, error) {
	query := `
		INSERT INTO source_documents (
			id, tenant_id, kind, number, party, issue_date, due_date, total, open_balance, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8, NOW(), NOW())
		RETURNING ` + documentColumns

	row := r.pool.QueryRow(ctx, query,
		uuid.New(),
		in.TenantID,
		string(in.Kind),
		in.Number,
		in.Party,
		in.IssueDate,
		in.DueDate,
		in.Total,
	)
	return scanDocument(row)
}

// Get fetches a document by id within the tenant.
func (r *Repository) Get(ctx context.Context, tenantID, id uuid.UUID) (Document, error) {
	query := `SELECT ` + documentColumns + ` FROM source_documents WHERE tenant_id = $1 AND id = $2`
	doc, err := scanDocument(r.pool.QueryRow(ctx, query, tenantID, id))
	if err == pgx.ErrNoRows {
		return Document{}, ErrNotFound
	}
	return doc, err
}

// ApplySettlement atomically reduces the open balance. The guard in the WHERE
// clause rejects settlements that would push the balance negative.
func (r *Repository) ApplySettlement(ctx context.Context, in SettleInput) (Document, error) {
	query := `
		UPDATE source_documents
		SET open_balance = open_balance - $3, updated_at = NOW()
		WHERE tenant_id = $1 AND id = $2 AND open_balance >= $3
		RETURNING ` + documentColumns

	doc, err := scanDocument(r.pool.QueryRow(ctx, query, in.TenantID, in.ID, in.Amount))
	if err == pgx.ErrNoRows {
		if _, getErr := r.Get(ctx, in.TenantID, in.ID); getErr != nil {
			return Document{}, getErr
		}
		return Document{}, ErrOverSettled
	}
	return doc, err
}

// ListOutstanding returns documents of the given kind with an open balance,
// oldest due date first.
func (r *Repository) ListOutstanding(ctx context.Context, tenantID uuid.UUID, kind journal.SourceKind) ([]Document, error) {
	query := `
		SELECT ` + documentColumns + `
		FROM source_documents
		WHERE tenant_id = $1 AND kind = $2 AND open_balance > 0
		ORDER BY due_date NULLS LAST, number`

	rows, err := r.pool.Query(ctx, query, tenantID, string(kind))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

func scanDocument(row pgx.Row) (Document, error) {
	var doc Document
	var kind string
	err := row.Scan(
		&doc.ID,
		&doc.TenantID,
		&kind,
		&doc.Number,
		&doc.Party,
		&doc.IssueDate,
		&doc.DueDate,
		&doc.Total,
		&doc.OpenBalance,
		&doc.CreatedAt,
		&doc.UpdatedAt,
	)
	doc.Kind = journal.SourceKind(kind)
	return doc, err
}
