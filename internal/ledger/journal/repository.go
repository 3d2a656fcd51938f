package journal

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ledgerline/ledgerline/internal/ledger/shared"
	"github.com/ledgerline/ledgerline/internal/platform/db"
)

const entryColumns = `id, tenant_id, number, date, description, reference, source_kind, source_id, status, reverses_id, reversed_by, posted_at, created_at, updated_at`

// AccountMeta carries the posting-relevant account flags.
type AccountMeta struct {
	ID       int64
	IsActive bool
	IsHeader bool
}

// Repository persists journal entries and lines.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// TxRepository exposes transactional journal operations.
type TxRepository interface {
	InsertEntry(ctx context.Context, in DraftInput, status EntryStatus) (Entry, error)
	InsertLines(ctx context.Context, entryID int64, lines []LineInput) ([]Line, error)
	ReplaceLines(ctx context.Context, entryID int64, lines []LineInput) ([]Line, error)
	GetEntryWithLines(ctx context.Context, tenantID uuid.UUID, entryID int64) (Entry, error)
	UpdateDraftHeader(ctx context.Context, entry Entry) error
	DeleteEntry(ctx context.Context, tenantID uuid.UUID, entryID int64) error
	NextEntryNumber(ctx context.Context, tenantID uuid.UUID) (int64, error)
	MarkPosted(ctx context.Context, tenantID uuid.UUID, entryID, number int64, postedAt time.Time) error
	MarkReversed(ctx context.Context, tenantID uuid.UUID, entryID, reversedBy int64) error
	LinkReversal(ctx context.Context, tenantID uuid.UUID, reversalID, originalID int64) error
	AccountsMeta(ctx context.Context, tenantID uuid.UUID, accountIDs []int64) (map[int64]AccountMeta, error)
}

// WithTx executes fn within a repeatable-read transaction. Posting and
// reversal are atomic: either the header and every line commit, or none do.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	if r == nil {
		return errors.New("journal repository not initialised")
	}
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &txRepository{tx: tx})
	})
}

// List retrieves entries for a tenant, most recent first, without lines.
func (r *Repository) List(ctx context.Context, tenantID uuid.UUID) ([]Entry, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+entryColumns+` FROM journal_entries WHERE tenant_id=$1 ORDER BY date DESC, id DESC`, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var entries []Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// Get retrieves a single entry with lines outside a write transaction.
func (r *Repository) Get(ctx context.Context, tenantID uuid.UUID, entryID int64) (Entry, error) {
	var entry Entry
	err := r.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		var err error
		entry, err = tx.GetEntryWithLines(ctx, tenantID, entryID)
		return err
	})
	return entry, err
}

type txRepository struct {
	tx pgx.Tx
}

func (r *txRepository) InsertEntry(ctx context.Context, in DraftInput, status EntryStatus) (Entry, error) {
	var sourceKind, sourceID any
	if in.Source != nil {
		sourceKind = string(in.Source.Kind)
		sourceID = in.Source.ID
	}
	row := r.tx.QueryRow(ctx, `INSERT INTO journal_entries (tenant_id, date, description, reference, source_kind, source_id, status)
VALUES ($1,$2,$3,$4,$5,$6,$7) RETURNING `+entryColumns,
		in.TenantID, in.Date, in.Description, in.Reference, sourceKind, sourceID, status)
	return scanEntry(row)
}

func (r *txRepository) InsertLines(ctx context.Context, entryID int64, lines []LineInput) ([]Line, error) {
	out := make([]Line, 0, len(lines))
	for idx, line := range lines {
		var id int64
		err := r.tx.QueryRow(ctx, `INSERT INTO journal_lines (entry_id, account_id, debit, credit, tax_code, tax_amount, memo, sort_order)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8) RETURNING id`,
			entryID, line.AccountID, line.Debit, line.Credit, line.TaxCode, line.TaxAmount, line.Memo, idx).Scan(&id)
		if err != nil {
			return nil, err
		}
		out = append(out, Line{
			ID:        id,
			EntryID:   entryID,
			AccountID: line.AccountID,
			Debit:     line.Debit,
			Credit:    line.Credit,
			TaxCode:   line.TaxCode,
			TaxAmount: line.TaxAmount,
			Memo:      line.Memo,
			SortOrder: idx,
		})
	}
	return out, nil
}

func (r *txRepository) ReplaceLines(ctx context.Context, entryID int64, lines []LineInput) ([]Line, error) {
	if _, err := r.tx.Exec(ctx, `DELETE FROM journal_lines WHERE entry_id=$1`, entryID); err != nil {
		return nil, err
	}
	return r.InsertLines(ctx, entryID, lines)
}

func (r *txRepository) GetEntryWithLines(ctx context.Context, tenantID uuid.UUID, entryID int64) (Entry, error) {
	row := r.tx.QueryRow(ctx, `SELECT `+entryColumns+` FROM journal_entries WHERE tenant_id=$1 AND id=$2 FOR UPDATE`, tenantID, entryID)
	entry, err := scanEntry(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Entry{}, shared.ErrEntryNotFound
		}
		return Entry{}, err
	}
	rows, err := r.tx.Query(ctx, `SELECT id, entry_id, account_id, debit, credit, tax_code, tax_amount, memo, sort_order
FROM journal_lines WHERE entry_id=$1 ORDER BY sort_order ASC`, entryID)
	if err != nil {
		return Entry{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var line Line
		if err := rows.Scan(&line.ID, &line.EntryID, &line.AccountID, &line.Debit, &line.Credit, &line.TaxCode, &line.TaxAmount, &line.Memo, &line.SortOrder); err != nil {
			return Entry{}, err
		}
		entry.Lines = append(entry.Lines, line)
	}
	if err := rows.Err(); err != nil {
		return Entry{}, err
	}
	return entry, nil
}

func (r *txRepository) UpdateDraftHeader(ctx context.Context, entry Entry) error {
	var sourceKind, sourceID any
	if entry.Source != nil {
		sourceKind = string(entry.Source.Kind)
		sourceID = entry.Source.ID
	}
	cmd, err := r.tx.Exec(ctx, `UPDATE journal_entries SET date=$3, description=$4, reference=$5, source_kind=$6, source_id=$7, updated_at=NOW()
WHERE tenant_id=$1 AND id=$2 AND status='DRAFT'`,
		entry.TenantID, entry.ID, entry.Date, entry.Description, entry.Reference, sourceKind, sourceID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return shared.ErrEntryNotFound
	}
	return nil
}

func (r *txRepository) DeleteEntry(ctx context.Context, tenantID uuid.UUID, entryID int64) error {
	if _, err := r.tx.Exec(ctx, `DELETE FROM journal_lines WHERE entry_id=$1`, entryID); err != nil {
		return err
	}
	cmd, err := r.tx.Exec(ctx, `DELETE FROM journal_entries WHERE tenant_id=$1 AND id=$2`, tenantID, entryID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return shared.ErrEntryNotFound
	}
	return nil
}

// NextEntryNumber serialises per-tenant numbering through a row lock on
// ledger_sequences, so concurrent posts cannot observe duplicates or gaps.
func (r *txRepository) NextEntryNumber(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	var number int64
	err := r.tx.QueryRow(ctx, `INSERT INTO ledger_sequences (tenant_id, next_number) VALUES ($1, 2)
ON CONFLICT (tenant_id) DO UPDATE SET next_number = ledger_sequences.next_number + 1
RETURNING next_number - 1`, tenantID).Scan(&number)
	return number, err
}

func (r *txRepository) MarkPosted(ctx context.Context, tenantID uuid.UUID, entryID, number int64, postedAt time.Time) error {
	cmd, err := r.tx.Exec(ctx, `UPDATE journal_entries SET status='POSTED', number=$3, posted_at=$4, updated_at=NOW()
WHERE tenant_id=$1 AND id=$2 AND status='DRAFT'`, tenantID, entryID, number, postedAt)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return shared.ErrInvalidStatus
	}
	return nil
}

func (r *txRepository) MarkReversed(ctx context.Context, tenantID uuid.UUID, entryID, reversedBy int64) error {
	cmd, err := r.tx.Exec(ctx, `UPDATE journal_entries SET status='REVERSED', reversed_by=$3, updated_at=NOW()
WHERE tenant_id=$1 AND id=$2 AND status='POSTED'`, tenantID, entryID, reversedBy)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return shared.ErrInvalidStatus
	}
	return nil
}

func (r *txRepository) LinkReversal(ctx context.Context, tenantID uuid.UUID, reversalID, originalID int64) error {
	cmd, err := r.tx.Exec(ctx, `UPDATE journal_entries SET reverses_id=$3, updated_at=NOW()
WHERE tenant_id=$1 AND id=$2`, tenantID, reversalID, originalID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return shared.ErrEntryNotFound
	}
	return nil
}

func (r *txRepository) AccountsMeta(ctx context.Context, tenantID uuid.UUID, accountIDs []int64) (map[int64]AccountMeta, error) {
	rows, err := r.tx.Query(ctx, `SELECT id, is_active, is_header FROM accounts WHERE tenant_id=$1 AND id = ANY($2)`, tenantID, accountIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	metas := make(map[int64]AccountMeta, len(accountIDs))
	for rows.Next() {
		var meta AccountMeta
		if err := rows.Scan(&meta.ID, &meta.IsActive, &meta.IsHeader); err != nil {
			return nil, err
		}
		metas[meta.ID] = meta
	}
	return metas, rows.Err()
}

func scanEntry(row pgx.Row) (Entry, error) {
	var e Entry
	var sourceKind *string
	var sourceID *uuid.UUID
	err := row.Scan(&e.ID, &e.TenantID, &e.Number, &e.Date, &e.Description, &e.Reference, &sourceKind, &sourceID, &e.Status, &e.ReversesID, &e.ReversedBy, &e.PostedAt, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return Entry{}, err
	}
	if sourceKind != nil && sourceID != nil {
		e.Source = &SourceRef{Kind: SourceKind(*sourceKind), ID: *sourceID}
	}
	return e, nil
}
