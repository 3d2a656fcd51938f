package accounts

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ledgerline/ledgerline/internal/ledger/shared"
	"github.com/ledgerline/ledgerline/internal/platform/db"
)

const accountColumns = `id, tenant_id, code, name, class, parent_id, is_header, is_active, expense_group, tax_code, opening_balance, opening_date, created_at, updated_at`

// Repository persists chart of accounts entries.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// TxRepository exposes transactional account operations.
type TxRepository interface {
	GetAccount(ctx context.Context, tenantID uuid.UUID, id int64) (Account, error)
	ListAccounts(ctx context.Context, tenantID uuid.UUID) ([]Account, error)
	InsertAccount(ctx context.Context, in CreateInput) (Account, error)
	UpdateAccount(ctx context.Context, account Account) error
	HasPostedLines(ctx context.Context, tenantID uuid.UUID, accountID int64) (bool, error)
}

// WithTx executes fn within a repeatable-read transaction.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	if r == nil {
		return errors.New("accounts repository not initialised")
	}
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &txRepository{tx: tx})
	})
}

// List retrieves the full chart of accounts for a tenant.
func (r *Repository) List(ctx context.Context, tenantID uuid.UUID) ([]Account, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+accountColumns+` FROM accounts WHERE tenant_id=$1 ORDER BY code`, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAccounts(rows)
}

type txRepository struct {
	tx pgx.Tx
}

func (r *txRepository) GetAccount(ctx context.Context, tenantID uuid.UUID, id int64) (Account, error) {
	row := r.tx.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE tenant_id=$1 AND id=$2 FOR UPDATE`, tenantID, id)
	account, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Account{}, shared.ErrAccountNotFound
		}
		return Account{}, err
	}
	return account, nil
}

func (r *txRepository) ListAccounts(ctx context.Context, tenantID uuid.UUID) ([]Account, error) {
	rows, err := r.tx.Query(ctx, `SELECT `+accountColumns+` FROM accounts WHERE tenant_id=$1 ORDER BY code`, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAccounts(rows)
}

func (r *txRepository) InsertAccount(ctx context.Context, in CreateInput) (Account, error) {
	group := in.ExpenseGroup
	if in.Class == ClassExpense && group == "" {
		group = ExpenseOperating
	}
	row := r.tx.QueryRow(ctx, `INSERT INTO accounts (tenant_id, code, name, class, parent_id, is_header, is_active, expense_group, tax_code, opening_balance, opening_date)
VALUES ($1,$2,$3,$4,$5,$6,TRUE,$7,$8,$9,$10) RETURNING `+accountColumns,
		in.TenantID, in.Code, in.Name, in.Class, in.ParentID, in.IsHeader, nullString(string(group)), in.TaxCode, in.OpeningBalance, in.OpeningDate)
	account, err := scanAccount(row)
	if err != nil {
		if isDuplicateCode(err) {
			return Account{}, shared.ErrDuplicateCode
		}
		return Account{}, err
	}
	return account, nil
}

func (r *txRepository) UpdateAccount(ctx context.Context, account Account) error {
	cmd, err := r.tx.Exec(ctx, `UPDATE accounts SET code=$3, name=$4, class=$5, parent_id=$6, is_active=$7, tax_code=$8, updated_at=NOW()
WHERE tenant_id=$1 AND id=$2`,
		account.TenantID, account.ID, account.Code, account.Name, account.Class, account.ParentID, account.IsActive, account.TaxCode)
	if err != nil {
		if isDuplicateCode(err) {
			return shared.ErrDuplicateCode
		}
		return err
	}
	if cmd.RowsAffected() == 0 {
		return shared.ErrAccountNotFound
	}
	return nil
}

// isDuplicateCode recognises the tenant+code unique constraint from pgx v5
// errors, including wrapped ones.
func isDuplicateCode(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.ConstraintName == "uq_accounts_tenant_code"
}

func (r *txRepository) HasPostedLines(ctx context.Context, tenantID uuid.UUID, accountID int64) (bool, error) {
	var exists bool
	err := r.tx.QueryRow(ctx, `SELECT EXISTS (
SELECT 1 FROM journal_lines l JOIN journal_entries e ON e.id = l.entry_id
WHERE e.tenant_id=$1 AND l.account_id=$2 AND e.status IN ('POSTED','REVERSED'))`, tenantID, accountID).Scan(&exists)
	return exists, err
}

func scanAccount(row pgx.Row) (Account, error) {
	var a Account
	var group *string
	err := row.Scan(&a.ID, &a.TenantID, &a.Code, &a.Name, &a.Class, &a.ParentID, &a.IsHeader, &a.IsActive, &group, &a.TaxCode, &a.OpeningBalance, &a.OpeningDate, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return Account{}, err
	}
	if group != nil {
		a.ExpenseGroup = ExpenseGroup(*group)
	}
	return a, nil
}

func scanAccounts(rows pgx.Rows) ([]Account, error) {
	var accounts []Account
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
	}
	return accounts, rows.Err()
}

func nullString(val string) any {
	if val == "" {
		return nil
	}
	return val
}
