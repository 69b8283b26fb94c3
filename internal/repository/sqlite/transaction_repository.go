package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"finance-tracker/internal/domain"
	"finance-tracker/internal/repository"
)

const selectTransaction = `
SELECT t.id, t.user_id, t.category_id, t.amount_cents, t.date, t.description, t.created_at
FROM transactions t`

type TransactionRepository struct {
	db *sql.DB
}

func NewTransactionRepository(db *sql.DB) repository.TransactionRepository {
	return &TransactionRepository{db: db}
}

func (r *TransactionRepository) Create(ctx context.Context, t *domain.Transaction) (int64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, storeErr("begin tx", err)
	}
	defer tx.Rollback()

	if t.CategoryID != nil {
		if err := ensureCategoryOwned(ctx, tx, t.UserID, *t.CategoryID); err != nil {
			return 0, err
		}
	}

	t.CreatedAt = time.Now().UTC()
	res, err := tx.ExecContext(ctx, `
INSERT INTO transactions (user_id, category_id, amount_cents, date, description, created_at)
VALUES (?, ?, ?, ?, ?, ?)`,
		t.UserID,
		nullInt64(t.CategoryID),
		t.Amount.Cents(),
		t.Date.String(),
		nullString(t.Description),
		t.CreatedAt,
	)
	if err != nil {
		return 0, storeErr("insert transaction", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, storeErr("transaction last insert id", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, storeErr("commit transaction insert", err)
	}
	t.ID = id
	return id, nil
}

func (r *TransactionRepository) Get(ctx context.Context, ownerID, id int64) (*domain.Transaction, error) {
	return getTransaction(ctx, r.db, ownerID, id)
}

func (r *TransactionRepository) List(ctx context.Context, ownerID int64, filter domain.TransactionFilter, page domain.Page) ([]domain.Transaction, error) {
	from, where, args := ledgerView(ownerID, filter)
	query := fmt.Sprintf(`%s
%s
WHERE %s
ORDER BY t.date DESC, t.id DESC
LIMIT ? OFFSET ?`, selectTransaction, from, where)
	args = append(args, page.Size, page.Offset())

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storeErr("query transactions", err)
	}
	defer rows.Close()

	transactions := []domain.Transaction{}
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("iterate transactions", err)
	}
	return transactions, nil
}

// Update runs the ownership lookup, category check and write in one store
// transaction.
func (r *TransactionRepository) Update(ctx context.Context, ownerID, id int64, patch domain.TransactionPatch) (*domain.Transaction, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, storeErr("begin tx", err)
	}
	defer tx.Rollback()

	current, err := getTransaction(ctx, tx, ownerID, id)
	if err != nil {
		return nil, err
	}
	if patch.Empty() {
		return current, nil
	}

	if patch.CategoryID.Set && patch.CategoryID.Value != nil {
		if err := ensureCategoryOwned(ctx, tx, ownerID, *patch.CategoryID.Value); err != nil {
			return nil, err
		}
	}

	patch.Apply(current)
	if _, err := tx.ExecContext(ctx, `
UPDATE transactions
SET category_id=?, amount_cents=?, date=?, description=?
WHERE id=? AND user_id=?`,
		nullInt64(current.CategoryID),
		current.Amount.Cents(),
		current.Date.String(),
		nullString(current.Description),
		id,
		ownerID,
	); err != nil {
		return nil, storeErr("update transaction", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, storeErr("commit transaction update", err)
	}
	return current, nil
}

func (r *TransactionRepository) Delete(ctx context.Context, ownerID, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ? AND user_id = ?`, id, ownerID)
	if err != nil {
		return storeErr("delete transaction", err)
	}
	aff, err := res.RowsAffected()
	if err != nil {
		return storeErr("transaction delete rows affected", err)
	}
	if aff == 0 {
		return repository.ErrNotFound
	}
	return nil
}

type rowQuerier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func getTransaction(ctx context.Context, q rowQuerier, ownerID, id int64) (*domain.Transaction, error) {
	row := q.QueryRowContext(ctx, selectTransaction+`
WHERE t.id = ? AND t.user_id = ?`,
		id,
		ownerID,
	)
	return scanTransaction(row)
}

// ledgerView renders the FROM/JOIN and WHERE clauses shared by listings and
// aggregates so both see the same rows for the same filter.
func ledgerView(ownerID int64, filter domain.TransactionFilter) (string, string, []any) {
	joins := ""
	conds := []string{"t.user_id = ?"}
	args := []any{ownerID}

	if filter.From != nil {
		conds = append(conds, "t.date >= ?")
		args = append(args, filter.From.String())
	}
	if filter.To != nil {
		conds = append(conds, "t.date <= ?")
		args = append(args, filter.To.String())
	}
	if filter.CategoryID != nil {
		conds = append(conds, "t.category_id = ?")
		args = append(args, *filter.CategoryID)
	}
	if filter.CategoryType != nil {
		joins = "INNER JOIN categories c ON c.id = t.category_id AND c.user_id = t.user_id"
		conds = append(conds, "c.type = ?")
		args = append(args, string(*filter.CategoryType))
	}

	return joins, strings.Join(conds, " AND "), args
}

func scanTransaction(row rowScanner) (*domain.Transaction, error) {
	var (
		t           domain.Transaction
		categoryID  sql.NullInt64
		cents       int64
		date        string
		description sql.NullString
	)
	if err := row.Scan(
		&t.ID,
		&t.UserID,
		&categoryID,
		&cents,
		&date,
		&description,
		&t.CreatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, storeErr("scan transaction", err)
	}

	parsed, err := domain.ParseDate(date)
	if err != nil {
		return nil, fmt.Errorf("transaction %d: %w", t.ID, err)
	}
	t.Date = parsed
	t.Amount = domain.MoneyFromCents(cents)
	if categoryID.Valid {
		v := categoryID.Int64
		t.CategoryID = &v
	}
	if description.Valid {
		v := description.String
		t.Description = &v
	}
	return &t, nil
}
