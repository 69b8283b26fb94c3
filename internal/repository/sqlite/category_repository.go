package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"finance-tracker/internal/domain"
	"finance-tracker/internal/repository"
)

type CategoryRepository struct {
	db *sql.DB
}

func NewCategoryRepository(db *sql.DB) repository.CategoryRepository {
	return &CategoryRepository{db: db}
}

func (r *CategoryRepository) Create(ctx context.Context, category *domain.Category) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
INSERT INTO categories (user_id, name, type)
VALUES (?, ?, ?)`,
		category.UserID,
		category.Name,
		string(category.Type),
	)
	if err != nil {
		return 0, storeErr("insert category", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, storeErr("category last insert id", err)
	}
	category.ID = id
	return id, nil
}

func (r *CategoryRepository) ListByOwner(ctx context.Context, ownerID int64) ([]domain.Category, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, user_id, name, type
FROM categories
WHERE user_id = ?
ORDER BY id ASC`,
		ownerID,
	)
	if err != nil {
		return nil, storeErr("query categories", err)
	}
	defer rows.Close()

	categories := []domain.Category{}
	for rows.Next() {
		category, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		categories = append(categories, *category)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("iterate categories", err)
	}
	return categories, nil
}

func (r *CategoryRepository) Delete(ctx context.Context, ownerID, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE id = ? AND user_id = ?`, id, ownerID)
	if err != nil {
		return storeErr("delete category", err)
	}
	aff, err := res.RowsAffected()
	if err != nil {
		return storeErr("category delete rows affected", err)
	}
	if aff == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// ensureCategoryOwned checks within tx that id names a category of ownerID.
func ensureCategoryOwned(ctx context.Context, tx *sql.Tx, ownerID, id int64) error {
	var found int
	err := tx.QueryRowContext(ctx, `SELECT 1 FROM categories WHERE id = ? AND user_id = ?`, id, ownerID).Scan(&found)
	if errors.Is(err, sql.ErrNoRows) {
		return repository.ErrCategoryNotFound
	}
	if err != nil {
		return storeErr("check category owner", err)
	}
	return nil
}

func scanCategory(row rowScanner) (*domain.Category, error) {
	var (
		category domain.Category
		ctype    string
	)
	if err := row.Scan(&category.ID, &category.UserID, &category.Name, &ctype); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, storeErr("scan category", err)
	}
	category.Type = domain.CategoryType(ctype)
	return &category, nil
}
