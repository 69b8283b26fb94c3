package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"finance-tracker/internal/domain"
	"finance-tracker/internal/repository"
)

// Uncategorized rows and rows whose category has another type fall into
// neither sum; COALESCE turns empty sums into zero.
const typedSums = `
	COALESCE(SUM(CASE WHEN c.type = 'income' THEN t.amount_cents END), 0),
	COALESCE(SUM(CASE WHEN c.type = 'expense' THEN t.amount_cents END), 0)`

type SummaryRepository struct {
	db *sql.DB
}

func NewSummaryRepository(db *sql.DB) repository.SummaryRepository {
	return &SummaryRepository{db: db}
}

func (r *SummaryRepository) Totals(ctx context.Context, ownerID int64, dates domain.DateRange) (domain.Summary, error) {
	_, where, args := ledgerView(ownerID, domain.TransactionFilter{DateRange: dates})
	query := fmt.Sprintf(`
SELECT %s
FROM transactions t
LEFT JOIN categories c ON c.id = t.category_id AND c.user_id = t.user_id
WHERE %s`, typedSums, where)

	var income, expense int64
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&income, &expense); err != nil {
		return domain.Summary{}, storeErr("query totals", err)
	}
	return domain.NewSummary(domain.MoneyFromCents(income), domain.MoneyFromCents(expense)), nil
}

func (r *SummaryRepository) Monthly(ctx context.Context, ownerID int64) ([]domain.MonthlySummary, error) {
	query := fmt.Sprintf(`
SELECT
	CAST(substr(t.date, 1, 4) AS INTEGER) AS year,
	CAST(substr(t.date, 6, 2) AS INTEGER) AS month,
%s
FROM transactions t
LEFT JOIN categories c ON c.id = t.category_id AND c.user_id = t.user_id
WHERE t.user_id = ?
GROUP BY year, month
ORDER BY year ASC, month ASC`, typedSums)

	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, storeErr("query monthly totals", err)
	}
	defer rows.Close()

	months := []domain.MonthlySummary{}
	for rows.Next() {
		var (
			bucket          domain.MonthlySummary
			income, expense int64
		)
		if err := rows.Scan(&bucket.Year, &bucket.Month, &income, &expense); err != nil {
			return nil, storeErr("scan monthly totals", err)
		}
		bucket.Summary = domain.NewSummary(domain.MoneyFromCents(income), domain.MoneyFromCents(expense))
		months = append(months, bucket)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("iterate monthly totals", err)
	}
	return months, nil
}
