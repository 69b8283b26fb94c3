package repository

import (
	"context"

	"finance-tracker/internal/domain"
)

// TransactionRepository exposes the ledger. Lookups match id and owner in a
// single predicate so foreign rows are indistinguishable from missing ones.
type TransactionRepository interface {
	Create(ctx context.Context, tx *domain.Transaction) (int64, error)
	Get(ctx context.Context, ownerID, id int64) (*domain.Transaction, error)
	List(ctx context.Context, ownerID int64, filter domain.TransactionFilter, page domain.Page) ([]domain.Transaction, error)
	Update(ctx context.Context, ownerID, id int64, patch domain.TransactionPatch) (*domain.Transaction, error)
	Delete(ctx context.Context, ownerID, id int64) error
}

// SummaryRepository computes aggregates over an owner's ledger.
type SummaryRepository interface {
	Totals(ctx context.Context, ownerID int64, dates domain.DateRange) (domain.Summary, error)
	Monthly(ctx context.Context, ownerID int64) ([]domain.MonthlySummary, error)
}
