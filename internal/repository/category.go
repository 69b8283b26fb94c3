package repository

import (
	"context"

	"finance-tracker/internal/domain"
)

// CategoryRepository persists categories. Every method is scoped by owner.
type CategoryRepository interface {
	Create(ctx context.Context, category *domain.Category) (int64, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]domain.Category, error)
	Delete(ctx context.Context, ownerID, id int64) error
}
