package repository

import (
	"context"

	"finance-tracker/internal/domain"
)

// UserRepository defines persistence operations for User entities.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (int64, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	// GetByLogin matches the identifier against username or email.
	GetByLogin(ctx context.Context, identifier string) (*domain.User, error)
	Delete(ctx context.Context, id int64) error
}
