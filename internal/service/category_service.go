package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"finance-tracker/internal/domain"
	"finance-tracker/internal/repository"
)

const maxCategoryNameLen = 64

// CategoryService manages the caller's categories.
type CategoryService interface {
	Create(ctx context.Context, id domain.Identity, name, categoryType string) (*domain.Category, error)
	List(ctx context.Context, id domain.Identity) ([]domain.Category, error)
	Delete(ctx context.Context, id domain.Identity, categoryID int64) error
}

type categoryService struct {
	categories repository.CategoryRepository
}

func NewCategoryService(categories repository.CategoryRepository) CategoryService {
	return &categoryService{categories: categories}
}

func (s *categoryService) Create(ctx context.Context, id domain.Identity, name, categoryType string) (*domain.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, validationErr("name is required")
	}
	if utf8.RuneCountInString(name) > maxCategoryNameLen {
		return nil, validationErr("name must be at most %d characters", maxCategoryNameLen)
	}
	ctype, err := domain.ParseCategoryType(categoryType)
	if err != nil {
		return nil, validationErr("type must be %q or %q", domain.CategoryTypeIncome, domain.CategoryTypeExpense)
	}

	category := &domain.Category{UserID: id.UserID, Name: name, Type: ctype}
	if _, err := s.categories.Create(ctx, category); err != nil {
		return nil, translate(err)
	}
	return category, nil
}

func (s *categoryService) List(ctx context.Context, id domain.Identity) ([]domain.Category, error) {
	categories, err := s.categories.ListByOwner(ctx, id.UserID)
	if err != nil {
		return nil, translate(err)
	}
	return categories, nil
}

// Delete leaves the category's transactions in place, uncategorized.
func (s *categoryService) Delete(ctx context.Context, id domain.Identity, categoryID int64) error {
	return translate(s.categories.Delete(ctx, id.UserID, categoryID))
}
