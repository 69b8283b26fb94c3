package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"finance-tracker/internal/domain"
	"finance-tracker/internal/repository"
)

const maxDescriptionLen = 200

// LedgerService records and queries the caller's transactions. Every
// operation is scoped to the identity it is given; another user's rows are
// reported as ErrNotFound.
type LedgerService interface {
	Create(ctx context.Context, id domain.Identity, in domain.NewTransaction) (*domain.Transaction, error)
	Get(ctx context.Context, id domain.Identity, txID int64) (*domain.Transaction, error)
	List(ctx context.Context, id domain.Identity, filter domain.TransactionFilter, page domain.Page) ([]domain.Transaction, error)
	Update(ctx context.Context, id domain.Identity, txID int64, patch domain.TransactionPatch) (*domain.Transaction, error)
	Delete(ctx context.Context, id domain.Identity, txID int64) error
}

type ledgerService struct {
	transactions repository.TransactionRepository
}

func NewLedgerService(transactions repository.TransactionRepository) LedgerService {
	return &ledgerService{transactions: transactions}
}

func (s *ledgerService) Create(ctx context.Context, id domain.Identity, in domain.NewTransaction) (*domain.Transaction, error) {
	if in.Date.IsZero() {
		return nil, validationErr("date is required")
	}
	description, err := normalizeDescription(in.Description)
	if err != nil {
		return nil, err
	}

	tx := &domain.Transaction{
		UserID:      id.UserID,
		CategoryID:  in.CategoryID,
		Amount:      in.Amount,
		Date:        in.Date,
		Description: description,
	}
	if _, err := s.transactions.Create(ctx, tx); err != nil {
		return nil, translate(err)
	}
	return tx, nil
}

func (s *ledgerService) Get(ctx context.Context, id domain.Identity, txID int64) (*domain.Transaction, error) {
	tx, err := s.transactions.Get(ctx, id.UserID, txID)
	if err != nil {
		return nil, translate(err)
	}
	return tx, nil
}

func (s *ledgerService) List(ctx context.Context, id domain.Identity, filter domain.TransactionFilter, page domain.Page) ([]domain.Transaction, error) {
	if err := validateRange(filter.DateRange); err != nil {
		return nil, err
	}
	if filter.CategoryType != nil && !filter.CategoryType.Valid() {
		return nil, validationErr("type must be %q or %q", domain.CategoryTypeIncome, domain.CategoryTypeExpense)
	}
	page, err := normalizePage(page)
	if err != nil {
		return nil, err
	}

	transactions, err := s.transactions.List(ctx, id.UserID, filter, page)
	if err != nil {
		return nil, translate(err)
	}
	return transactions, nil
}

// Update applies only the fields present in patch. A category the caller does
// not own fails with ErrInvalidCategory and leaves the row untouched.
func (s *ledgerService) Update(ctx context.Context, id domain.Identity, txID int64, patch domain.TransactionPatch) (*domain.Transaction, error) {
	if patch.Date != nil && patch.Date.IsZero() {
		return nil, validationErr("date is required")
	}
	if patch.Description.Set {
		description, err := normalizeDescription(patch.Description.Value)
		if err != nil {
			return nil, err
		}
		patch.Description.Value = description
	}

	tx, err := s.transactions.Update(ctx, id.UserID, txID, patch)
	if err != nil {
		return nil, translate(err)
	}
	return tx, nil
}

func (s *ledgerService) Delete(ctx context.Context, id domain.Identity, txID int64) error {
	return translate(s.transactions.Delete(ctx, id.UserID, txID))
}

func normalizeDescription(description *string) (*string, error) {
	if description == nil {
		return nil, nil
	}
	trimmed := strings.TrimSpace(*description)
	if trimmed == "" {
		return nil, nil
	}
	if utf8.RuneCountInString(trimmed) > maxDescriptionLen {
		return nil, validationErr("description must be at most %d characters", maxDescriptionLen)
	}
	return &trimmed, nil
}

func normalizePage(page domain.Page) (domain.Page, error) {
	if page.Number == 0 {
		page.Number = 1
	}
	if page.Size == 0 {
		page.Size = domain.DefaultPageSize
	}
	if page.Number < 1 {
		return page, validationErr("page must be at least 1")
	}
	if page.Size < 1 || page.Size > domain.MaxPageSize {
		return page, validationErr("page_size must be between 1 and %d", domain.MaxPageSize)
	}
	return page, nil
}

func validateRange(r domain.DateRange) error {
	if r.From != nil && r.To != nil && r.From.After(r.To.Time) {
		return validationErr("start_date must not be after end_date")
	}
	return nil
}
