package service

import (
	"errors"
	"fmt"

	"finance-tracker/internal/repository"
)

var (
	// ErrNotFound is returned for missing records and for records owned by someone else.
	ErrNotFound = errors.New("not found")
	// ErrInvalidCategory indicates a category id the caller does not own.
	ErrInvalidCategory = errors.New("invalid category")
	// ErrValidation is wrapped with the offending field.
	ErrValidation = errors.New("validation failed")
)

func validationErr(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// translate maps repository sentinels onto service sentinels. Store failures
// keep their repository.ErrStoreUnavailable chain.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, repository.ErrCategoryNotFound):
		return ErrInvalidCategory
	default:
		return err
	}
}
