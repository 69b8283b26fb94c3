package repository

import "errors"

var (
	// ErrNotFound is returned when no row matches both the id and the owner.
	ErrNotFound = errors.New("not found")
	// ErrCategoryNotFound is returned when a referenced category does not
	// exist or belongs to another user.
	ErrCategoryNotFound = errors.New("category not found")
	// ErrConflict is returned when a unique constraint rejects a write.
	ErrConflict = errors.New("conflict")
	// ErrStoreUnavailable wraps infrastructure failures of the backing store.
	ErrStoreUnavailable = errors.New("store unavailable")
)
