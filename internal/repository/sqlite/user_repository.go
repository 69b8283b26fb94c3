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

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) repository.UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) (int64, error) {
	user.CreatedAt = time.Now().UTC()

	res, err := r.db.ExecContext(ctx, `
INSERT INTO users (username, email, password_hash, created_at)
VALUES (?, ?, ?, ?)`,
		user.Username,
		nullString(user.Email),
		user.PasswordHash,
		user.CreatedAt,
	)
	if err != nil {
		msg := strings.ToLower(err.Error())
		if strings.Contains(msg, "unique") {
			if strings.Contains(msg, "users.email") {
				return 0, fmt.Errorf("email: %w", repository.ErrConflict)
			}
			return 0, fmt.Errorf("username: %w", repository.ErrConflict)
		}
		return 0, storeErr("insert user", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, storeErr("user last insert id", err)
	}
	user.ID = id
	return id, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, username, email, password_hash, created_at
FROM users
WHERE id = ?`,
		id,
	)
	return scanUser(row)
}

func (r *UserRepository) GetByLogin(ctx context.Context, identifier string) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, username, email, password_hash, created_at
FROM users
WHERE username = ? OR email = ?
ORDER BY username = ? DESC
LIMIT 1`,
		identifier,
		identifier,
		identifier,
	)
	return scanUser(row)
}

func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return storeErr("delete user", err)
	}
	aff, err := res.RowsAffected()
	if err != nil {
		return storeErr("user delete rows affected", err)
	}
	if aff == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func scanUser(row rowScanner) (*domain.User, error) {
	var (
		user  domain.User
		email sql.NullString
	)
	if err := row.Scan(
		&user.ID,
		&user.Username,
		&email,
		&user.PasswordHash,
		&user.CreatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, storeErr("scan user", err)
	}
	if email.Valid {
		user.Email = &email.String
	}
	return &user, nil
}

func nullString(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func nullInt64(v *int64) any {
	if v == nil {
		return nil
	}
	return *v
}
