package postgresql

import (
	"context"
	"errors"

	"github.com/cmlabs-hris/staff-attendance/internal/domain/user"
	"github.com/cmlabs-hris/staff-attendance/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type userRepositoryImpl struct {
	db *database.DB
}

func NewUserRepository(db *database.DB) user.UserRepository {
	return &userRepositoryImpl{db: db}
}

// GetByID implements user.UserRepository.
func (r *userRepositoryImpl) GetByID(ctx context.Context, id string) (user.User, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, password_hash, full_name, created_at, updated_at
		FROM users
		WHERE id = $1
	`

	var found user.User
	err := q.QueryRow(ctx, query, id).Scan(
		&found.ID,
		&found.PasswordHash,
		&found.FullName,
		&found.CreatedAt,
		&found.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrUserNotFound
		}
		return user.User{}, err
	}

	return found, nil
}

// CreateIfAbsent implements user.UserRepository.
func (r *userRepositoryImpl) CreateIfAbsent(ctx context.Context, newUser user.User) (user.User, bool, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO users (id, password_hash, full_name)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO NOTHING
		RETURNING id, password_hash, full_name, created_at, updated_at
	`

	var created user.User
	err := q.QueryRow(ctx, query, newUser.ID, newUser.PasswordHash, newUser.FullName).Scan(
		&created.ID,
		&created.PasswordHash,
		&created.FullName,
		&created.CreatedAt,
		&created.UpdatedAt,
	)
	if err == nil {
		return created, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return user.User{}, false, err
	}

	// Conflict: another caller created the row first.
	existing, err := r.GetByID(ctx, newUser.ID)
	if err != nil {
		return user.User{}, false, err
	}
	return existing, false, nil
}

func (r *userRepositoryImpl) updateColumn(ctx context.Context, query string, id, value string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, query, value, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return user.ErrUserNotFound
	}
	return nil
}

// UpdatePasswordHash implements user.UserRepository.
func (r *userRepositoryImpl) UpdatePasswordHash(ctx context.Context, id string, passwordHash string) error {
	return r.updateColumn(ctx, `UPDATE users SET password_hash = $1, updated_at = NOW() WHERE id = $2`, id, passwordHash)
}

// UpdateFullName implements user.UserRepository.
func (r *userRepositoryImpl) UpdateFullName(ctx context.Context, id string, fullName string) error {
	return r.updateColumn(ctx, `UPDATE users SET full_name = $1, updated_at = NOW() WHERE id = $2`, id, fullName)
}

// List implements user.UserRepository.
func (r *userRepositoryImpl) List(ctx context.Context) ([]user.User, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `
		SELECT id, password_hash, full_name, created_at, updated_at
		FROM users
		ORDER BY id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []user.User
	for rows.Next() {
		var u user.User
		if err := rows.Scan(&u.ID, &u.PasswordHash, &u.FullName, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// DeleteAll implements user.UserRepository.
func (r *userRepositoryImpl) DeleteAll(ctx context.Context) error {
	q := GetQuerier(ctx, r.db)

	_, err := q.Exec(ctx, `DELETE FROM users`)
	return err
}
