package user

import (
	"context"
)

type UserRepository interface {
	// GetByID returns ErrUserNotFound when the identifier is unknown
	GetByID(ctx context.Context, id string) (User, error)

	// CreateIfAbsent inserts newUser unless the identifier exists and returns the stored user.
	// created is false when another caller got there first.
	CreateIfAbsent(ctx context.Context, newUser User) (stored User, created bool, err error)

	UpdatePasswordHash(ctx context.Context, id, passwordHash string) error
	UpdateFullName(ctx context.Context, id, fullName string) error
	List(ctx context.Context) ([]User, error)
	DeleteAll(ctx context.Context) error
}
