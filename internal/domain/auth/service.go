package auth

import (
	"context"

	"github.com/cmlabs-hris/staff-attendance/internal/domain/user"
)

// CredentialStore verifies secrets and keeps display names per identifier.
type CredentialStore interface {
	// EnsureUser creates the identifier with the default secret unless it exists
	EnsureUser(ctx context.Context, id string) error
	Verify(ctx context.Context, id, secret string) (bool, error)
	GetDisplayName(ctx context.Context, id string) (string, error)
	SetDisplayName(ctx context.Context, id, name string) error
	IsUsingDefaultSecret(ctx context.Context, id string) (bool, error)
	SetSecret(ctx context.Context, id, secret string) error
}

type AuthService interface {
	CredentialStore

	// Login creates unknown identifiers on first contact, then verifies the secret
	Login(ctx context.Context, req LoginRequest) (LoginResponse, error)

	// The methods below act on the user in the request's access token
	ChangePassword(ctx context.Context, req ChangePasswordRequest) error
	UpdateProfile(ctx context.Context, req user.UpdateProfileRequest) (user.UserResponse, error)
	Me(ctx context.Context) (user.UserResponse, error)

	IsAdmin(id string) bool
}
