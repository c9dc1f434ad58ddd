package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cmlabs-hris/staff-attendance/internal/domain/auth"
	"github.com/cmlabs-hris/staff-attendance/internal/domain/user"
	"github.com/cmlabs-hris/staff-attendance/internal/pkg/jwt"
	"github.com/cmlabs-hris/staff-attendance/internal/pkg/normalize"
	"github.com/cmlabs-hris/staff-attendance/internal/pkg/validator"
	"github.com/go-chi/jwtauth/v5"
	"golang.org/x/crypto/bcrypt"
)

type AuthServiceImpl struct {
	user.UserRepository
	jwt.Service
	defaultPassword string
	adminIDs        map[string]struct{}
	cost            int
}

func NewAuthService(userRepository user.UserRepository, jwtService jwt.Service, defaultPassword string, adminIDs []string) auth.AuthService {
	admins := make(map[string]struct{}, len(adminIDs))
	for _, id := range adminIDs {
		if id = normalize.Identifier(id); id != "" {
			admins[id] = struct{}{}
		}
	}
	return &AuthServiceImpl{
		UserRepository:  userRepository,
		Service:         jwtService,
		defaultPassword: defaultPassword,
		adminIDs:        admins,
		cost:            bcrypt.DefaultCost,
	}
}

func (a *AuthServiceImpl) hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), a.cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// currentUserID reads the user_id claim of the verified access token.
func currentUserID(ctx context.Context) (string, error) {
	_, claims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to extract claims from context: %w", err)
	}
	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return "", auth.ErrInvalidToken
	}
	return userID, nil
}

// IsAdmin implements auth.AuthService.
func (a *AuthServiceImpl) IsAdmin(id string) bool {
	_, ok := a.adminIDs[normalize.Identifier(id)]
	return ok
}

// EnsureUser implements auth.CredentialStore.
func (a *AuthServiceImpl) EnsureUser(ctx context.Context, id string) error {
	id = normalize.Identifier(id)
	if _, err := a.UserRepository.GetByID(ctx, id); err == nil {
		return nil
	} else if !errors.Is(err, user.ErrUserNotFound) {
		return fmt.Errorf("failed to get user: %w", err)
	}

	hash, err := a.hashPassword(a.defaultPassword)
	if err != nil {
		return fmt.Errorf("failed to hash default password: %w", err)
	}

	now := time.Now().UTC()
	_, created, err := a.UserRepository.CreateIfAbsent(ctx, user.User{
		ID:           id,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	if created {
		slog.Info("Created user with default password", "user_id", id)
	}
	return nil
}

// storedHash returns the user's hash, resetting hashes that are not bcrypt
// strings to the default password.
func (a *AuthServiceImpl) storedHash(ctx context.Context, id string) (string, error) {
	u, err := a.UserRepository.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	if _, err := bcrypt.Cost([]byte(u.PasswordHash)); err == nil {
		return u.PasswordHash, nil
	}

	slog.Warn("Resetting legacy password hash to default", "user_id", id)
	hash, err := a.hashPassword(a.defaultPassword)
	if err != nil {
		return "", fmt.Errorf("failed to hash default password: %w", err)
	}
	if err := a.UserRepository.UpdatePasswordHash(ctx, id, hash); err != nil {
		return "", fmt.Errorf("failed to reset password hash: %w", err)
	}
	return hash, nil
}

// Verify implements auth.CredentialStore.
func (a *AuthServiceImpl) Verify(ctx context.Context, id, secret string) (bool, error) {
	hash, err := a.storedHash(ctx, normalize.Identifier(id))
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return false, nil
		}
		return false, err
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(secret)) == nil, nil
}

// GetDisplayName implements auth.CredentialStore.
func (a *AuthServiceImpl) GetDisplayName(ctx context.Context, id string) (string, error) {
	u, err := a.UserRepository.GetByID(ctx, normalize.Identifier(id))
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return "", auth.ErrUserNotFound
		}
		return "", fmt.Errorf("failed to get user: %w", err)
	}
	return u.FullName, nil
}

// SetDisplayName implements auth.CredentialStore.
func (a *AuthServiceImpl) SetDisplayName(ctx context.Context, id, name string) error {
	if err := a.UserRepository.UpdateFullName(ctx, normalize.Identifier(id), strings.TrimSpace(name)); err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return auth.ErrUserNotFound
		}
		return fmt.Errorf("failed to update full name: %w", err)
	}
	return nil
}

// IsUsingDefaultSecret implements auth.CredentialStore.
func (a *AuthServiceImpl) IsUsingDefaultSecret(ctx context.Context, id string) (bool, error) {
	hash, err := a.storedHash(ctx, normalize.Identifier(id))
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return false, auth.ErrUserNotFound
		}
		return false, err
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(a.defaultPassword)) == nil, nil
}

// SetSecret implements auth.CredentialStore.
func (a *AuthServiceImpl) SetSecret(ctx context.Context, id, secret string) error {
	if !validator.HasMinLength(secret, auth.MinPasswordLength) {
		return validator.ValidationErrors{{
			Field:   "new_password",
			Message: "new_password must be at least 6 characters long",
		}}
	}

	hash, err := a.hashPassword(secret)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := a.UserRepository.UpdatePasswordHash(ctx, normalize.Identifier(id), hash); err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return auth.ErrUserNotFound
		}
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}

func (a *AuthServiceImpl) userResponse(ctx context.Context, id string) (user.UserResponse, error) {
	u, err := a.UserRepository.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return user.UserResponse{}, auth.ErrUserNotFound
		}
		return user.UserResponse{}, fmt.Errorf("failed to get user: %w", err)
	}
	usingDefault, err := a.IsUsingDefaultSecret(ctx, id)
	if err != nil {
		return user.UserResponse{}, err
	}
	return user.UserResponse{
		ID:                 u.ID,
		FullName:           u.FullName,
		IsAdmin:            a.IsAdmin(u.ID),
		MustChangePassword: usingDefault,
		NameSet:            u.NameSet(),
	}, nil
}

// Login implements auth.AuthService.
func (a *AuthServiceImpl) Login(ctx context.Context, req auth.LoginRequest) (auth.LoginResponse, error) {
	if err := req.Validate(); err != nil {
		return auth.LoginResponse{}, err
	}
	id := normalize.Identifier(req.ID)

	if err := a.EnsureUser(ctx, id); err != nil {
		return auth.LoginResponse{}, err
	}

	ok, err := a.Verify(ctx, id, strings.TrimSpace(req.Password))
	if err != nil {
		return auth.LoginResponse{}, fmt.Errorf("failed to verify password: %w", err)
	}
	if !ok {
		return auth.LoginResponse{}, auth.ErrInvalidCredentials
	}

	profile, err := a.userResponse(ctx, id)
	if err != nil {
		return auth.LoginResponse{}, err
	}

	token, expiresAt, err := a.Service.GenerateAccessToken(id, profile.IsAdmin)
	if err != nil {
		return auth.LoginResponse{}, fmt.Errorf("failed to generate access token: %w", err)
	}

	return auth.LoginResponse{
		AccessToken:          token,
		AccessTokenExpiresIn: expiresAt,
		UserID:               profile.ID,
		FullName:             profile.FullName,
		IsAdmin:              profile.IsAdmin,
		MustChangePassword:   profile.MustChangePassword,
		NameSet:              profile.NameSet,
	}, nil
}

// ChangePassword implements auth.AuthService.
func (a *AuthServiceImpl) ChangePassword(ctx context.Context, req auth.ChangePasswordRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	userID, err := currentUserID(ctx)
	if err != nil {
		return err
	}
	return a.SetSecret(ctx, userID, req.NewPassword)
}

// UpdateProfile implements auth.AuthService.
func (a *AuthServiceImpl) UpdateProfile(ctx context.Context, req user.UpdateProfileRequest) (user.UserResponse, error) {
	if err := req.Validate(); err != nil {
		return user.UserResponse{}, err
	}
	userID, err := currentUserID(ctx)
	if err != nil {
		return user.UserResponse{}, err
	}
	if err := a.SetDisplayName(ctx, userID, req.FullName); err != nil {
		return user.UserResponse{}, err
	}
	return a.userResponse(ctx, userID)
}

// Me implements auth.AuthService.
func (a *AuthServiceImpl) Me(ctx context.Context) (user.UserResponse, error) {
	userID, err := currentUserID(ctx)
	if err != nil {
		return user.UserResponse{}, err
	}
	return a.userResponse(ctx, userID)
}
