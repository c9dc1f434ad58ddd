package auth

import (
	"context"
	"testing"

	"github.com/cmlabs-hris/staff-attendance/internal/domain/auth"
	"github.com/cmlabs-hris/staff-attendance/internal/domain/user"
	"github.com/cmlabs-hris/staff-attendance/internal/pkg/jwt"
	"github.com/cmlabs-hris/staff-attendance/internal/pkg/storage"
	"github.com/cmlabs-hris/staff-attendance/internal/pkg/validator"
	"github.com/cmlabs-hris/staff-attendance/internal/repository/file"
	"github.com/go-chi/jwtauth/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const (
	testAccessExp       = "1h"
	testSecret          = "test-secret-key-for-jwt"
	testDefaultPassword = "welcome1"
)

type authFixture struct {
	svc   *AuthServiceImpl
	users user.UserRepository
	jwt   jwt.Service
}

func newAuthFixture(t *testing.T) authFixture {
	t.Helper()
	fs, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	users := file.NewUserRepository(fs)
	jwtService := jwt.NewJWTService(testSecret, testAccessExp)
	svc := NewAuthService(users, jwtService, testDefaultPassword, []string{" admin01 "}).(*AuthServiceImpl)
	svc.cost = bcrypt.MinCost
	return authFixture{svc: svc, users: users, jwt: jwtService}
}

// withToken returns a context carrying the verified claims of a fresh token.
func (f authFixture) withToken(t *testing.T, userID string) context.Context {
	t.Helper()
	tokenString, _, err := f.jwt.GenerateAccessToken(userID, f.svc.IsAdmin(userID))
	require.NoError(t, err)
	token, err := f.jwt.JWTAuth().Decode(tokenString)
	require.NoError(t, err)
	return jwtauth.NewContext(context.Background(), token, nil)
}

func TestLogin_FirstLoginCreatesUser(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	resp, err := f.svc.Login(ctx, auth.LoginRequest{ID: "emp01", Password: testDefaultPassword})
	require.NoError(t, err)

	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, "EMP01", resp.UserID)
	assert.True(t, resp.MustChangePassword)
	assert.False(t, resp.NameSet)
	assert.False(t, resp.IsAdmin)

	stored, err := f.users.GetByID(ctx, "EMP01")
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte(testDefaultPassword)))
}

func TestLogin_WrongPassword(t *testing.T) {
	f := newAuthFixture(t)

	_, err := f.svc.Login(context.Background(), auth.LoginRequest{ID: "EMP01", Password: "nope-nope"})
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
}

func TestLogin_Validation(t *testing.T) {
	f := newAuthFixture(t)

	_, err := f.svc.Login(context.Background(), auth.LoginRequest{ID: "", Password: ""})
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Len(t, verrs, 2)
}

func TestLogin_Admin(t *testing.T) {
	f := newAuthFixture(t)

	resp, err := f.svc.Login(context.Background(), auth.LoginRequest{ID: "Admin01", Password: testDefaultPassword})
	require.NoError(t, err)
	assert.True(t, resp.IsAdmin)
}

func TestVerify_LegacyHashIsReset(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	_, _, err := f.users.CreateIfAbsent(ctx, user.User{ID: "OLD1", PasswordHash: "5f4dcc3b5aa765d61d8327deb882cf99"})
	require.NoError(t, err)

	ok, err := f.svc.Verify(ctx, "old1", testDefaultPassword)
	require.NoError(t, err)
	assert.True(t, ok)

	stored, err := f.users.GetByID(ctx, "OLD1")
	require.NoError(t, err)
	_, err = bcrypt.Cost([]byte(stored.PasswordHash))
	assert.NoError(t, err)
}

func TestVerify_UnknownUser(t *testing.T) {
	f := newAuthFixture(t)

	ok, err := f.svc.Verify(context.Background(), "GHOST", testDefaultPassword)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestChangePassword(t *testing.T) {
	f := newAuthFixture(t)
	require.NoError(t, f.svc.EnsureUser(context.Background(), "EMP02"))
	ctx := f.withToken(t, "EMP02")

	err := f.svc.ChangePassword(ctx, auth.ChangePasswordRequest{NewPassword: "s3cret!", ConfirmPassword: "s3cret!"})
	require.NoError(t, err)

	usingDefault, err := f.svc.IsUsingDefaultSecret(ctx, "EMP02")
	require.NoError(t, err)
	assert.False(t, usingDefault)

	_, err = f.svc.Login(context.Background(), auth.LoginRequest{ID: "EMP02", Password: testDefaultPassword})
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)

	resp, err := f.svc.Login(context.Background(), auth.LoginRequest{ID: "EMP02", Password: "s3cret!"})
	require.NoError(t, err)
	assert.False(t, resp.MustChangePassword)
}

func TestChangePassword_Mismatch(t *testing.T) {
	f := newAuthFixture(t)
	require.NoError(t, f.svc.EnsureUser(context.Background(), "EMP03"))
	ctx := f.withToken(t, "EMP03")

	err := f.svc.ChangePassword(ctx, auth.ChangePasswordRequest{NewPassword: "abcdef", ConfirmPassword: "abcdeg"})
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, "confirm_password", verrs[0].Field)
}

func TestSetSecret_TooShort(t *testing.T) {
	f := newAuthFixture(t)
	require.NoError(t, f.svc.EnsureUser(context.Background(), "EMP04"))

	err := f.svc.SetSecret(context.Background(), "EMP04", "abc")
	var verrs validator.ValidationErrors
	assert.ErrorAs(t, err, &verrs)
}

func TestUpdateProfileAndMe(t *testing.T) {
	f := newAuthFixture(t)
	require.NoError(t, f.svc.EnsureUser(context.Background(), "EMP05"))
	ctx := f.withToken(t, "EMP05")

	resp, err := f.svc.UpdateProfile(ctx, user.UpdateProfileRequest{FullName: "  Meera Nair "})
	require.NoError(t, err)
	assert.Equal(t, "Meera Nair", resp.FullName)
	assert.True(t, resp.NameSet)

	me, err := f.svc.Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, "EMP05", me.ID)
	assert.Equal(t, "Meera Nair", me.FullName)
	assert.True(t, me.MustChangePassword)

	name, err := f.svc.GetDisplayName(ctx, "emp05")
	require.NoError(t, err)
	assert.Equal(t, "Meera Nair", name)
}

func TestMe_WithoutToken(t *testing.T) {
	f := newAuthFixture(t)

	_, err := f.svc.Me(context.Background())
	assert.Error(t, err)
}

func TestSetDisplayName_UnknownUser(t *testing.T) {
	f := newAuthFixture(t)

	err := f.svc.SetDisplayName(context.Background(), "GHOST", "Nobody")
	assert.ErrorIs(t, err, auth.ErrUserNotFound)
}
