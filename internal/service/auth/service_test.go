package auth

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/testra/backoffice-api/internal/model"
	"github.com/testra/backoffice-api/pkg/auth"
	apperrors "github.com/testra/backoffice-api/pkg/errors"
	"github.com/testra/backoffice-api/pkg/security"
)

type fakeUsers struct {
	byID    map[uuid.UUID]*model.User
	byEmail map[string]*model.User
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{
		byID:    make(map[uuid.UUID]*model.User),
		byEmail: make(map[string]*model.User),
	}
}

func (u *fakeUsers) Create(_ context.Context, user *model.User) error {
	user.ID = uuid.New()
	u.byID[user.ID] = user
	u.byEmail[strings.ToLower(user.Email)] = user
	return nil
}

func (u *fakeUsers) Get(_ context.Context, id uuid.UUID) (*model.User, error) {
	user, ok := u.byID[id]
	if !ok {
		return nil, apperrors.NotFound("user", nil)
	}
	return user, nil
}

func (u *fakeUsers) GetByEmail(_ context.Context, email string) (*model.User, error) {
	user, ok := u.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, apperrors.NotFound("user", nil)
	}
	return user, nil
}

func (u *fakeUsers) Update(_ context.Context, user *model.User) error {
	u.byID[user.ID] = user
	return nil
}

func (u *fakeUsers) List(context.Context) ([]*model.User, error) { return nil, nil }

type fakeTokens struct {
	revoked map[string]bool
}

func (t *fakeTokens) Invalidate(_ context.Context, token string, _ time.Time) error {
	t.revoked[token] = true
	return nil
}

func (t *fakeTokens) IsInvalidated(_ context.Context, token string) (bool, error) {
	return t.revoked[token], nil
}

func (t *fakeTokens) DeleteExpired(context.Context, time.Time) error { return nil }

func newTestService() (*Service, *fakeUsers, *fakeTokens) {
	users := newFakeUsers()
	tokens := &fakeTokens{revoked: make(map[string]bool)}
	jwtSvc := auth.NewJWTService(auth.Config{
		Secret:        "test-secret",
		RefreshSecret: "test-refresh-secret",
		Expiry:        15 * time.Minute,
	})
	svc := NewService(users, tokens, jwtSvc, security.NewBcryptHasher(4))
	return svc, users, tokens
}

func register(t *testing.T, svc *Service) *model.User {
	t.Helper()
	user, err := svc.Register(context.Background(), &model.RegisterRequest{
		Email:       "Sam@Testra.test",
		DisplayName: "Sam",
		Password:    "correct horse",
	})
	require.NoError(t, err)
	return user
}

func TestRegisterNormalizesEmailAndRejectsDuplicates(t *testing.T) {
	svc, _, _ := newTestService()
	user := register(t, svc)
	assert.Equal(t, "sam@testra.test", user.Email)
	assert.Equal(t, model.UserRoleUser, user.Role)
	assert.NotEmpty(t, user.PasswordHash)

	_, err := svc.Register(context.Background(), &model.RegisterRequest{
		Email:       "sam@testra.test",
		DisplayName: "Sam again",
		Password:    "another pass",
	})
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrConflict, appErr.Code)
}

func TestRegisterWeakPassword(t *testing.T) {
	svc, _, _ := newTestService()
	_, err := svc.Register(context.Background(), &model.RegisterRequest{
		Email:       "sam@testra.test",
		DisplayName: "Sam",
		Password:    "short",
	})
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrBadRequest, appErr.Code)
}

func TestLoginWrongPasswordAndUnknownUserLookAlike(t *testing.T) {
	svc, _, _ := newTestService()
	register(t, svc)
	ctx := context.Background()

	_, errWrongPass := svc.Login(ctx, &model.LoginRequest{Email: "sam@testra.test", Password: "nope"})
	_, errNoUser := svc.Login(ctx, &model.LoginRequest{Email: "ghost@testra.test", Password: "nope"})

	for _, err := range []error{errWrongPass, errNoUser} {
		appErr, ok := apperrors.AsAppError(err)
		require.True(t, ok)
		assert.Equal(t, apperrors.ErrUnauthorized, appErr.Code)
		assert.Equal(t, "invalid email or password", appErr.Message)
	}
}

func TestLoginIssuesTokensAndStampsLastLogin(t *testing.T) {
	svc, users, _ := newTestService()
	user := register(t, svc)

	resp, err := svc.Login(context.Background(), &model.LoginRequest{
		Email:    "sam@testra.test",
		Password: "correct horse",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Tokens.AccessToken)
	assert.NotEmpty(t, resp.Tokens.RefreshToken)
	assert.NotNil(t, users.byID[user.ID].LastLoginAt)
}

func TestRefreshRotatesAndDenylistsOldToken(t *testing.T) {
	svc, _, tokens := newTestService()
	register(t, svc)
	ctx := context.Background()

	resp, err := svc.Login(ctx, &model.LoginRequest{
		Email: "sam@testra.test", Password: "correct horse", RememberMe: true,
	})
	require.NoError(t, err)
	oldRefresh := resp.Tokens.RefreshToken

	refreshed, err := svc.Refresh(ctx, oldRefresh)
	require.NoError(t, err)
	assert.NotEqual(t, oldRefresh, refreshed.Tokens.RefreshToken)
	assert.True(t, tokens.revoked[oldRefresh])

	// Replaying the spent token fails.
	_, err = svc.Refresh(ctx, oldRefresh)
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrUnauthorized, appErr.Code)
}

func TestRefreshForDeletedAccountIsSessionInvalid(t *testing.T) {
	svc, users, _ := newTestService()
	user := register(t, svc)
	ctx := context.Background()

	resp, err := svc.Login(ctx, &model.LoginRequest{
		Email: "sam@testra.test", Password: "correct horse",
	})
	require.NoError(t, err)

	delete(users.byID, user.ID)

	_, err = svc.Refresh(ctx, resp.Tokens.RefreshToken)
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrSessionInvalid, appErr.Code)
}

func TestProfileGoneIsSessionInvalid(t *testing.T) {
	svc, _, _ := newTestService()
	_, err := svc.Profile(context.Background(), uuid.New())
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrSessionInvalid, appErr.Code)
}

func TestLogoutDenylistsToken(t *testing.T) {
	svc, _, tokens := newTestService()
	require.NoError(t, svc.Logout(context.Background(), "some-refresh-token"))
	assert.True(t, tokens.revoked["some-refresh-token"])

	// Logging out with no token is a no-op.
	require.NoError(t, svc.Logout(context.Background(), ""))
}
