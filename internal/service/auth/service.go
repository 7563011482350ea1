package auth

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/testra/backoffice-api/internal/model"
	"github.com/testra/backoffice-api/internal/repository"
	"github.com/testra/backoffice-api/pkg/auth"
	apperrors "github.com/testra/backoffice-api/pkg/errors"
	"github.com/testra/backoffice-api/pkg/security"
)

// Refresh token lifetimes. "Remember me" keeps the session alive for thirty
// days; otherwise it lapses within the day.
const (
	RememberedSessionTTL = 720 * time.Hour
	ShortSessionTTL      = 24 * time.Hour
)

// Sign-in failures all surface the same message so the response does not
// reveal whether the account exists.
const invalidCredentialsMsg = "invalid email or password"

type Service struct {
	users  repository.UserRepository
	tokens repository.TokenRepository
	jwt    auth.JWTService
	hasher security.PasswordHasher
}

func NewService(users repository.UserRepository, tokens repository.TokenRepository, jwt auth.JWTService, hasher security.PasswordHasher) *Service {
	return &Service{
		users:  users,
		tokens: tokens,
		jwt:    jwt,
		hasher: hasher,
	}
}

func (s *Service) Register(ctx context.Context, req *model.RegisterRequest) (*model.User, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	if existing, err := s.users.GetByEmail(ctx, email); err == nil && existing != nil {
		return nil, apperrors.Conflict("an account with this email already exists", nil)
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		if err == security.ErrPasswordTooWeak {
			return nil, apperrors.BadRequest(err.Error(), nil)
		}
		return nil, apperrors.Internal(err)
	}

	user := &model.User{
		Email:        email,
		DisplayName:  strings.TrimSpace(req.DisplayName),
		Role:         model.UserRoleUser,
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *Service) Login(ctx context.Context, req *model.LoginRequest) (*model.LoginResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, apperrors.Unauthorized(invalidCredentialsMsg, err)
	}
	if err := s.hasher.Compare(user.PasswordHash, req.Password); err != nil {
		return nil, apperrors.Unauthorized(invalidCredentialsMsg, err)
	}

	tokens, err := s.issueTokens(user, req.RememberMe)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	user.LastLoginAt = &now
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}

	return &model.LoginResponse{User: user, Tokens: tokens}, nil
}

// Refresh exchanges a valid refresh token for a fresh pair. The old token is
// denylisted so it cannot be replayed. A token whose account no longer exists
// yields a session-invalid error, which the client treats as a forced
// re-login rather than a permissions problem.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*model.LoginResponse, error) {
	claims, err := s.jwt.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, apperrors.Unauthorized("invalid refresh token", err)
	}

	revoked, err := s.tokens.IsInvalidated(ctx, refreshToken)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, apperrors.Unauthorized("refresh token has been revoked", nil)
	}

	user, err := s.users.Get(ctx, claims.UserID)
	if err != nil {
		if _, ok := apperrors.AsAppError(err); ok {
			return nil, apperrors.SessionInvalid(err)
		}
		return nil, err
	}

	// Rotation: the spent token joins the denylist until it would have
	// expired anyway.
	if err := s.tokens.Invalidate(ctx, refreshToken, time.Now().Add(RememberedSessionTTL)); err != nil {
		return nil, err
	}

	tokens, err := s.issueTokens(user, true)
	if err != nil {
		return nil, err
	}
	return &model.LoginResponse{User: user, Tokens: tokens}, nil
}

func (s *Service) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	return s.tokens.Invalidate(ctx, refreshToken, time.Now().Add(RememberedSessionTTL))
}

// Profile resolves the current account for an authenticated request. A valid
// token whose record is gone means the session cannot be recovered.
func (s *Service) Profile(ctx context.Context, userID uuid.UUID) (*model.User, error) {
	user, err := s.users.Get(ctx, userID)
	if err != nil {
		if _, ok := apperrors.AsAppError(err); ok {
			return nil, apperrors.SessionInvalid(err)
		}
		return nil, err
	}
	return user, nil
}

func (s *Service) issueTokens(user *model.User, remembered bool) (*model.TokenPair, error) {
	access, expiresAt, err := s.jwt.GenerateAccessToken(user)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	ttl := ShortSessionTTL
	if remembered {
		ttl = RememberedSessionTTL
	}
	refresh, err := s.jwt.GenerateRefreshToken(user, ttl)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	return &model.TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresAt:    expiresAt,
	}, nil
}
