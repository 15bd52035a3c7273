// Package service implements the business operations behind the HTTP
// handlers: authentication, token refresh, user and token policy management.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/plshark/userauth/internal/domain"
	"github.com/plshark/userauth/internal/store"
	"github.com/plshark/userauth/pkg/cryptox"
	"github.com/plshark/userauth/pkg/jwtx"
	"github.com/plshark/userauth/pkg/slogx"
)

// ErrBadCredentials is returned for every authentication failure so the
// caller cannot tell an unknown user from a wrong password from a bad token.
var ErrBadCredentials = errors.New("invalid_credentials")

// AuthService issues and verifies tokens against the user directory.
type AuthService struct {
	Users    store.Users
	Settings *UserAuthSettingsService
	Hasher   *cryptox.Hasher
	Codec    *jwtx.Codec

	// TokenTTL is the service-wide token lifetime, used when a user has no
	// per-user override.
	TokenTTL time.Duration

	// DirectoryTimeout bounds user lookups; a slow directory reads as a
	// failed login rather than a hung request.
	DirectoryTimeout time.Duration
}

// Authenticate verifies the credentials and issues a token pair. Any failure,
// including an unknown username or a directory timeout, yields
// ErrBadCredentials.
func (s *AuthService) Authenticate(ctx context.Context, creds domain.AccountCredentials) (domain.AuthToken, error) {
	l := slogx.FromContext(ctx)

	lookupCtx, cancel := context.WithTimeout(ctx, s.DirectoryTimeout)
	defer cancel()

	user, err := s.Users.GetUserByUsername(lookupCtx, creds.Username)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			l.Error("user lookup failed", slog.Any("error", err))
		}
		return domain.AuthToken{}, ErrBadCredentials
	}

	if err := s.Hasher.Verify(creds.Password, user.PasswordHash); err != nil {
		return domain.AuthToken{}, ErrBadCredentials
	}

	return s.issueTokens(ctx, user)
}

// Refresh verifies a refresh token and issues a fresh token pair for its
// subject. The user must still exist; authorities are re-read from the
// directory so revoked authorities do not survive a refresh.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (domain.AuthToken, error) {
	l := slogx.FromContext(ctx)

	username, err := s.Codec.VerifyRefreshToken(refreshToken)
	if err != nil {
		return domain.AuthToken{}, ErrBadCredentials
	}

	lookupCtx, cancel := context.WithTimeout(ctx, s.DirectoryTimeout)
	defer cancel()

	user, err := s.Users.GetUserByUsername(lookupCtx, username)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			l.Error("user lookup failed", slog.Any("error", err))
		}
		return domain.AuthToken{}, ErrBadCredentials
	}

	return s.issueTokens(ctx, user)
}

// ValidateToken verifies an access token and returns the identity it carries.
func (s *AuthService) ValidateToken(token string) (domain.AuthenticatedUser, error) {
	user, err := s.Codec.VerifyToken(token)
	if err != nil {
		return domain.AuthenticatedUser{}, ErrBadCredentials
	}
	return domain.AuthenticatedUser{
		Username:    user.Username,
		Authorities: user.Authorities,
	}, nil
}

func (s *AuthService) issueTokens(ctx context.Context, user domain.User) (domain.AuthToken, error) {
	settings, err := s.Settings.GetForUser(ctx, user.Username)
	if err != nil {
		return domain.AuthToken{}, err
	}

	accessTTL := s.TokenTTL
	if settings.AccessTokenTTL != nil {
		accessTTL = *settings.AccessTokenTTL
	}

	accessToken, err := s.Codec.BuildAccessToken(user.Username, accessTTL, user.Authorities)
	if err != nil {
		return domain.AuthToken{}, err
	}

	token := domain.AuthToken{
		AccessToken: accessToken,
		TokenType:   domain.TokenTypeBearer,
		ExpiresIn:   int64(accessTTL / time.Second),
	}

	if settings.RefreshTokenEnabled {
		refreshTTL := s.TokenTTL
		if settings.RefreshTokenTTL != nil {
			refreshTTL = *settings.RefreshTokenTTL
		}
		token.RefreshToken, err = s.Codec.BuildRefreshToken(user.Username, refreshTTL)
		if err != nil {
			return domain.AuthToken{}, err
		}
	}

	return token, nil
}
