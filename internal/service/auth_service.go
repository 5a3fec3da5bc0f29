package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"entity-api/internal/core/logger"
	"entity-api/internal/domain"
	"entity-api/internal/repo"
)

// TokenIssuer signs a bearer token for a login. *auth.JWTer satisfies it.
type TokenIssuer interface {
	Issue(login string) (string, time.Time, error)
}

type Token struct {
	AccessToken string `json:"access_token"`
	Username    string `json:"username"`
}

type AuthService struct {
	users  repo.UserLookup
	issuer TokenIssuer
	log    *zap.Logger
}

func NewAuthService(users repo.UserLookup, issuer TokenIssuer, log *zap.Logger) *AuthService {
	return &AuthService{users: users, issuer: issuer, log: log}
}

// IssueToken signs a token for an existing login. No credential beyond the
// login itself is checked.
func (s *AuthService) IssueToken(ctx context.Context, login string) (*Token, error) {
	if login == "" {
		return nil, fmt.Errorf("issue token: empty login: %w", domain.ErrNotFound)
	}
	u, err := s.users.GetUser(ctx, login)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	if u == nil {
		return nil, fmt.Errorf("issue token for %q: %w", login, domain.ErrNotFound)
	}
	tok, exp, err := s.issuer.Issue(u.Login)
	if err != nil {
		return nil, fmt.Errorf("issue token for %q: %w", login, err)
	}
	logger.WithContext(ctx, s.log).Info("token issued",
		zap.String("user_login", u.Login), zap.Time("expires_at", exp))
	return &Token{AccessToken: tok, Username: u.Login}, nil
}

// Revoke records a sign-out. Tokens are stateless and stay valid until expiry.
func (s *AuthService) Revoke(ctx context.Context, login string) error {
	if login == "" {
		return domain.ErrNotAuthenticated
	}
	logger.WithContext(ctx, s.log).Info("user signed out", zap.String("user_login", login))
	return nil
}
