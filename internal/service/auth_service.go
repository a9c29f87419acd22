package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"postboard/internal/auth"
	"postboard/internal/models"
	"postboard/internal/observability"
)

// Session is the result of a successful login.
type Session struct {
	Token        string           `json:"token"`
	ExpiresAt    time.Time        `json:"expires_at"`
	Identity     *models.Identity `json:"identity"`
	Capabilities []auth.Action    `json:"capabilities"`
}

// AuthService resolves logins against the identity registry and manages
// the session tokens handed out for them.
type AuthService struct {
	resolver auth.IdentityResolver
	tokens   *auth.TokenManager
}

func NewAuthService(resolver auth.IdentityResolver, tokens *auth.TokenManager) *AuthService {
	return &AuthService{resolver: resolver, tokens: tokens}
}

// Login authenticates username and secret and issues a session token.
func (s *AuthService) Login(ctx context.Context, username, secret string) (*Session, error) {
	if strings.TrimSpace(username) == "" || secret == "" {
		observability.LoginAttempts.WithLabelValues("invalid").Inc()
		return nil, models.NewValidationError("Username and password are required")
	}

	identity, err := s.resolver.Authenticate(ctx, username, secret)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			observability.LoginAttempts.WithLabelValues("failure").Inc()
			return nil, models.NewUnauthorizedError("Invalid username or password")
		}
		observability.LoginAttempts.WithLabelValues("error").Inc()
		return nil, models.NewInternalError(err)
	}

	token, expiresAt, err := s.tokens.Issue(identity)
	if err != nil {
		observability.LoginAttempts.WithLabelValues("error").Inc()
		return nil, models.NewInternalError(err)
	}

	observability.LoginAttempts.WithLabelValues("success").Inc()
	return &Session{
		Token:        token,
		ExpiresAt:    expiresAt,
		Identity:     identity,
		Capabilities: auth.Capabilities(identity.Role),
	}, nil
}

// Logout revokes the token the claims were parsed from.
func (s *AuthService) Logout(ctx context.Context, claims *auth.Claims) error {
	if err := s.tokens.Revoke(ctx, claims); err != nil {
		return models.NewStorageError(err)
	}
	return nil
}

// Resolve maps verified token claims back to a registry identity. Tokens
// for identities no longer in the registry are refused.
func (s *AuthService) Resolve(claims *auth.Claims) (*models.Identity, error) {
	if claims == nil {
		return nil, models.NewUnauthorizedError("Missing session")
	}
	identity, ok := s.resolver.ByID(claims.Subject)
	if !ok {
		return nil, models.NewUnauthorizedError("Unknown identity")
	}
	return identity, nil
}

// Tokens exposes the token manager for middleware.
func (s *AuthService) Tokens() *auth.TokenManager {
	return s.tokens
}
