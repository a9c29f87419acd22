// Package middleware provides authentication and authorization middleware for the application.
package middleware

import (
	"context"
	"errors"
	"strings"

	"postboard/internal/auth"
	"postboard/internal/models"
	"postboard/internal/observability"

	"github.com/gofiber/fiber/v2"
)

// Fiber locals set by the auth middleware.
const (
	LocalIdentity = "identity"
	LocalClaims   = "claims"
)

// Authenticator turns bearer tokens into registry identities.
type Authenticator struct {
	tokens   *auth.TokenManager
	resolver auth.IdentityResolver
}

// NewAuthenticator creates an Authenticator.
func NewAuthenticator(tokens *auth.TokenManager, resolver auth.IdentityResolver) *Authenticator {
	return &Authenticator{tokens: tokens, resolver: resolver}
}

// Required rejects requests without a valid, unrevoked bearer token.
func (a *Authenticator) Required() fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := bearerToken(c)
		if token == "" {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Authorization required"))
		}
		if err := a.authenticate(c, token); err != nil {
			return models.RespondWithError(c, fiber.StatusUnauthorized, err)
		}
		return c.Next()
	}
}

// Optional attaches the identity when a valid token is present and
// otherwise lets the request through as anonymous.
func (a *Authenticator) Optional() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if token := bearerToken(c); token != "" {
			_ = a.authenticate(c, token)
		}
		return c.Next()
	}
}

// WebSocket authenticates upgrade requests, which carry the token in the
// "token" query parameter because browsers cannot set headers on them.
func (a *Authenticator) WebSocket() fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Query("token")
		if token == "" {
			token = bearerToken(c)
		}
		if token == "" {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Token required"))
		}
		if err := a.authenticate(c, token); err != nil {
			return models.RespondWithError(c, fiber.StatusUnauthorized, err)
		}
		return c.Next()
	}
}

func (a *Authenticator) authenticate(c *fiber.Ctx, token string) error {
	claims, err := a.tokens.Parse(c.UserContext(), token)
	if err != nil {
		if errors.Is(err, auth.ErrRevokedToken) {
			return models.NewUnauthorizedError("Token has been revoked")
		}
		return models.NewUnauthorizedError("Invalid or expired token")
	}
	identity, ok := a.resolver.ByID(claims.Subject)
	if !ok {
		return models.NewUnauthorizedError("Unknown identity")
	}

	c.Locals(LocalIdentity, identity)
	c.Locals(LocalClaims, claims)
	// Sync to UserContext for logging and downstream services
	c.SetUserContext(context.WithValue(c.UserContext(), observability.UserIDKey, identity.ID))
	return nil
}

// RequireCapability lets the request through only if the caller's role
// grants action. Anonymous callers get 401, authenticated ones 403.
func RequireCapability(action auth.Action) fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity := IdentityFrom(c)
		if auth.Can(auth.RoleOf(identity), action) {
			return c.Next()
		}
		if identity == nil {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Authorization required"))
		}
		return models.RespondWithError(c, fiber.StatusForbidden,
			models.NewAuthorizationError("You are not allowed to do this"))
	}
}

// IdentityFrom returns the authenticated identity, or nil for anonymous requests.
func IdentityFrom(c *fiber.Ctx) *models.Identity {
	identity, _ := c.Locals(LocalIdentity).(*models.Identity)
	return identity
}

// ClaimsFrom returns the parsed token claims, or nil.
func ClaimsFrom(c *fiber.Ctx) *auth.Claims {
	claims, _ := c.Locals(LocalClaims).(*auth.Claims)
	return claims
}

func bearerToken(c *fiber.Ctx) string {
	scheme, token, ok := strings.Cut(c.Get(fiber.HeaderAuthorization), " ")
	if !ok || scheme != "Bearer" {
		return ""
	}
	return strings.TrimSpace(token)
}
