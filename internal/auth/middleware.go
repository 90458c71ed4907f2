package auth

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/disuhitarth/EcommerceConcept/internal/domain"
)

const principalKey = "auth_principal"

// Principal represents the authenticated caller.
type Principal struct {
	Account *domain.PublicAccount
	Token   string
}

// SessionResolver maps a bearer token to its owning account.
type SessionResolver interface {
	Resolve(ctx context.Context, token string) (*domain.PublicAccount, error)
}

// AuthMiddleware validates bearer tokens and loads principals.
type AuthMiddleware struct {
	sessions SessionResolver
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(sessions SessionResolver) *AuthMiddleware {
	return &AuthMiddleware{sessions: sessions}
}

// Handle enforces authentication for protected routes. Resolver errors are
// returned unchanged so expired and unknown sessions keep their distinct messages.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	token, ok := BearerToken(c)
	if !ok {
		return errMissingBearer
	}

	account, err := m.sessions.Resolve(c.UserContext(), token)
	if err != nil {
		return err
	}

	c.Locals(principalKey, &Principal{Account: account, Token: token})
	return c.Next()
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" header.
func BearerToken(c *fiber.Ctx) (string, bool) {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if authHeader == "" {
		return "", false
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}

// PrincipalFromContext retrieves the authenticated caller.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok
}
