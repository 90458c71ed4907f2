package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/disuhitarth/EcommerceConcept/internal/domain"
	apperrors "github.com/disuhitarth/EcommerceConcept/pkg/util"
)

var errMissingBearer = apperrors.NewUnauthorized("Not authenticated")

// RequireAdmin ensures the authenticated caller is one of the configured operators.
// An empty allow-list denies everyone.
func RequireAdmin(adminEmails []string) fiber.Handler {
	allowed := make(map[string]struct{}, len(adminEmails))
	for _, email := range adminEmails {
		allowed[domain.NormalizeEmail(email)] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok || principal.Account == nil {
			return errMissingBearer
		}
		if _, exists := allowed[domain.NormalizeEmail(principal.Account.Email)]; !exists {
			return apperrors.NewForbidden("admin access required")
		}
		return c.Next()
	}
}
