package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/accounts-service/internal/domain"
	apperrors "github.com/spec-kit/accounts-service/pkg/util"
)

// Authorize checks that the identity holds one of the allowed roles.
// A nil identity means authentication never ran for this request.
func Authorize(identity *domain.Identity, allowed ...domain.Role) error {
	if identity == nil {
		return apperrors.NewUnauthorized("authentication required")
	}
	if len(allowed) == 0 {
		return nil
	}
	for _, role := range allowed {
		if identity.Role == role {
			return nil
		}
	}
	return apperrors.NewForbidden("insufficient permissions")
}

// RequireRoles ensures the authenticated caller has one of the allowed roles.
// Authenticate must run earlier in the chain.
func RequireRoles(allowed ...domain.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity, ok := IdentityFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		if err := Authorize(&identity, allowed...); err != nil {
			return err
		}
		return c.Next()
	}
}

// AuthorizeAdminCreate enforces the privilege rule for creating elevated
// accounts: only an authenticated SUPER_ADMIN may register ADMIN or
// SUPER_ADMIN users. Runs before any persistence happens.
func AuthorizeAdminCreate(identity *domain.Identity, requested domain.Role) error {
	if requested != domain.RoleAdmin && requested != domain.RoleSuperAdmin {
		return nil
	}
	if identity == nil || identity.Role != domain.RoleSuperAdmin {
		return apperrors.NewForbidden("only super admin may create admin users")
	}
	return nil
}
