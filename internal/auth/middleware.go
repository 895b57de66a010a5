package auth

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/accounts-service/internal/domain"
	"github.com/spec-kit/accounts-service/internal/repository"
	apperrors "github.com/spec-kit/accounts-service/pkg/util"
)

const identityKey = "auth_identity"

// AuthMiddleware validates bearer tokens and resolves caller identities.
type AuthMiddleware struct {
	tokens *TokenManager
	users  repository.UserRepository
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(tokens *TokenManager, users repository.UserRepository) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, users: users}
}

// Handle enforces authentication for protected routes. The subject is
// re-resolved from the store on every request so deactivation takes effect
// immediately, even for unexpired tokens.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	identity, err := m.resolve(c)
	if err != nil {
		return err
	}
	c.Locals(identityKey, identity)
	return c.Next()
}

// HandleOptional authenticates when a bearer token is present and continues
// anonymously when the authorization header is absent. A present but invalid
// token still fails the request.
func (m *AuthMiddleware) HandleOptional(c *fiber.Ctx) error {
	if c.Get("Authorization") == "" {
		return c.Next()
	}
	identity, err := m.resolve(c)
	if err != nil {
		return err
	}
	c.Locals(identityKey, identity)
	return c.Next()
}

func (m *AuthMiddleware) resolve(c *fiber.Ctx) (domain.Identity, error) {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return domain.Identity{}, apperrors.NewUnauthorized("missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return domain.Identity{}, apperrors.NewUnauthorized("invalid authorization header")
	}

	claims, err := m.tokens.ParseToken(parts[1])
	if err != nil {
		return domain.Identity{}, apperrors.NewUnauthorized("invalid token")
	}

	user, err := m.users.FindByID(c.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Identity{}, apperrors.NewUnauthorized("user not found or inactive")
		}
		return domain.Identity{}, apperrors.MapError(err)
	}
	if !user.IsActive {
		return domain.Identity{}, apperrors.NewUnauthorized("user not found or inactive")
	}

	return domain.Identity{UserID: claims.UserID, Role: claims.Role}, nil
}

// IdentityFromContext retrieves the authenticated identity.
func IdentityFromContext(c *fiber.Ctx) (domain.Identity, bool) {
	val := c.Locals(identityKey)
	if val == nil {
		return domain.Identity{}, false
	}
	identity, ok := val.(domain.Identity)
	return identity, ok
}
