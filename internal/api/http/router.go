package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/accounts-service/internal/api/http/handlers"
	"github.com/spec-kit/accounts-service/internal/auth"
	"github.com/spec-kit/accounts-service/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Users          *handlers.UsersHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/health/metrics", cfg.Health.Counters)

	api := app.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.Post("/register", cfg.AuthMiddleware.HandleOptional, cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/password/change", cfg.AuthMiddleware.Handle, cfg.Auth.ChangePassword)

	adminOnly := []fiber.Handler{
		cfg.AuthMiddleware.Handle,
		auth.RequireRoles(domain.RoleSuperAdmin, domain.RoleAdmin),
	}

	users := api.Group("/users", adminOnly...)
	users.Get("", cfg.Users.List)
	users.Patch("/:id/activate", cfg.Users.Activate)
	users.Patch("/:id/deactivate", cfg.Users.Deactivate)

	customers := api.Group("/customers", adminOnly...)
	customers.Get("", cfg.Users.ListCustomers)
}
