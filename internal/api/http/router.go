package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/account-service/internal/api/http/handlers"
	"github.com/spec-kit/account-service/internal/auth"
	"github.com/spec-kit/account-service/internal/domain"
	"github.com/spec-kit/account-service/internal/observability"
	apperrors "github.com/spec-kit/account-service/pkg/util/errorutil"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health  *handlers.HealthHandler
	Auth    *handlers.AuthHandler
	Users   *handlers.UsersHandler
	Gate    *auth.Gate
	Metrics *observability.Metrics
	// RateLimitPerMinute throttles public credential endpoints per IP; zero disables.
	RateLimitPerMinute int
	RateLimitBurst     int
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/", cfg.Health.Root)
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", cfg.Metrics.Handler())
	}

	api := app.Group("/api/v1")

	throttle := RateLimit(cfg.RateLimitPerMinute, cfg.RateLimitBurst)

	authGroup := api.Group("/auth")
	authGroup.Post("/register", throttle, cfg.Auth.Register)
	authGroup.Post("/login", throttle, cfg.Auth.Login)
	authGroup.Get("/verify-email", throttle, cfg.Auth.VerifyEmail)
	authGroup.Post("/password/reset/request", throttle, cfg.Auth.RequestPasswordReset)
	authGroup.Post("/password/reset/confirm", throttle, cfg.Auth.ConfirmPasswordReset)

	signedIn := cfg.Gate.Authenticate()
	authGroup.Post("/logout", signedIn, cfg.Auth.Logout)
	authGroup.Post("/verify-email/request", signedIn, cfg.Auth.RequestEmailVerification)
	authGroup.Post("/password/change", signedIn, cfg.Auth.ChangePassword)

	users := api.Group("/users")
	users.Get("/me", signedIn, cfg.Users.Me)
	users.Get("/", cfg.Gate.Authenticate(domain.RoleAdmin, domain.RoleManager), cfg.Users.List)
	users.Patch("/:id/role", cfg.Gate.Authenticate(domain.RoleAdmin), cfg.Users.ChangeRole)

	app.Use(func(c *fiber.Ctx) error {
		return apperrors.NewNotFound("route", map[string]any{"path": c.Path()})
	})
}
