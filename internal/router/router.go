package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/evalsuite-api/internal/config"
	"github.com/noah-isme/evalsuite-api/internal/handler"
	"github.com/noah-isme/evalsuite-api/internal/middleware"
	"github.com/noah-isme/evalsuite-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	EventHandler      *handler.EventHandler
	EvaluationHandler *handler.EvaluationHandler
	ConfigHandler     *handler.ConfigHandler
	ActivityHandler   *handler.ActivityHandler
	Health            handler.HealthDependencies
	JWTMiddleware     fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	app.Get("/metrics", observability.MetricsHandler())

	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg, deps.Health))

	// Admin routes only require a token when a signing secret is configured.
	var admin []fiber.Handler
	if cfg.AdminProtected() {
		jwtMiddleware := deps.JWTMiddleware
		if jwtMiddleware == nil {
			jwtMiddleware = middleware.JWTProtected(cfg.JWTSecret)
		}
		admin = []fiber.Handler{jwtMiddleware, middleware.RequireRole("admin")}
	}

	if deps.EventHandler != nil {
		deps.EventHandler.Register(api.Group("/events"), admin...)
	}

	if deps.EvaluationHandler != nil {
		autosaveLimiter := middleware.RateLimit("autosave", "juryId", cfg.AutoSaveLimit, cfg.AutoSaveWindow)
		deps.EvaluationHandler.Register(api.Group("/evaluations"), autosaveLimiter)
	}

	if deps.ConfigHandler != nil {
		deps.ConfigHandler.Register(api.Group("/config", admin...))
	}

	if deps.ActivityHandler != nil {
		deps.ActivityHandler.Register(api.Group("/activity", admin...))
	}
}
