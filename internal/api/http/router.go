package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/apply-loan/internal/api/http/handlers"
	"github.com/spec-kit/apply-loan/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health            *handlers.HealthHandler
	Loan              *handlers.LoanHandler
	Sessions          *handlers.SessionHandler
	SessionMiddleware *auth.SessionMiddleware
	RateLimiter       fiber.Handler
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/health/metrics", cfg.Health.Metrics)

	loanGroup := app.Group("/api/v1/loan")
	if cfg.RateLimiter != nil {
		loanGroup.Use(cfg.RateLimiter)
	}
	loanGroup.Get("/limits", cfg.Loan.Limits)
	loanGroup.Post("/quote", cfg.Loan.Quote)
	loanGroup.Get("/tutorial", cfg.Loan.Tutorial)
	loanGroup.Post("/sessions", cfg.Sessions.Create)

	session := loanGroup.Group("/session", cfg.SessionMiddleware.Handle)
	session.Get("", cfg.Sessions.Get)
	session.Delete("", cfg.Sessions.Close)
	session.Put("/amount", cfg.Sessions.SetAmount)
	session.Post("/amount/max", cfg.Sessions.SetMaxAmount)
	session.Put("/duration", cfg.Sessions.SetDuration)
	session.Post("/submit", cfg.Sessions.Submit)
	session.Post("/acknowledge", cfg.Sessions.Acknowledge)

	tutorial := session.Group("/tutorial")
	tutorial.Get("", cfg.Sessions.Tutorial)
	tutorial.Post("/open", cfg.Sessions.TutorialOpen)
	tutorial.Post("/next", cfg.Sessions.TutorialNext)
	tutorial.Post("/back", cfg.Sessions.TutorialBack)
	tutorial.Post("/finish", cfg.Sessions.TutorialFinish)
	tutorial.Post("/dismiss", cfg.Sessions.TutorialDismiss)
}
