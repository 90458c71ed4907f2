package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/disuhitarth/EcommerceConcept/internal/api/http/handlers"
	"github.com/disuhitarth/EcommerceConcept/internal/auth"
	"github.com/disuhitarth/EcommerceConcept/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Catalog        *handlers.CatalogHandler
	Products       *handlers.ProductsHandler
	GenAI          *handlers.GenAIHandler
	Metrics        *observability.Metrics
	AuthMiddleware *auth.AuthMiddleware
	AdminEmails    []string
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", cfg.Metrics.Handler())
	}

	authGroup := app.Group("/auth")
	authGroup.Post("/signup", cfg.Auth.Signup)
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/logout", cfg.Auth.Logout)
	authGroup.Get("/me", cfg.AuthMiddleware.Handle, cfg.Auth.Me)

	app.Get("/catalog", cfg.Catalog.List)

	ai := app.Group("/ai", cfg.AuthMiddleware.Handle)
	ai.Post("/generate-image", cfg.GenAI.GenerateImage)
	ai.Post("/enhance-image", cfg.GenAI.EnhanceImage)
	ai.Post("/analyze-image", cfg.GenAI.AnalyzeImage)
	ai.Post("/optimize-text", cfg.GenAI.OptimizeText)

	admin := []fiber.Handler{cfg.AuthMiddleware.Handle, auth.RequireAdmin(cfg.AdminEmails)}
	app.Post("/catalog/refresh", append(admin, cfg.Catalog.Refresh)...)
	app.Delete("/catalog/cache", append(admin, cfg.Catalog.Clear)...)
	app.Post("/admin/products", append(admin, cfg.Products.Create)...)
}
