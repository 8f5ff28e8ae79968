package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/tubebrief/tubebrief-backend/internal/api/handlers"
	"github.com/tubebrief/tubebrief-backend/internal/api/middleware"
	"github.com/tubebrief/tubebrief-backend/internal/auth"
	"github.com/tubebrief/tubebrief-backend/internal/config"
	"github.com/tubebrief/tubebrief-backend/internal/services"
)

// SetupRoutes configures all API routes
func SetupRoutes(app *fiber.App, cfg *config.Config, summarizeService *services.SummarizeService, authService *auth.Service) {
	// API routes
	api := app.Group("/api/v1")

	// Health check
	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "healthy",
			"service": "tubebrief-backend",
		})
	})

	// Authentication endpoints
	authGroup := api.Group("/auth")
	authGroup.Post("/login", middleware.AuthRateLimit(), handlers.Login(authService))
	authGroup.Get("/me", middleware.AuthRequired(authService), handlers.GetCurrentUser())

	// Summary endpoints. Reads and creates are open to anonymous callers;
	// auth is resolved when present so privileged refresh works.
	summaryHandler := handlers.NewSummaryHandler(summarizeService)
	summaries := api.Group("/summaries", middleware.OptionalAuth(authService))
	summaries.Get("/", summaryHandler.ListSummaries)
	summaries.Post("/",
		middleware.SummarizeRateLimit(cfg.RateLimit.Max, cfg.RateLimit.Window),
		summaryHandler.CreateSummary,
	)
}
