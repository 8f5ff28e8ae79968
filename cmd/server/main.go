package main

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/sirupsen/logrus"

	"github.com/tubebrief/tubebrief-backend/internal/api"
	"github.com/tubebrief/tubebrief-backend/internal/auth"
	"github.com/tubebrief/tubebrief-backend/internal/config"
	"github.com/tubebrief/tubebrief-backend/internal/database"
	"github.com/tubebrief/tubebrief-backend/internal/llm"
	"github.com/tubebrief/tubebrief-backend/internal/repository/postgres"
	"github.com/tubebrief/tubebrief-backend/internal/services"
	"github.com/tubebrief/tubebrief-backend/internal/tokenizer"
	"github.com/tubebrief/tubebrief-backend/internal/transcript"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration: ", err)
	}

	// Connect to database
	db, err := database.NewConnection(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database: ", err)
	}
	defer db.Close()

	// Run migrations
	if err := database.RunMigrations(cfg.Database); err != nil {
		logger.Fatal("Failed to run migrations: ", err)
	}

	// Initialize Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "TubeBrief Backend",
		ErrorHandler: customErrorHandler,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(fiberlogger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.Server.CORSOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, HEAD",
	}))

	// Initialize repositories
	summaryRepo := postgres.NewSummaryRepository(db.DB)
	userRepo := postgres.NewUserRepository(db.DB)

	// Initialize auth service
	jwtSecret := cfg.Auth.JWTSecret
	if jwtSecret == "" {
		jwtSecret = "change-me-in-production" // Default for development
		logger.Warn("Using default JWT secret. Set TUBEBRIEF_JWT_SECRET in production!")
	}
	authService := auth.NewService(userRepo, jwtSecret)

	// Initialize summarization pipeline
	summarizer, err := llm.NewOpenAISummarizer(cfg.OpenAI)
	if err != nil {
		logger.Fatal("Failed to initialize summarizer: ", err)
	}

	tok, err := tokenizer.New(cfg.OpenAI.Model)
	if err != nil {
		logger.Fatal("Failed to initialize tokenizer: ", err)
	}

	tokenBudget := int(float64(cfg.OpenAI.MaxContextTokens) * cfg.OpenAI.ContextFraction)
	summarizeService := services.NewSummarizeService(
		summaryRepo,
		transcript.NewClient(),
		summarizer,
		tok,
		tokenBudget,
		logger,
	)

	// Setup routes
	api.SetupRoutes(app, cfg, summarizeService, authService)

	// Start server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	logger.Info("TubeBrief Backend starting on ", addr)
	if err := app.Listen(addr); err != nil {
		logger.Fatal("Failed to start server: ", err)
	}
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
		"code":  code,
	})
}
