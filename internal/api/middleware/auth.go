package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/tubebrief/tubebrief-backend/internal/auth"
)

// AuthConfig holds the auth middleware configuration
type AuthConfig struct {
	AuthService *auth.Service
	Optional    bool // If true, auth is optional (doesn't fail if no token)
}

// AuthRequired creates a middleware that requires authentication
func AuthRequired(authService *auth.Service) fiber.Handler {
	return AuthMiddleware(AuthConfig{
		AuthService: authService,
		Optional:    false,
	})
}

// OptionalAuth creates a middleware that makes authentication optional
func OptionalAuth(authService *auth.Service) fiber.Handler {
	return AuthMiddleware(AuthConfig{
		AuthService: authService,
		Optional:    true,
	})
}

// AuthMiddleware is the main authentication middleware
func AuthMiddleware(config AuthConfig) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := auth.ExtractTokenFromBearer(c.Get("Authorization"))

		// Also check for token in cookie (for web clients)
		if token == "" {
			token = c.Cookies("access_token")
		}

		if token == "" {
			if config.Optional {
				return c.Next()
			}
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Authentication required",
			})
		}

		user, err := config.AuthService.ValidateAccessToken(token)
		if err != nil {
			if config.Optional {
				return c.Next()
			}
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid or expired token",
			})
		}

		c.Locals("user", user)
		c.Locals("user_id", user.UserID.String())
		return c.Next()
	}
}
