package middleware

import (
	"log"
	"strings"

	"vastrahub/internal/services"

	"github.com/gofiber/fiber/v2"
)

// AuthRequired is a Fiber middleware to check for a valid session token.
func AuthRequired(authService *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Authorization header is required",
			})
		}

		// Expected format: "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if !(len(parts) == 2 && parts[0] == "Bearer") {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Authorization header format must be 'Bearer <token>'",
			})
		}

		claims, err := authService.ValidateToken(parts[1])
		if err != nil {
			log.Printf("JWT validation failed: %v", err)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Invalid or expired token",
				"error":   err.Error(),
			})
		}

		// Store claims in Fiber context for subsequent handlers
		c.Locals("user_id", claims["user_id"])
		c.Locals("phone", claims["phone"])
		c.Locals("approved", claims["approved"])

		return c.Next()
	}
}

// AdminOnly gates administrative routes to the configured admin phone.
// With no admin phone configured the routes stay locked. Must run after
// AuthRequired.
func AdminOnly(adminPhone string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		phone, ok := c.Locals("phone").(string)
		if adminPhone == "" || !ok || phone != adminPhone {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"message": "Administrator access required",
			})
		}
		return c.Next()
	}
}

// ApprovedOnly gates routes that require an approved wholesale account.
// Must run after AuthRequired.
func ApprovedOnly() fiber.Handler {
	return func(c *fiber.Ctx) error {
		approved, ok := c.Locals("approved").(bool)
		if !ok || !approved {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"message": "Account is awaiting approval",
			})
		}
		return c.Next()
	}
}
