package middleware

import (
	"crypto/subtle"
	"strings"

	"github.com/gofiber/fiber/v2"

	"xp-ledger/logger"
)

// GatewayAuthMiddleware accepts only requests carrying the gateway's service token,
// either as "Bearer <token>" or raw in the Authorization header.
func GatewayAuthMiddleware(expectedToken string, log *logger.Logger) fiber.Handler {
	expected := []byte(expectedToken)

	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			log.Warn("gateway token missing", "path", c.Path())
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "gateway authentication token missing",
			})
		}

		token := strings.TrimPrefix(authHeader, "Bearer ")
		if len(expected) == 0 || subtle.ConstantTimeCompare([]byte(token), expected) != 1 {
			log.Warn("gateway token rejected", "path", c.Path())
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "invalid gateway authentication token",
			})
		}
		return c.Next()
	}
}
