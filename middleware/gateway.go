// middleware/gateway.go
package middleware

import (
	"crypto/subtle"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// bearerToken accepts "Bearer <token>" or the raw token.
func bearerToken(header string) string {
	token := strings.TrimPrefix(header, "Bearer ")
	return strings.TrimSpace(token)
}

func tokenMatches(got, expected string) bool {
	return subtle.ConstantTimeCompare([]byte(got), []byte(expected)) == 1
}

// APITokenMiddleware validates the Authorization header against token. An
// empty token disables the check.
func APITokenMiddleware(token string, logger *zap.Logger) fiber.Handler {
	if token == "" {
		logger.Warn("⚠️ [API_AUTH] API_TOKEN is not set, admin routes are open")
		return func(c *fiber.Ctx) error { return c.Next() }
	}

	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			logger.Info("🚫 [API_AUTH] Missing Authorization header", zap.String("path", c.Path()))
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "API token missing",
			})
		}

		if !tokenMatches(bearerToken(authHeader), token) {
			logger.Warn("❌ [API_AUTH] Invalid token", zap.String("path", c.Path()))
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "invalid API token",
			})
		}
		return c.Next()
	}
}
