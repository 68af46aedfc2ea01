// middleware/sse_auth.go
package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// SSETokenMiddleware validates the `token` query parameter. EventSource
// cannot send headers, so the stream is authenticated from the query.
// An empty token disables the check.
//
// Usage:
//
//	app.Get("/api/delegations/stream", middleware.SSETokenMiddleware(cfg.APIToken, logger), broker.StreamSSE)
func SSETokenMiddleware(token string, logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if token == "" {
			return c.Next()
		}

		got := strings.TrimSpace(c.Query("token"))
		if got == "" {
			got = bearerToken(c.Get(fiber.HeaderAuthorization))
		}
		if got == "" {
			logger.Info("[SSEAuth] ❌ Missing token", zap.String("ip", c.IP()))
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Missing token in query",
			})
		}
		if !tokenMatches(got, token) {
			logger.Warn("[SSEAuth] ❌ Invalid token", zap.String("ip", c.IP()), zap.Int("token_len", len(got)))
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Unauthorized",
			})
		}
		return c.Next()
	}
}
