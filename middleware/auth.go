// middleware/auth.go
package middleware

import (
	"web3-dashboard/utils"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// RequestContextMiddleware carries the request id into the handler's
// context so outbound API calls reuse it. It must run after requestid.New.
func RequestContextMiddleware(logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, _ := c.Locals("requestid").(string)
		if id == "" {
			id = c.Get(utils.RequestIDHeader)
		}

		c.SetUserContext(utils.WithRequestID(c.UserContext(), id))
		c.Locals("request_id", id)

		logger.Debug("👤 [REQUEST_CTX] Request",
			zap.String("request_id", id),
			zap.String("method", c.Method()),
			zap.String("path", c.Path()))
		return c.Next()
	}
}

// RequestIDFromCtx returns the id set by RequestContextMiddleware.
func RequestIDFromCtx(c *fiber.Ctx) string {
	id, _ := c.Locals("request_id").(string)
	return id
}
