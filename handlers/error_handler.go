// handlers/error_handler.go
package handlers

import (
	"errors"

	"web3-dashboard/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// ErrorHandler renders errors that escape a handler as
// {"error", "details"} with the status services.HTTPStatus assigns.
func ErrorHandler(logger *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			return c.Status(fe.Code).JSON(fiber.Map{"error": fe.Message})
		}

		status, message, details := services.HTTPStatus(err)
		if status >= fiber.StatusInternalServerError {
			logger.Error("❌ [HTTP] Unhandled error",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.Error(err))
		}
		body := fiber.Map{"error": message}
		if details != "" {
			body["details"] = details
		}
		return c.Status(status).JSON(body)
	}
}
