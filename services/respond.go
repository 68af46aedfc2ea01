// services/respond.go
package services

import (
	"github.com/gofiber/fiber/v2"
)

// respondError writes err as {"error", "details"} with the mapped status.
func respondError(c *fiber.Ctx, err error) error {
	status, message, details := HTTPStatus(err)
	body := fiber.Map{"error": message}
	if details != "" {
		body["details"] = details
	}
	return c.Status(status).JSON(body)
}

// idParam reads a positive integer route parameter.
func idParam(c *fiber.Ctx, name, invalidMessage string) (uint, error) {
	id, err := c.ParamsInt(name)
	if err != nil || id <= 0 {
		return 0, &ValidationError{Message: invalidMessage}
	}
	return uint(id), nil
}
