package serverutils

import (
	"errors"

	"medassist-be/internal/pkg/apperror"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandlerMiddleware converts errors bubbling out of handlers into the
// standard response envelope. Application errors map to their HTTP status,
// anything unknown becomes a 500 with a generic message.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()
		if err == nil {
			return nil
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return c.Status(fiberErr.Code).JSON(ErrorResponse(fiberErr.Code, fiberErr.Message))
		}

		status := apperror.StatusCode(err)
		message := err.Error()
		if status == fiber.StatusInternalServerError {
			message = "Internal server error"
		}
		return c.Status(status).JSON(ErrorResponse(status, message))
	}
}
