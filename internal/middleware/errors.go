package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/pilotify/pilotify-api/internal/policy"
)

// ErrorHandler renders every error as the standard envelope. Unknown
// errors are logged and reported as a bare 500.
func ErrorHandler(log *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		body := fiber.Map{"success": false}

		var pe *policy.Error
		var fe *fiber.Error
		status := fiber.StatusInternalServerError
		switch {
		case errors.As(err, &pe):
			status = pe.Status()
			body["message"] = pe.Error()
			if len(pe.Fields) > 0 {
				body["errors"] = pe.Fields
			}
		case errors.As(err, &fe):
			status = fe.Code
			body["message"] = fe.Message
		default:
			log.Error("unhandled error",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.Error(err))
			body["message"] = "Internal server error"
		}
		return c.Status(status).JSON(body)
	}
}
