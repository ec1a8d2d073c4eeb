package middleware

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/soltixdb/cyclix/internal/logging"
	"github.com/soltixdb/cyclix/internal/models"
)

// ErrorHandler renders errors that escape the handlers, such as body limit
// violations and panics caught by the recover middleware, in the API error
// format
func ErrorHandler(logger *logging.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		message := "Internal Server Error"

		var fe *fiber.Error
		if errors.As(err, &fe) {
			code = fe.Code
			message = fe.Message
		}

		log := logger.WithContext(c.UserContext())
		if code >= fiber.StatusInternalServerError {
			log.Error("Request error", "path", c.Path(), "method", c.Method(), "status", code, "error", err)
		} else {
			log.Warn("Request rejected", "path", c.Path(), "method", c.Method(), "status", code, "error", err)
		}

		return c.Status(code).JSON(models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    errorCode(code),
				Message: message,
				Path:    c.Path(),
			},
		})
	}
}

// errorCode turns a status into an upper-case code, 413 -> REQUEST_ENTITY_TOO_LARGE
func errorCode(status int) string {
	text := utils.StatusMessage(status)
	if text == "" {
		return "ERROR"
	}
	return strings.ToUpper(strings.NewReplacer(" ", "_", "-", "_").Replace(text))
}
