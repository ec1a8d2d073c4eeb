package handlers

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/soltixdb/cyclix/internal/analytics"
	"github.com/soltixdb/cyclix/internal/loader"
	"github.com/soltixdb/cyclix/internal/models"
)

type errorClass struct {
	target error
	status int
	code   string
}

// errorClasses maps sentinel errors to responses, first match wins
var errorClasses = []errorClass{
	{loader.ErrUnreachable, fiber.StatusBadGateway, "SOURCE_UNREACHABLE"},
	{loader.ErrMalformedSource, fiber.StatusUnprocessableEntity, "MALFORMED_SOURCE"},
	{loader.ErrUnsupportedFormat, fiber.StatusUnprocessableEntity, "UNSUPPORTED_FORMAT"},
	{analytics.ErrMissingColumn, fiber.StatusUnprocessableEntity, "MISSING_COLUMN"},
	{analytics.ErrNonNumeric, fiber.StatusUnprocessableEntity, "NON_NUMERIC"},
	{analytics.ErrDomain, fiber.StatusUnprocessableEntity, "DOMAIN_ERROR"},
	{analytics.ErrInsufficientData, fiber.StatusUnprocessableEntity, "INSUFFICIENT_DATA"},
	{analytics.ErrDivideByZero, fiber.StatusUnprocessableEntity, "DIVIDE_BY_ZERO"},
	{analytics.ErrInvalidIndex, fiber.StatusUnprocessableEntity, "INVALID_INDEX"},
	{analytics.ErrLengthMismatch, fiber.StatusBadRequest, "INVALID_REQUEST"},
	{analytics.ErrInvalidParameter, fiber.StatusBadRequest, "INVALID_PARAMETER"},
	{context.DeadlineExceeded, fiber.StatusGatewayTimeout, "TIMEOUT"},
}

// classify returns the status and code for err
func classify(err error) (int, string) {
	for _, ec := range errorClasses {
		if errors.Is(err, ec.target) {
			return ec.status, ec.code
		}
	}
	return fiber.StatusInternalServerError, "INTERNAL_ERROR"
}

// respondError writes err in the API error format. Operation failures carry
// the operation and column in the details.
func (h *Handler) respondError(c *fiber.Ctx, err error, details map[string]interface{}) error {
	status, code := classify(err)

	var opErr *analytics.OpError
	if errors.As(err, &opErr) {
		if details == nil {
			details = make(map[string]interface{})
		}
		details["op"] = opErr.Op
		if opErr.Column != "" {
			details["column"] = opErr.Column
		}
	}

	message := err.Error()
	if status >= fiber.StatusInternalServerError && status != fiber.StatusBadGateway && status != fiber.StatusGatewayTimeout {
		h.log(c).Error("Request failed", "path", c.Path(), "error", err)
		message = "Internal Server Error"
	} else {
		h.log(c).Warn("Request rejected", "path", c.Path(), "code", code, "error", err)
	}

	return c.Status(status).JSON(models.ErrorResponse{
		Error: models.ErrorDetail{
			Code:    code,
			Message: message,
			Path:    c.Path(),
			Details: details,
		},
	})
}

// invalidRequest rejects a body that could not be parsed or validated
func invalidRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
		Error: models.ErrorDetail{
			Code:    "INVALID_REQUEST",
			Message: message,
			Path:    c.Path(),
		},
	})
}
