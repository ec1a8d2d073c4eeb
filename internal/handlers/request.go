package handlers

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
)

type validatable interface {
	Validate() error
}

// decode parses the JSON body into req and validates it
func decode(c *fiber.Ctx, req validatable) error {
	if err := c.BodyParser(req); err != nil {
		return fmt.Errorf("invalid request body: %v", err)
	}
	if err := req.Validate(); err != nil {
		return fmt.Errorf("invalid request: %v", err)
	}
	return nil
}
