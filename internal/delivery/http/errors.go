package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/carbovista/backend/internal/domain"
)

// StatusFor maps an error to its HTTP status: fiber errors keep their
// code, validation-class domain errors are 400, anything else 500.
func StatusFor(err error) int {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code
	}
	if domain.IsClientError(err) {
		return fiber.StatusBadRequest
	}
	return fiber.StatusInternalServerError
}

// ErrorHandler writes every error as {"error": message}.
func ErrorHandler(c *fiber.Ctx, err error) error {
	return c.Status(StatusFor(err)).JSON(fiber.Map{
		"error": err.Error(),
	})
}
