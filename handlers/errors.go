package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/langroom/api/services"
	"github.com/langroom/api/utils/response"
)

// MapServiceError translates service sentinel errors into the standard
// response envelope. Unknown errors become an opaque 500 so store
// internals never leak to clients.
func MapServiceError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrNotFound):
		return response.NotFound(c, err.Error())
	case errors.Is(err, services.ErrForbidden):
		return response.Forbidden(c, err.Error())
	case errors.Is(err, services.ErrConflict):
		return response.Conflict(c, err.Error())
	case errors.Is(err, services.ErrInvalid):
		return response.Error(c, fiber.StatusUnprocessableEntity, err.Error(), "VALIDATION_ERROR")
	default:
		return response.InternalServerError(c, "Something went wrong")
	}
}
