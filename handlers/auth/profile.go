package auth

import (
	"github.com/gofiber/fiber/v2"
	"github.com/langroom/api/utils/middleware"
	"github.com/langroom/api/utils/response"
	"github.com/langroom/api/utils/validation"
)

// UpdateProfileRequest represents a profile update request
type UpdateProfileRequest struct {
	Name   string `json:"name,omitempty" validate:"omitempty,min=2"`
	Avatar string `json:"avatar,omitempty"`
}

// GetProfile returns the authenticated user's profile
func (h *AuthHandler) GetProfile(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	return response.Success(c, toUserResponse(user))
}

// UpdateProfile updates the authenticated user's display fields
func (h *AuthHandler) UpdateProfile(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	var req UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	updates := map[string]interface{}{}
	if req.Name != "" {
		updates["name"] = validation.SanitizeString(req.Name)
	}
	if req.Avatar != "" {
		updates["avatar"] = req.Avatar
	}

	if len(updates) == 0 {
		return response.BadRequest(c, "Nothing to update")
	}

	if err := h.db.Model(user).Updates(updates).Error; err != nil {
		return response.InternalServerError(c, "Failed to update profile")
	}

	return response.Success(c, toUserResponse(user))
}
