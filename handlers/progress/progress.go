package progress

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/langroom/api/handlers"
	"github.com/langroom/api/services"
	"github.com/langroom/api/utils/middleware"
	"github.com/langroom/api/utils/response"
	"github.com/langroom/api/utils/validation"
)

// ProgressHandler serves student progress recording and queries
type ProgressHandler struct {
	progress  *services.ProgressService
	validator *validation.Validator
}

func NewProgressHandler(progress *services.ProgressService) *ProgressHandler {
	return &ProgressHandler{
		progress:  progress,
		validator: validation.NewValidator(),
	}
}

// RecordRequest carries a status transition and optional notes
type RecordRequest struct {
	Status string `json:"status" validate:"required,oneof=NOT_STARTED IN_PROGRESS COMPLETED"`
	Notes  string `json:"notes" validate:"omitempty,max=5000"`
}

// Record upserts the caller's progress for one assignment
func (h *ProgressHandler) Record(c *fiber.Ctx) error {
	principal, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	assignmentID, err := strconv.ParseUint(c.Params("assignment_id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid assignment id")
	}

	var req RecordRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	row, err := h.progress.Record(principal, uint(assignmentID), req.Status, req.Notes)
	if err != nil {
		return handlers.MapServiceError(c, err)
	}
	return response.Success(c, row)
}

// MarkViewed records that the assignment was opened without touching an
// existing progress row
func (h *ProgressHandler) MarkViewed(c *fiber.Ctx) error {
	principal, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	assignmentID, err := strconv.ParseUint(c.Params("assignment_id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid assignment id")
	}

	row, err := h.progress.MarkViewed(principal, uint(assignmentID))
	if err != nil {
		return handlers.MapServiceError(c, err)
	}
	return response.Success(c, row)
}

// List returns progress rows under one enrollment
func (h *ProgressHandler) List(c *fiber.Ctx) error {
	principal, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	enrollmentID, err := strconv.ParseUint(c.Query("enrollment_id", "0"), 10, 32)
	if err != nil || enrollmentID == 0 {
		return response.BadRequest(c, "enrollment_id query parameter is required")
	}

	rows, err := h.progress.ListByEnrollment(principal, uint(enrollmentID))
	if err != nil {
		return handlers.MapServiceError(c, err)
	}
	return response.Success(c, rows)
}
