package assignment

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/langroom/api/handlers"
	"github.com/langroom/api/services"
	"github.com/langroom/api/utils/middleware"
	"github.com/langroom/api/utils/response"
	"github.com/langroom/api/utils/validation"
)

// AssignmentHandler serves resource↔enrollment attachment
type AssignmentHandler struct {
	assignments *services.AssignmentService
	validator   *validation.Validator
}

func NewAssignmentHandler(assignments *services.AssignmentService) *AssignmentHandler {
	return &AssignmentHandler{
		assignments: assignments,
		validator:   validation.NewValidator(),
	}
}

// AssignRequest attaches resources to one enrollment, in input order
type AssignRequest struct {
	EnrollmentID uint   `json:"enrollment_id" validate:"required"`
	ResourceIDs  []uint `json:"resource_ids" validate:"required,min=1,dive,required"`
}

// Assign creates a batch of assignments; any duplicate fails the batch
func (h *AssignmentHandler) Assign(c *fiber.Ctx) error {
	principal, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	var req AssignRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	assignments, err := h.assignments.Assign(principal, req.EnrollmentID, req.ResourceIDs)
	if err != nil {
		return handlers.MapServiceError(c, err)
	}
	return response.Created(c, assignments)
}

// List returns an enrollment's assignments in position order
func (h *AssignmentHandler) List(c *fiber.Ctx) error {
	principal, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	enrollmentID, err := strconv.ParseUint(c.Query("enrollment_id", "0"), 10, 32)
	if err != nil || enrollmentID == 0 {
		return response.BadRequest(c, "enrollment_id query parameter is required")
	}

	assignments, err := h.assignments.List(principal, uint(enrollmentID))
	if err != nil {
		return handlers.MapServiceError(c, err)
	}
	return response.Success(c, assignments)
}

// Unassign removes one assignment and its progress
func (h *AssignmentHandler) Unassign(c *fiber.Ctx) error {
	principal, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	assignmentID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid assignment id")
	}

	if err := h.assignments.Unassign(principal, uint(assignmentID)); err != nil {
		return handlers.MapServiceError(c, err)
	}
	return response.SuccessWithMessage(c, "Assignment removed", nil)
}
