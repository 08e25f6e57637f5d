package enrollment

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/langroom/api/handlers"
	"github.com/langroom/api/services"
	"github.com/langroom/api/utils/middleware"
	"github.com/langroom/api/utils/response"
	"github.com/langroom/api/utils/validation"
)

// EnrollmentHandler serves enrollment lifecycle and course notes
type EnrollmentHandler struct {
	enrollments *services.EnrollmentService
	validator   *validation.Validator
}

func NewEnrollmentHandler(enrollments *services.EnrollmentService) *EnrollmentHandler {
	return &EnrollmentHandler{
		enrollments: enrollments,
		validator:   validation.NewValidator(),
	}
}

// EnrollRequest links a student to a course
type EnrollRequest struct {
	StudentID uint `json:"student_id" validate:"required"`
	CourseID  uint `json:"course_id" validate:"required"`
}

// Enroll creates an enrollment; duplicates return Conflict
func (h *EnrollmentHandler) Enroll(c *fiber.Ctx) error {
	principal, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	var req EnrollRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	enrollment, err := h.enrollments.Enroll(principal, req.StudentID, req.CourseID)
	if err != nil {
		return handlers.MapServiceError(c, err)
	}
	return response.Created(c, enrollment)
}

// List returns enrollments filtered by course_id and/or student_id
func (h *EnrollmentHandler) List(c *fiber.Ctx) error {
	principal, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	courseID, _ := strconv.ParseUint(c.Query("course_id", "0"), 10, 32)
	studentID, _ := strconv.ParseUint(c.Query("student_id", "0"), 10, 32)

	enrollments, err := h.enrollments.List(principal, uint(courseID), uint(studentID))
	if err != nil {
		return handlers.MapServiceError(c, err)
	}
	return response.Success(c, enrollments)
}

// Get returns one enrollment with assignments, progress, and note
func (h *EnrollmentHandler) Get(c *fiber.Ctx) error {
	principal, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	enrollmentID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid enrollment id")
	}

	enrollment, err := h.enrollments.Get(principal, uint(enrollmentID))
	if err != nil {
		return handlers.MapServiceError(c, err)
	}
	return response.Success(c, enrollment)
}

// Unenroll removes an enrollment and its dependents
func (h *EnrollmentHandler) Unenroll(c *fiber.Ctx) error {
	principal, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	enrollmentID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid enrollment id")
	}

	if err := h.enrollments.Unenroll(principal, uint(enrollmentID)); err != nil {
		return handlers.MapServiceError(c, err)
	}
	return response.SuccessWithMessage(c, "Enrollment removed", nil)
}

// NoteRequest carries the teacher's rich-text note
type NoteRequest struct {
	Content string `json:"content" validate:"required"`
}

// GetNote returns the enrollment's note
func (h *EnrollmentHandler) GetNote(c *fiber.Ctx) error {
	principal, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	enrollmentID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid enrollment id")
	}

	note, err := h.enrollments.GetNote(principal, uint(enrollmentID))
	if err != nil {
		return handlers.MapServiceError(c, err)
	}
	return response.Success(c, note)
}

// PutNote creates or replaces the enrollment's single note
func (h *EnrollmentHandler) PutNote(c *fiber.Ctx) error {
	principal, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	enrollmentID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid enrollment id")
	}

	var req NoteRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	note, err := h.enrollments.UpsertNote(principal, uint(enrollmentID), req.Content)
	if err != nil {
		return handlers.MapServiceError(c, err)
	}
	return response.Success(c, note)
}
