package user

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/langroom/api/handlers"
	"github.com/langroom/api/services"
	"github.com/langroom/api/utils/middleware"
	"github.com/langroom/api/utils/response"
	"github.com/langroom/api/utils/validation"
)

// UserHandler serves the teacher's student-management endpoints
type UserHandler struct {
	users     *services.UserService
	progress  *services.ProgressService
	email     *services.EmailService
	validator *validation.Validator
}

func NewUserHandler(users *services.UserService, progress *services.ProgressService) *UserHandler {
	return &UserHandler{
		users:     users,
		progress:  progress,
		email:     services.NewEmailService(),
		validator: validation.NewValidator(),
	}
}

// CreateStudentRequest is the teacher-supplied student account shape
type CreateStudentRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Name     string `json:"name" validate:"required,min=2"`
	Password string `json:"password" validate:"required,min=8"`
	Avatar   string `json:"avatar,omitempty"`
}

// CreateStudent provisions a student account
func (h *UserHandler) CreateStudent(c *fiber.Ctx) error {
	principal, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	var req CreateStudentRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	student, err := h.users.CreateStudent(principal, req.Email, req.Name, req.Password, req.Avatar)
	if err != nil {
		return handlers.MapServiceError(c, err)
	}

	// Best-effort welcome mail; account creation already succeeded
	_ = h.email.SendWelcomeEmail(student.Email, student.Name, principal.Name)

	return response.Created(c, student)
}

// ListStudents returns a paginated student roster
func (h *UserHandler) ListStudents(c *fiber.Ctx) error {
	principal, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	students, total, err := h.users.ListStudents(principal, page, limit)
	if err != nil {
		return handlers.MapServiceError(c, err)
	}

	return response.Paginated(c, students, response.CalculatePagination(page, limit, total))
}

// GetStudent returns one student with their enrollments
func (h *UserHandler) GetStudent(c *fiber.Ctx) error {
	principal, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	studentID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid student id")
	}

	student, err := h.users.GetStudent(principal, uint(studentID))
	if err != nil {
		return handlers.MapServiceError(c, err)
	}
	return response.Success(c, student)
}

// GetStudentProgress returns every progress row a student owns
func (h *UserHandler) GetStudentProgress(c *fiber.Ctx) error {
	principal, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	studentID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid student id")
	}

	rows, err := h.progress.ListByStudent(principal, uint(studentID))
	if err != nil {
		return handlers.MapServiceError(c, err)
	}
	return response.Success(c, rows)
}

// DeleteStudent removes a student and everything referencing them
func (h *UserHandler) DeleteStudent(c *fiber.Ctx) error {
	principal, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	studentID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid student id")
	}

	if err := h.users.DeleteStudent(c.Context(), principal, uint(studentID)); err != nil {
		return handlers.MapServiceError(c, err)
	}
	return response.SuccessWithMessage(c, "Student deleted", nil)
}
