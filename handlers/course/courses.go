package course

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/langroom/api/model"
	"github.com/langroom/api/utils/middleware"
	"github.com/langroom/api/utils/policy"
	"github.com/langroom/api/utils/response"
	"github.com/langroom/api/utils/validation"
	"gorm.io/gorm"
)

// CourseHandler handles course CRUD for teachers
type CourseHandler struct {
	db        *gorm.DB
	validator *validation.Validator
}

func NewCourseHandler(db *gorm.DB) *CourseHandler {
	return &CourseHandler{
		db:        db,
		validator: validation.NewValidator(),
	}
}

// CourseRequest is the create/update shape
type CourseRequest struct {
	Name     string `json:"name" validate:"required,max=255"`
	Duration int    `json:"duration" validate:"omitempty,min=0,max=10000"`
}

// Create adds a course owned by the calling teacher
func (h *CourseHandler) Create(c *fiber.Ctx) error {
	principal, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}
	if !principal.IsTeacher() {
		return response.Forbidden(c, "Teacher role required")
	}

	var req CourseRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	course := model.Course{
		Name:      validation.SanitizeString(req.Name),
		Duration:  req.Duration,
		CreatorID: principal.ID,
	}
	if err := h.db.Create(&course).Error; err != nil {
		return response.InternalServerError(c, "Failed to create course")
	}
	return response.Created(c, course)
}

// List returns courses. Teachers see the courses they created;
// students see the courses they are enrolled in.
func (h *CourseHandler) List(c *fiber.Ctx) error {
	principal, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	var courses []model.Course
	query := h.db.Order("created_at DESC")
	if principal.IsTeacher() {
		query = query.Where("creator_id = ?", principal.ID)
	} else {
		query = query.
			Joins("JOIN enrollments ON enrollments.course_id = courses.id").
			Where("enrollments.student_id = ?", principal.ID)
	}
	if err := query.Find(&courses).Error; err != nil {
		return response.InternalServerError(c, "Failed to list courses")
	}
	return response.Success(c, courses)
}

// Get returns one course with its enrollments (owner or enrolled student)
func (h *CourseHandler) Get(c *fiber.Ctx) error {
	principal, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	courseID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid course id")
	}

	var course model.Course
	err = h.db.Preload("Enrollments.Student").First(&course, courseID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c, "Course not found")
		}
		return response.InternalServerError(c, "Failed to load course")
	}

	if principal.IsTeacher() {
		if course.CreatorID != principal.ID {
			return response.Forbidden(c, "Course belongs to another teacher")
		}
		return response.Success(c, course)
	}

	var enrolled int64
	h.db.Model(&model.Enrollment{}).
		Where("course_id = ? AND student_id = ?", course.ID, principal.ID).
		Count(&enrolled)
	if enrolled == 0 {
		return response.Forbidden(c, "Not enrolled in this course")
	}
	course.Enrollments = nil // students don't see the roster
	return response.Success(c, course)
}

// Update modifies a course the caller owns
func (h *CourseHandler) Update(c *fiber.Ctx) error {
	principal, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	courseID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid course id")
	}

	var course model.Course
	if err := h.db.First(&course, courseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c, "Course not found")
		}
		return response.InternalServerError(c, "Failed to load course")
	}

	if d := policy.CanManageCourse(principal, &course); !d.Allowed {
		return response.Forbidden(c, d.Reason)
	}

	var req CourseRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	course.Name = validation.SanitizeString(req.Name)
	course.Duration = req.Duration
	if err := h.db.Save(&course).Error; err != nil {
		return response.InternalServerError(c, "Failed to update course")
	}
	return response.Success(c, course)
}

// Delete removes a course and everything enrolled under it
func (h *CourseHandler) Delete(c *fiber.Ctx) error {
	principal, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	courseID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid course id")
	}

	var course model.Course
	if err := h.db.First(&course, courseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c, "Course not found")
		}
		return response.InternalServerError(c, "Failed to load course")
	}

	if d := policy.CanManageCourse(principal, &course); !d.Allowed {
		return response.Forbidden(c, d.Reason)
	}

	err = h.db.Transaction(func(tx *gorm.DB) error {
		enrollmentIDs := tx.Model(&model.Enrollment{}).
			Select("id").Where("course_id = ?", course.ID)
		assignmentIDs := tx.Model(&model.Assignment{}).
			Select("id").Where("enrollment_id IN (?)", enrollmentIDs)

		if err := tx.Where("assignment_id IN (?)", assignmentIDs).Delete(&model.Progress{}).Error; err != nil {
			return err
		}
		if err := tx.Where("enrollment_id IN (?)", enrollmentIDs).Delete(&model.Assignment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("enrollment_id IN (?)", enrollmentIDs).Delete(&model.CourseNote{}).Error; err != nil {
			return err
		}
		if err := tx.Where("course_id = ?", course.ID).Delete(&model.Enrollment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&course).Error
	})
	if err != nil {
		return response.InternalServerError(c, "Failed to delete course")
	}

	return response.SuccessWithMessage(c, "Course deleted", nil)
}
