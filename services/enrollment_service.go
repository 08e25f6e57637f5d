package services

import (
	"errors"
	"fmt"

	"github.com/langroom/api/model"
	"github.com/langroom/api/utils/htmlcontent"
	"github.com/langroom/api/utils/policy"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// EnrollmentService manages the student↔course links and their notes
type EnrollmentService struct {
	db *gorm.DB
}

func NewEnrollmentService(db *gorm.DB) *EnrollmentService {
	return &EnrollmentService{db: db}
}

// Enroll links a student to a course. The composite unique index on
// (student_id, course_id) backs the duplicate check under concurrent
// calls; a duplicate surfaces as ErrConflict.
func (s *EnrollmentService) Enroll(principal *model.User, studentID, courseID uint) (*model.Enrollment, error) {
	var course model.Course
	if err := s.db.First(&course, courseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("course %d: %w", courseID, ErrNotFound)
		}
		return nil, err
	}

	var student model.User
	if err := s.db.First(&student, studentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("student %d: %w", studentID, ErrNotFound)
		}
		return nil, err
	}

	if d := policy.CanEnroll(principal, &course, &student); !d.Allowed {
		return nil, fmt.Errorf("%s: %w", d.Reason, ErrForbidden)
	}

	enrollment := &model.Enrollment{
		StudentID: studentID,
		CourseID:  courseID,
	}
	if err := s.db.Create(enrollment).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("student already enrolled in course: %w", ErrConflict)
		}
		return nil, err
	}

	enrollment.Student = student
	enrollment.Course = course
	return enrollment, nil
}

// Get loads one enrollment with its course, student, assignments, and note
func (s *EnrollmentService) Get(principal *model.User, enrollmentID uint) (*model.Enrollment, error) {
	var enrollment model.Enrollment
	err := s.db.
		Preload("Course").
		Preload("Student").
		Preload("Note").
		Preload("Assignments", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC")
		}).
		Preload("Assignments.Resource").
		Preload("Assignments.Progress").
		First(&enrollment, enrollmentID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("enrollment %d: %w", enrollmentID, ErrNotFound)
		}
		return nil, err
	}

	if d := policy.CanViewEnrollment(principal, &enrollment); !d.Allowed {
		return nil, fmt.Errorf("%s: %w", d.Reason, ErrForbidden)
	}
	return &enrollment, nil
}

// List returns enrollments filtered by course and/or student. Students
// only ever see their own rows; teachers see rows for courses they own.
func (s *EnrollmentService) List(principal *model.User, courseID, studentID uint) ([]model.Enrollment, error) {
	query := s.db.
		Preload("Course").
		Preload("Student").
		Order("enrolled_at DESC")

	if principal.IsStudent() {
		// Students are pinned to their own enrollments regardless of filters
		query = query.Where("student_id = ?", principal.ID)
	} else {
		query = query.
			Joins("JOIN courses ON courses.id = enrollments.course_id").
			Where("courses.creator_id = ?", principal.ID)
		if studentID != 0 {
			query = query.Where("enrollments.student_id = ?", studentID)
		}
	}
	if courseID != 0 {
		query = query.Where("enrollments.course_id = ?", courseID)
	}

	var enrollments []model.Enrollment
	if err := query.Find(&enrollments).Error; err != nil {
		return nil, err
	}
	return enrollments, nil
}

// Unenroll removes an enrollment and everything under it: progress for
// its assignments, the assignments, and the course note, in one
// transaction in dependency order.
func (s *EnrollmentService) Unenroll(principal *model.User, enrollmentID uint) error {
	var enrollment model.Enrollment
	if err := s.db.Preload("Course").First(&enrollment, enrollmentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("enrollment %d: %w", enrollmentID, ErrNotFound)
		}
		return err
	}

	if d := policy.CanAssign(principal, &enrollment); !d.Allowed {
		return fmt.Errorf("%s: %w", d.Reason, ErrForbidden)
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where(
			"assignment_id IN (?)",
			tx.Model(&model.Assignment{}).Select("id").Where("enrollment_id = ?", enrollmentID),
		).Delete(&model.Progress{}).Error; err != nil {
			return err
		}
		if err := tx.Where("enrollment_id = ?", enrollmentID).Delete(&model.Assignment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("enrollment_id = ?", enrollmentID).Delete(&model.CourseNote{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Enrollment{}, enrollmentID).Error
	})
}

// GetNote returns the enrollment's course note, or ErrNotFound when none exists
func (s *EnrollmentService) GetNote(principal *model.User, enrollmentID uint) (*model.CourseNote, error) {
	enrollment, err := s.loadForView(principal, enrollmentID)
	if err != nil {
		return nil, err
	}

	var note model.CourseNote
	if err := s.db.Where("enrollment_id = ?", enrollment.ID).First(&note).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("note for enrollment %d: %w", enrollmentID, ErrNotFound)
		}
		return nil, err
	}
	return &note, nil
}

// UpsertNote creates or replaces the single note on an enrollment.
// Content is sanitized rich text; the unique index on enrollment_id
// plus ON CONFLICT keeps it one row per enrollment.
func (s *EnrollmentService) UpsertNote(principal *model.User, enrollmentID uint, content string) (*model.CourseNote, error) {
	var enrollment model.Enrollment
	if err := s.db.Preload("Course").First(&enrollment, enrollmentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("enrollment %d: %w", enrollmentID, ErrNotFound)
		}
		return nil, err
	}

	if d := policy.CanAssign(principal, &enrollment); !d.Allowed {
		return nil, fmt.Errorf("%s: %w", d.Reason, ErrForbidden)
	}

	clean, err := htmlcontent.Sanitize(content)
	if err != nil {
		return nil, fmt.Errorf("note content: %w", ErrInvalid)
	}

	note := &model.CourseNote{
		EnrollmentID: enrollmentID,
		Content:      clean,
	}
	err = s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "enrollment_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"content", "updated_at"}),
	}).Create(note).Error
	if err != nil {
		return nil, err
	}

	// Re-read so the caller sees the surviving row's id and timestamps
	if err := s.db.Where("enrollment_id = ?", enrollmentID).First(note).Error; err != nil {
		return nil, err
	}
	return note, nil
}

func (s *EnrollmentService) loadForView(principal *model.User, enrollmentID uint) (*model.Enrollment, error) {
	var enrollment model.Enrollment
	if err := s.db.Preload("Course").First(&enrollment, enrollmentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("enrollment %d: %w", enrollmentID, ErrNotFound)
		}
		return nil, err
	}
	if d := policy.CanViewEnrollment(principal, &enrollment); !d.Allowed {
		return nil, fmt.Errorf("%s: %w", d.Reason, ErrForbidden)
	}
	return &enrollment, nil
}
