package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/langroom/api/model"
	"github.com/langroom/api/utils/policy"
	"github.com/langroom/api/utils/validation"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProgressService records per-assignment status for students
type ProgressService struct {
	db *gorm.DB
}

func NewProgressService(db *gorm.DB) *ProgressService {
	return &ProgressService{db: db}
}

// Record upserts the caller's progress row for one assignment as a
// single ON CONFLICT round trip, so two concurrent writers both land on
// the same row. completed_at is derived here: set when the status is
// COMPLETED, cleared on any regression.
func (s *ProgressService) Record(principal *model.User, assignmentID uint, status, notes string) (*model.Progress, error) {
	if !model.ValidStatus(status) {
		return nil, fmt.Errorf("status %q: %w", status, ErrInvalid)
	}

	assignment, err := s.loadAssignment(assignmentID)
	if err != nil {
		return nil, err
	}
	if d := policy.CanRecordProgress(principal, assignment); !d.Allowed {
		return nil, fmt.Errorf("%s: %w", d.Reason, ErrForbidden)
	}

	progress := &model.Progress{
		AssignmentID: assignmentID,
		StudentID:    principal.ID,
		Status:       status,
		Notes:        validation.SanitizeString(notes),
	}
	if status == model.StatusCompleted {
		now := time.Now()
		progress.CompletedAt = &now
	}

	err = s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "assignment_id"}, {Name: "student_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"status", "notes", "completed_at", "updated_at"}),
	}).Create(progress).Error
	if err != nil {
		return nil, err
	}

	// Re-read so the caller sees the surviving row, not the insert attempt
	if err := s.db.Where("assignment_id = ? AND student_id = ?", assignmentID, principal.ID).First(progress).Error; err != nil {
		return nil, err
	}
	return progress, nil
}

// MarkViewed records that the student opened the assignment by creating
// a NOT_STARTED row if none exists. An existing row, whatever its
// status, is never touched: ON CONFLICT DO NOTHING.
func (s *ProgressService) MarkViewed(principal *model.User, assignmentID uint) (*model.Progress, error) {
	assignment, err := s.loadAssignment(assignmentID)
	if err != nil {
		return nil, err
	}
	if d := policy.CanRecordProgress(principal, assignment); !d.Allowed {
		return nil, fmt.Errorf("%s: %w", d.Reason, ErrForbidden)
	}

	progress := &model.Progress{
		AssignmentID: assignmentID,
		StudentID:    principal.ID,
		Status:       model.StatusNotStarted,
	}
	err = s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "assignment_id"}, {Name: "student_id"}},
		DoNothing: true,
	}).Create(progress).Error
	if err != nil {
		return nil, err
	}

	if err := s.db.Where("assignment_id = ? AND student_id = ?", assignmentID, principal.ID).First(progress).Error; err != nil {
		return nil, err
	}
	return progress, nil
}

// ListByEnrollment returns every progress row under one enrollment's assignments
func (s *ProgressService) ListByEnrollment(principal *model.User, enrollmentID uint) ([]model.Progress, error) {
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

	var progress []model.Progress
	err := s.db.
		Joins("JOIN assignments ON assignments.id = progress.assignment_id").
		Where("assignments.enrollment_id = ?", enrollmentID).
		Order("assignments.sort_order ASC").
		Find(&progress).Error
	if err != nil {
		return nil, err
	}
	return progress, nil
}

// ListByStudent returns every progress row a student owns, for the
// teacher's per-student progress view (and students reading themselves).
func (s *ProgressService) ListByStudent(principal *model.User, studentID uint) ([]model.Progress, error) {
	if principal.IsStudent() && principal.ID != studentID {
		return nil, fmt.Errorf("students may only view their own progress: %w", ErrForbidden)
	}

	var progress []model.Progress
	err := s.db.
		Preload("Assignment.Resource").
		Where("student_id = ?", studentID).
		Order("updated_at DESC").
		Find(&progress).Error
	if err != nil {
		return nil, err
	}
	return progress, nil
}

func (s *ProgressService) loadAssignment(assignmentID uint) (*model.Assignment, error) {
	var assignment model.Assignment
	err := s.db.Preload("Enrollment").First(&assignment, assignmentID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("assignment %d: %w", assignmentID, ErrNotFound)
		}
		return nil, err
	}
	return &assignment, nil
}
