package services

import (
	"errors"
	"fmt"

	"github.com/langroom/api/model"
	"github.com/langroom/api/utils/policy"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AssignmentService attaches resources to enrollments with a stable,
// per-enrollment 1-based order.
type AssignmentService struct {
	db *gorm.DB
}

func NewAssignmentService(db *gorm.DB) *AssignmentService {
	return &AssignmentService{db: db}
}

// Assign attaches resources to an enrollment in input order, assigning
// consecutive positions starting at max(sort_order)+1. The whole batch
// runs in one transaction holding a row lock on the enrollment, so two
// concurrent assign calls serialize instead of computing the same base.
// Any duplicate (enrollment, resource) pair fails the entire batch.
func (s *AssignmentService) Assign(principal *model.User, enrollmentID uint, resourceIDs []uint) ([]model.Assignment, error) {
	if len(resourceIDs) == 0 {
		return nil, fmt.Errorf("resource_ids must not be empty: %w", ErrInvalid)
	}

	var assignments []model.Assignment
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var enrollment model.Enrollment
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&enrollment, enrollmentID).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("enrollment %d: %w", enrollmentID, ErrNotFound)
			}
			return err
		}
		if err := tx.First(&enrollment.Course, enrollment.CourseID).Error; err != nil {
			return err
		}

		if d := policy.CanAssign(principal, &enrollment); !d.Allowed {
			return fmt.Errorf("%s: %w", d.Reason, ErrForbidden)
		}

		// All referenced resources must exist before anything is written
		var found int64
		if err := tx.Model(&model.Resource{}).Where("id IN ?", resourceIDs).Count(&found).Error; err != nil {
			return err
		}
		if found != int64(len(resourceIDs)) {
			return fmt.Errorf("one or more resources: %w", ErrNotFound)
		}

		var maxOrder int
		err = tx.Model(&model.Assignment{}).
			Where("enrollment_id = ?", enrollmentID).
			Select("COALESCE(MAX(sort_order), 0)").
			Scan(&maxOrder).Error
		if err != nil {
			return err
		}

		for i, resourceID := range resourceIDs {
			assignments = append(assignments, model.Assignment{
				EnrollmentID: enrollmentID,
				ResourceID:   resourceID,
				Order:        maxOrder + i + 1,
			})
		}

		if err := tx.Create(&assignments).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return fmt.Errorf("resource already assigned to enrollment: %w", ErrConflict)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return assignments, nil
}

// List returns an enrollment's assignments in position order, with
// their resources and any progress rows.
func (s *AssignmentService) List(principal *model.User, enrollmentID uint) ([]model.Assignment, error) {
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

	var assignments []model.Assignment
	err := s.db.
		Preload("Resource").
		Preload("Progress").
		Where("enrollment_id = ?", enrollmentID).
		Order("sort_order ASC").
		Find(&assignments).Error
	if err != nil {
		return nil, err
	}
	return assignments, nil
}

// Unassign removes one assignment and its progress rows. Remaining
// positions keep their values; new assignments still append after the
// historical maximum.
func (s *AssignmentService) Unassign(principal *model.User, assignmentID uint) error {
	var assignment model.Assignment
	err := s.db.Preload("Enrollment.Course").First(&assignment, assignmentID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("assignment %d: %w", assignmentID, ErrNotFound)
		}
		return err
	}

	if d := policy.CanAssign(principal, &assignment.Enrollment); !d.Allowed {
		return fmt.Errorf("%s: %w", d.Reason, ErrForbidden)
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("assignment_id = ?", assignmentID).Delete(&model.Progress{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Assignment{}, assignmentID).Error
	})
}
