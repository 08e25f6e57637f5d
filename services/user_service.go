package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/langroom/api/model"
	"github.com/langroom/api/services/storage"
	"github.com/langroom/api/utils/auth"
	"github.com/langroom/api/utils/policy"
	"github.com/langroom/api/utils/validation"
	"gorm.io/gorm"
)

// UserService manages student accounts on behalf of teachers
type UserService struct {
	db     *gorm.DB
	spaces *storage.SpacesClient // nil when object storage is not configured
}

func NewUserService(db *gorm.DB, spaces *storage.SpacesClient) *UserService {
	return &UserService{db: db, spaces: spaces}
}

// CreateStudent provisions a student account with a teacher-chosen password
func (s *UserService) CreateStudent(principal *model.User, email, name, password, avatar string) (*model.User, error) {
	if d := policy.CanManageStudent(principal); !d.Allowed {
		return nil, fmt.Errorf("%s: %w", d.Reason, ErrForbidden)
	}

	email = validation.NormalizeEmail(email)
	if !validation.ValidateEmail(email) {
		return nil, fmt.Errorf("email %q: %w", email, ErrInvalid)
	}
	if ok, problems := validation.ValidatePassword(password); !ok {
		return nil, fmt.Errorf("%s: %w", problems[0], ErrInvalid)
	}

	passwordHash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	student := &model.User{
		Email:        email,
		PasswordHash: passwordHash,
		Name:         validation.SanitizeString(name),
		Role:         model.RoleStudent,
		Avatar:       avatar,
	}
	if err := s.db.Create(student).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("email already registered: %w", ErrConflict)
		}
		return nil, err
	}
	return student, nil
}

// ListStudents returns student accounts, newest first
func (s *UserService) ListStudents(principal *model.User, page, limit int) ([]model.User, int64, error) {
	if d := policy.CanManageStudent(principal); !d.Allowed {
		return nil, 0, fmt.Errorf("%s: %w", d.Reason, ErrForbidden)
	}

	var total int64
	if err := s.db.Model(&model.User{}).Where("role = ?", model.RoleStudent).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var students []model.User
	err := s.db.
		Where("role = ?", model.RoleStudent).
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&students).Error
	if err != nil {
		return nil, 0, err
	}
	return students, total, nil
}

// GetStudent loads one student with their enrollments
func (s *UserService) GetStudent(principal *model.User, studentID uint) (*model.User, error) {
	if d := policy.CanManageStudent(principal); !d.Allowed {
		return nil, fmt.Errorf("%s: %w", d.Reason, ErrForbidden)
	}

	var student model.User
	err := s.db.
		Preload("Enrollments.Course").
		Where("role = ?", model.RoleStudent).
		First(&student, studentID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("student %d: %w", studentID, ErrNotFound)
		}
		return nil, err
	}
	return &student, nil
}

// DeleteStudent removes a student and every row that references them,
// in dependency order, inside one transaction: progress under their
// enrollments' assignments, direct progress, vocabulary progress,
// assignments, course notes, enrollments, documents, reset tokens,
// blacklist entries, then the user row itself. Either everything goes
// or nothing does. Uploaded files are removed from object storage
// best-effort after commit.
func (s *UserService) DeleteStudent(ctx context.Context, principal *model.User, studentID uint) error {
	if d := policy.CanManageStudent(principal); !d.Allowed {
		return fmt.Errorf("%s: %w", d.Reason, ErrForbidden)
	}

	var student model.User
	if err := s.db.Where("role = ?", model.RoleStudent).First(&student, studentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("student %d: %w", studentID, ErrNotFound)
		}
		return err
	}

	// Captured before the delete so storage cleanup can run after commit
	var documents []model.StudentDocument
	if err := s.db.Where("student_id = ?", studentID).Find(&documents).Error; err != nil {
		return err
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		enrollmentIDs := tx.Model(&model.Enrollment{}).
			Select("id").Where("student_id = ?", studentID)
		assignmentIDs := tx.Model(&model.Assignment{}).
			Select("id").Where("enrollment_id IN (?)", enrollmentIDs)

		if err := tx.Where("assignment_id IN (?)", assignmentIDs).Delete(&model.Progress{}).Error; err != nil {
			return err
		}
		if err := tx.Where("student_id = ?", studentID).Delete(&model.Progress{}).Error; err != nil {
			return err
		}
		if err := tx.Where("student_id = ?", studentID).Delete(&model.VocabularyProgress{}).Error; err != nil {
			return err
		}
		if err := tx.Where("enrollment_id IN (?)", enrollmentIDs).Delete(&model.Assignment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("enrollment_id IN (?)", enrollmentIDs).Delete(&model.CourseNote{}).Error; err != nil {
			return err
		}
		if err := tx.Where("student_id = ?", studentID).Delete(&model.Enrollment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("student_id = ?", studentID).Delete(&model.StudentDocument{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", studentID).Delete(&model.PasswordResetToken{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", studentID).Delete(&model.JWTTokenBlacklist{}).Error; err != nil {
			return err
		}
		return tx.Unscoped().Delete(&model.User{}, studentID).Error
	})
	if err != nil {
		return err
	}

	if s.spaces != nil {
		for _, doc := range documents {
			if err := s.spaces.DeleteFile(ctx, doc.FileKey); err != nil {
				log.Printf("Failed to delete stored file %s: %v", doc.FileKey, err)
			}
		}
	}
	return nil
}
