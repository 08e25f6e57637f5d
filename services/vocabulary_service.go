package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/langroom/api/model"
	"github.com/langroom/api/utils/policy"
	"github.com/langroom/api/utils/validation"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// VocabularyService tracks bronze/silver/gold challenge milestones per
// (student, level, topic).
type VocabularyService struct {
	db *gorm.DB
}

func NewVocabularyService(db *gorm.DB) *VocabularyService {
	return &VocabularyService{db: db}
}

// NormalizeLevel lower-cases and trims a CEFR level so "B1" and "b1 "
// address the same row on both read and write paths.
func NormalizeLevel(level string) string {
	return strings.ToLower(strings.TrimSpace(level))
}

// NormalizeTopic lower-cases a topic, trims it and collapses internal
// whitespace runs to single spaces, identically on read and write, so
// "Animals  " and "animals" address the same row.
func NormalizeTopic(topic string) string {
	return strings.ToLower(strings.Join(strings.Fields(topic), " "))
}

// ChallengeResult is the flag set a student reports after a challenge run
type ChallengeResult struct {
	Bronze bool
	Silver bool
	Gold   bool
}

// RecordChallenge merges a challenge result into the student's progress
// row for (level, topic). Flags only ever move forward: a false in the
// request never clears an earned medal, and silver requires bronze,
// gold requires silver, checked against the merged state. The whole
// merge runs in a transaction holding a row lock, with the insert going
// through ON CONFLICT so two first-time writers land on one row.
// completed_at is derived: non-nil iff all three flags end up true.
func (s *VocabularyService) RecordChallenge(principal *model.User, level, topic string, result ChallengeResult) (*model.VocabularyProgress, error) {
	level = NormalizeLevel(level)
	topic = NormalizeTopic(topic)

	if !validation.ValidLevel(level) {
		return nil, fmt.Errorf("level %q: %w", level, ErrInvalid)
	}
	if topic == "" {
		return nil, fmt.Errorf("topic must not be empty: %w", ErrInvalid)
	}
	if !principal.IsStudent() {
		return nil, fmt.Errorf("only students record challenge results: %w", ErrForbidden)
	}

	progress := &model.VocabularyProgress{}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var existing model.VocabularyProgress
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("student_id = ? AND level = ? AND topic = ?", principal.ID, level, topic).
			First(&existing).Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		merged := model.VocabularyProgress{
			StudentID: principal.ID,
			Level:     level,
			Topic:     topic,
			Bronze:    existing.Bronze || result.Bronze,
			Silver:    existing.Silver || result.Silver,
			Gold:      existing.Gold || result.Gold,
		}

		// Monotonic unlocking: each medal requires the previous one
		if merged.Silver && !merged.Bronze {
			return fmt.Errorf("silver requires bronze: %w", ErrInvalid)
		}
		if merged.Gold && !merged.Silver {
			return fmt.Errorf("gold requires silver: %w", ErrInvalid)
		}

		if merged.Bronze && merged.Silver && merged.Gold {
			if existing.CompletedAt != nil {
				merged.CompletedAt = existing.CompletedAt
			} else {
				now := time.Now()
				merged.CompletedAt = &now
			}
		}

		err = tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "student_id"}, {Name: "level"}, {Name: "topic"}},
			DoUpdates: clause.AssignmentColumns([]string{"bronze", "silver", "gold", "completed_at", "updated_at"}),
		}).Create(&merged).Error
		if err != nil {
			return err
		}

		return tx.Where("student_id = ? AND level = ? AND topic = ?", principal.ID, level, topic).
			First(progress).Error
	})
	if err != nil {
		return nil, err
	}
	return progress, nil
}

// List returns vocabulary progress rows, optionally filtered by level
// and topic. Teachers may read any student; students only themselves.
func (s *VocabularyService) List(principal *model.User, studentID uint, level, topic string) ([]model.VocabularyProgress, error) {
	if studentID == 0 {
		studentID = principal.ID
	}
	if d := policy.CanViewVocabulary(principal, studentID); !d.Allowed {
		return nil, fmt.Errorf("%s: %w", d.Reason, ErrForbidden)
	}

	query := s.db.Where("student_id = ?", studentID)
	if level != "" {
		query = query.Where("level = ?", NormalizeLevel(level))
	}
	if topic != "" {
		query = query.Where("topic = ?", NormalizeTopic(topic))
	}

	var rows []model.VocabularyProgress
	if err := query.Order("level ASC, topic ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
