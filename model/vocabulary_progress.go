package model

import (
	"time"
)

// VocabularyProgress tracks a student's bronze/silver/gold milestones for
// one (level, topic) vocabulary theme. At most one row per
// (student_id, level, topic); level and topic are normalized before they
// reach this table (see services.NormalizeLevel / NormalizeTopic).
// CompletedAt is non-nil iff all three flags are true.
type VocabularyProgress struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	StudentID   uint       `gorm:"not null;uniqueIndex:idx_vocab_student_level_topic" json:"student_id"`
	Level       string     `gorm:"type:varchar(10);not null;uniqueIndex:idx_vocab_student_level_topic" json:"level"`
	Topic       string     `gorm:"type:varchar(100);not null;uniqueIndex:idx_vocab_student_level_topic" json:"topic"`
	Bronze      bool       `gorm:"default:false" json:"bronze"`
	Silver      bool       `gorm:"default:false" json:"silver"`
	Gold        bool       `gorm:"default:false" json:"gold"`
	CompletedAt *time.Time `json:"completed_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	// Relationships
	Student User `gorm:"foreignKey:StudentID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName specifies the table name for VocabularyProgress
func (VocabularyProgress) TableName() string {
	return "vocabulary_progress"
}
