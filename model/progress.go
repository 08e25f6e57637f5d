package model

import (
	"time"
)

// Progress statuses
const (
	StatusNotStarted = "NOT_STARTED"
	StatusInProgress = "IN_PROGRESS"
	StatusCompleted  = "COMPLETED"
)

// ValidStatus reports whether s is one of the closed progress statuses
func ValidStatus(s string) bool {
	switch s {
	case StatusNotStarted, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// Progress records a student's status and notes for one assignment.
// At most one row per (assignment_id, student_id); writes go through an
// ON CONFLICT upsert keyed on the composite unique index. CompletedAt is
// set iff Status == COMPLETED and cleared on any regression.
type Progress struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	AssignmentID uint       `gorm:"not null;uniqueIndex:idx_progress_assignment_student" json:"assignment_id"`
	StudentID    uint       `gorm:"not null;uniqueIndex:idx_progress_assignment_student" json:"student_id"`
	Status       string     `gorm:"type:varchar(20);not null;default:'NOT_STARTED'" json:"status"`
	Notes        string     `gorm:"type:text" json:"notes"`
	CompletedAt  *time.Time `json:"completed_at"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`

	// Relationships
	Assignment Assignment `gorm:"foreignKey:AssignmentID;constraint:OnDelete:CASCADE" json:"assignment,omitempty"`
	Student    User       `gorm:"foreignKey:StudentID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName specifies the table name for Progress
func (Progress) TableName() string {
	return "progress"
}
