package model

import (
	"time"

	"gorm.io/gorm"
)

// Course represents a language course offered by a teacher (e.g., "TOEIC-30h")
type Course struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
	Name      string         `gorm:"not null" json:"name"`
	Duration  int            `gorm:"default:0" json:"duration"` // Total duration in hours
	CreatorID uint           `gorm:"not null;index" json:"creator_id"`

	// Relationships
	Creator     User         `gorm:"foreignKey:CreatorID" json:"creator,omitempty"`
	Enrollments []Enrollment `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE" json:"-"`
}

// Enrollment links a student to a course. At most one row per
// (student_id, course_id); the composite unique index backs the
// duplicate check under concurrent enroll calls.
type Enrollment struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	StudentID  uint      `gorm:"not null;uniqueIndex:idx_enrollment_student_course" json:"student_id"`
	CourseID   uint      `gorm:"not null;uniqueIndex:idx_enrollment_student_course" json:"course_id"`
	EnrolledAt time.Time `gorm:"autoCreateTime" json:"enrolled_at"`

	// Relationships
	Student     User         `gorm:"foreignKey:StudentID;constraint:OnDelete:CASCADE" json:"student,omitempty"`
	Course      Course       `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE" json:"course,omitempty"`
	Assignments []Assignment `gorm:"foreignKey:EnrollmentID;constraint:OnDelete:CASCADE" json:"assignments,omitempty"`
	Note        *CourseNote  `gorm:"foreignKey:EnrollmentID;constraint:OnDelete:CASCADE" json:"note,omitempty"`
}

// CourseNote holds a teacher's rich-text notes for one enrollment.
// At most one row per enrollment.
type CourseNote struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	EnrollmentID uint      `gorm:"not null;uniqueIndex" json:"enrollment_id"`
	Content      string    `gorm:"type:text" json:"content"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TableName specifies the table name for CourseNote
func (CourseNote) TableName() string {
	return "course_notes"
}
