package model

import (
	"time"
)

// Assignment attaches a resource to an enrollment at a 1-based position.
// A resource can be assigned at most once per enrollment; the composite
// unique index rejects the second writer when two assign calls race.
type Assignment struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	EnrollmentID uint      `gorm:"not null;uniqueIndex:idx_assignment_enrollment_resource" json:"enrollment_id"`
	ResourceID   uint      `gorm:"not null;uniqueIndex:idx_assignment_enrollment_resource" json:"resource_id"`
	Order        int       `gorm:"column:sort_order;not null" json:"order"`
	AssignedAt   time.Time `gorm:"autoCreateTime" json:"assigned_at"`

	// Relationships
	Enrollment Enrollment `gorm:"foreignKey:EnrollmentID;constraint:OnDelete:CASCADE" json:"enrollment,omitempty"`
	Resource   Resource   `gorm:"foreignKey:ResourceID;constraint:OnDelete:CASCADE" json:"resource,omitempty"`
	Progress   []Progress `gorm:"foreignKey:AssignmentID;constraint:OnDelete:CASCADE" json:"progress,omitempty"`
}
