package model

import (
	"time"

	"gorm.io/gorm"
)

// User roles
const (
	RoleTeacher = "teacher"
	RoleStudent = "student"
)

// User represents a registered user in the system
type User struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
	Email        string         `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string         `gorm:"not null" json:"-"` // Never expose password in JSON
	Name         string         `gorm:"not null" json:"name"`
	Role         string         `gorm:"type:varchar(20);default:'student'" json:"role"` // teacher, student
	Avatar       string         `gorm:"type:varchar(255)" json:"avatar"`                // emoji or image URL
	TokenVersion int            `gorm:"default:0" json:"-"`                             // Increment to invalidate all user tokens

	// Relationships
	Enrollments    []Enrollment         `gorm:"foreignKey:StudentID;constraint:OnDelete:CASCADE" json:"enrollments,omitempty"`
	Resources      []Resource           `gorm:"foreignKey:CreatorID;constraint:OnDelete:CASCADE" json:"-"`
	Documents      []StudentDocument    `gorm:"foreignKey:StudentID;constraint:OnDelete:CASCADE" json:"-"`
	ResetTokens    []PasswordResetToken `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	TokenBlacklist []JWTTokenBlacklist  `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// IsTeacher reports whether the user holds the teacher role
func (u *User) IsTeacher() bool {
	return u.Role == RoleTeacher
}

// IsStudent reports whether the user holds the student role
func (u *User) IsStudent() bool {
	return u.Role == RoleStudent
}
