package model

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// StudentDocument is a teacher-uploaded file attached to a student's
// record (report cards, placement tests, signed forms). Append-only:
// rows are created and deleted, never updated.
type StudentDocument struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
	StudentID    uint           `gorm:"not null;index" json:"student_id"`
	Title        string         `gorm:"not null" json:"title"`
	FileKey      string         `gorm:"not null;type:varchar(512)" json:"file_key"`
	FileURL      string         `gorm:"type:varchar(512)" json:"file_url"`
	Metadata     datatypes.JSON `gorm:"type:jsonb" json:"metadata,omitempty"`
	UploadedByID uint           `gorm:"not null;index" json:"uploaded_by_id"`

	// Relationships
	Student    User `gorm:"foreignKey:StudentID;constraint:OnDelete:CASCADE" json:"-"`
	UploadedBy User `gorm:"foreignKey:UploadedByID" json:"uploaded_by,omitempty"`
}

// TableName specifies the table name for StudentDocument
func (StudentDocument) TableName() string {
	return "student_documents"
}
