package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"strings"
	"time"

	"github.com/langroom/api/model"
	"github.com/langroom/api/services/storage"
	"github.com/langroom/api/utils/pdfvalidation"
	"github.com/langroom/api/utils/policy"
	"github.com/langroom/api/utils/validation"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// DocumentService manages teacher-uploaded files on student records
// (report cards, placement tests, signed forms). Rows are append-only.
type DocumentService struct {
	db     *gorm.DB
	spaces *storage.SpacesClient // nil when object storage is not configured
}

func NewDocumentService(db *gorm.DB, spaces *storage.SpacesClient) *DocumentService {
	return &DocumentService{db: db, spaces: spaces}
}

// Upload stores a file against a student's record. PDFs are validated
// before they reach object storage; other file types pass through on
// content type alone.
func (s *DocumentService) Upload(ctx context.Context, principal *model.User, studentID uint, title string, file *multipart.FileHeader) (*model.StudentDocument, error) {
	if d := policy.CanManageStudent(principal); !d.Allowed {
		return nil, fmt.Errorf("%s: %w", d.Reason, ErrForbidden)
	}
	if s.spaces == nil {
		return nil, fmt.Errorf("object storage is not configured")
	}

	var student model.User
	if err := s.db.Where("role = ?", model.RoleStudent).First(&student, studentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("student %d: %w", studentID, ErrNotFound)
		}
		return nil, err
	}

	title = validation.SanitizeString(title)
	if title == "" {
		title = file.Filename
	}

	src, err := file.Open()
	if err != nil {
		return nil, err
	}
	content, err := io.ReadAll(src)
	src.Close()
	if err != nil {
		return nil, err
	}

	contentType := storage.GetContentType(file.Filename)
	pageCount := 0
	if strings.HasSuffix(strings.ToLower(file.Filename), ".pdf") {
		result, err := pdfvalidation.ValidatePDFBytes(content, pdfvalidation.StudentDocumentLimits)
		if err != nil {
			return nil, err
		}
		if !result.Valid {
			return nil, fmt.Errorf("%s: %w", result.Error, ErrInvalid)
		}
		pageCount = result.PageCount
	}

	key := storage.GenerateKey(fmt.Sprintf("uploads/students/%d", studentID), file.Filename)
	fileURL, err := s.spaces.UploadBytes(ctx, key, content, contentType)
	if err != nil {
		return nil, err
	}

	metadata, err := json.Marshal(map[string]interface{}{
		"original_filename": file.Filename,
		"content_type":      contentType,
		"size_bytes":        len(content),
		"page_count":        pageCount,
		"uploaded_at":       time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return nil, err
	}

	document := &model.StudentDocument{
		StudentID:    studentID,
		Title:        title,
		FileKey:      key,
		FileURL:      fileURL,
		Metadata:     datatypes.JSON(metadata),
		UploadedByID: principal.ID,
	}
	if err := s.db.Create(document).Error; err != nil {
		return nil, err
	}
	return document, nil
}

// List returns a student's documents, newest first
func (s *DocumentService) List(principal *model.User, studentID uint) ([]model.StudentDocument, error) {
	if d := policy.CanManageStudent(principal); !d.Allowed {
		return nil, fmt.Errorf("%s: %w", d.Reason, ErrForbidden)
	}

	var documents []model.StudentDocument
	err := s.db.
		Where("student_id = ?", studentID).
		Order("created_at DESC").
		Find(&documents).Error
	if err != nil {
		return nil, err
	}
	return documents, nil
}

// Delete removes a document row and its stored file
func (s *DocumentService) Delete(ctx context.Context, principal *model.User, documentID uint) error {
	if d := policy.CanManageStudent(principal); !d.Allowed {
		return fmt.Errorf("%s: %w", d.Reason, ErrForbidden)
	}

	var document model.StudentDocument
	if err := s.db.First(&document, documentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("document %d: %w", documentID, ErrNotFound)
		}
		return err
	}

	if err := s.db.Unscoped().Delete(&document).Error; err != nil {
		return err
	}

	if s.spaces != nil {
		// Best-effort: the row is already gone, a stray object is acceptable
		_ = s.spaces.DeleteFile(ctx, document.FileKey)
	}
	return nil
}
