package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"strings"
	"time"

	"github.com/langroom/api/model"
	"github.com/langroom/api/services/storage"
	"github.com/langroom/api/utils/htmlcontent"
	"github.com/langroom/api/utils/pdfvalidation"
	"github.com/langroom/api/utils/policy"
	"github.com/langroom/api/utils/validation"
	"gorm.io/gorm"
)

// ResourceService manages worksheet and document content
type ResourceService struct {
	db     *gorm.DB
	spaces *storage.SpacesClient // nil when object storage is not configured
}

func NewResourceService(db *gorm.DB, spaces *storage.SpacesClient) *ResourceService {
	return &ResourceService{db: db, spaces: spaces}
}

// ResourceInput is the teacher-supplied shape for create and update
type ResourceInput struct {
	Title          string `json:"title" validate:"required,max=255"`
	Description    string `json:"description" validate:"max=2000"`
	Type           string `json:"type" validate:"omitempty,oneof=worksheet document audio"`
	Content        string `json:"content"`
	Level          string `json:"level" validate:"omitempty,max=10"`
	Skill          string `json:"skill" validate:"omitempty,max=30"`
	EstimatedHours int    `json:"estimated_hours" validate:"omitempty,min=0,max=1000"`
}

// Create stores a new resource owned by the calling teacher. HTML
// content is sanitized before it is persisted; file-backed content is
// attached afterwards through AttachFile.
func (s *ResourceService) Create(principal *model.User, input ResourceInput) (*model.Resource, error) {
	if !principal.IsTeacher() {
		return nil, fmt.Errorf("teacher role required: %w", ErrForbidden)
	}
	if input.Level != "" && !validation.ValidLevel(input.Level) {
		return nil, fmt.Errorf("level %q: %w", input.Level, ErrInvalid)
	}

	content, err := s.prepareContent(input.Content)
	if err != nil {
		return nil, err
	}

	resourceType := input.Type
	if resourceType == "" {
		resourceType = model.ResourceTypeWorksheet
	}

	resource := &model.Resource{
		Title:          validation.SanitizeString(input.Title),
		Description:    validation.SanitizeString(input.Description),
		Type:           resourceType,
		Content:        content,
		Level:          NormalizeLevel(input.Level),
		Skill:          strings.ToLower(validation.SanitizeString(input.Skill)),
		EstimatedHours: input.EstimatedHours,
		CreatorID:      principal.ID,
	}
	if err := s.db.Create(resource).Error; err != nil {
		return nil, err
	}
	return resource, nil
}

// Get loads one resource
func (s *ResourceService) Get(resourceID uint) (*model.Resource, error) {
	var resource model.Resource
	if err := s.db.Preload("Creator").First(&resource, resourceID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("resource %d: %w", resourceID, ErrNotFound)
		}
		return nil, err
	}
	return &resource, nil
}

// List returns resources, optionally filtered by level, skill, and type
func (s *ResourceService) List(level, skill, resourceType string, page, limit int) ([]model.Resource, int64, error) {
	query := s.db.Model(&model.Resource{})
	if level != "" {
		query = query.Where("level = ?", NormalizeLevel(level))
	}
	if skill != "" {
		query = query.Where("skill = ?", strings.ToLower(strings.TrimSpace(skill)))
	}
	if resourceType != "" {
		query = query.Where("type = ?", resourceType)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var resources []model.Resource
	err := query.
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&resources).Error
	if err != nil {
		return nil, 0, err
	}
	return resources, total, nil
}

// Update replaces a resource's fields; only the creator may touch it
func (s *ResourceService) Update(principal *model.User, resourceID uint, input ResourceInput) (*model.Resource, error) {
	resource, err := s.Get(resourceID)
	if err != nil {
		return nil, err
	}
	if d := policy.CanTouchResource(principal, resource); !d.Allowed {
		return nil, fmt.Errorf("%s: %w", d.Reason, ErrForbidden)
	}
	if input.Level != "" && !validation.ValidLevel(input.Level) {
		return nil, fmt.Errorf("level %q: %w", input.Level, ErrInvalid)
	}

	content, err := s.prepareContent(input.Content)
	if err != nil {
		return nil, err
	}

	resource.Title = validation.SanitizeString(input.Title)
	resource.Description = validation.SanitizeString(input.Description)
	if input.Type != "" {
		resource.Type = input.Type
	}
	resource.Content = content
	resource.Level = NormalizeLevel(input.Level)
	resource.Skill = strings.ToLower(validation.SanitizeString(input.Skill))
	resource.EstimatedHours = input.EstimatedHours

	if err := s.db.Save(resource).Error; err != nil {
		return nil, err
	}
	return resource, nil
}

// Delete removes a resource, its assignments, and their progress rows
func (s *ResourceService) Delete(principal *model.User, resourceID uint) error {
	resource, err := s.Get(resourceID)
	if err != nil {
		return err
	}
	if d := policy.CanTouchResource(principal, resource); !d.Allowed {
		return fmt.Errorf("%s: %w", d.Reason, ErrForbidden)
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		assignmentIDs := tx.Model(&model.Assignment{}).
			Select("id").Where("resource_id = ?", resourceID)
		if err := tx.Where("assignment_id IN (?)", assignmentIDs).Delete(&model.Progress{}).Error; err != nil {
			return err
		}
		if err := tx.Where("resource_id = ?", resourceID).Delete(&model.Assignment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Resource{}, resourceID).Error
	})
}

// AttachFile uploads a worksheet file (PDF, optionally with audio
// tracks) to object storage and points the resource's content at it.
// A lone PDF becomes a plain file key; a PDF plus audio becomes the
// pdf-with-audio bundle.
func (s *ResourceService) AttachFile(ctx context.Context, principal *model.User, resourceID uint, pdf *multipart.FileHeader, audio []*multipart.FileHeader) (*model.Resource, error) {
	resource, err := s.Get(resourceID)
	if err != nil {
		return nil, err
	}
	if d := policy.CanTouchResource(principal, resource); !d.Allowed {
		return nil, fmt.Errorf("%s: %w", d.Reason, ErrForbidden)
	}
	if s.spaces == nil {
		return nil, fmt.Errorf("object storage is not configured")
	}

	file, err := pdf.Open()
	if err != nil {
		return nil, err
	}
	pdfBytes, err := io.ReadAll(file)
	file.Close()
	if err != nil {
		return nil, err
	}

	result, err := pdfvalidation.ValidatePDFBytes(pdfBytes, pdfvalidation.WorksheetLimits)
	if err != nil {
		return nil, err
	}
	if !result.Valid {
		return nil, fmt.Errorf("%s: %w", result.Error, ErrInvalid)
	}

	pdfKey := storage.GenerateKey("uploads/resources", pdf.Filename)
	if _, err := s.spaces.UploadBytes(ctx, pdfKey, pdfBytes, "application/pdf"); err != nil {
		return nil, err
	}

	var audioKeys []string
	for _, track := range audio {
		file, err := track.Open()
		if err != nil {
			return nil, err
		}
		key := storage.GenerateKey("uploads/audio", track.Filename)
		_, err = s.spaces.UploadFile(ctx, key, file, storage.GetContentType(track.Filename))
		file.Close()
		if err != nil {
			return nil, err
		}
		audioKeys = append(audioKeys, key)
	}

	if len(audioKeys) > 0 {
		content, err := model.EncodePDFWithAudio(pdfKey, audioKeys)
		if err != nil {
			return nil, err
		}
		resource.Content = content
	} else {
		resource.Content = pdfKey
	}

	if err := s.db.Save(resource).Error; err != nil {
		return nil, err
	}
	return resource, nil
}

// DownloadURL returns a short-lived presigned URL for a file-backed
// resource, or ErrInvalid for inline HTML content.
func (s *ResourceService) DownloadURL(resourceID uint) (string, error) {
	resource, err := s.Get(resourceID)
	if err != nil {
		return "", err
	}
	if s.spaces == nil {
		return "", fmt.Errorf("object storage is not configured")
	}

	content := resource.ParsedContent()
	switch content.Kind {
	case model.ContentKindFile:
		return s.spaces.GetPresignedURL(content.FileKey, 15*time.Minute)
	case model.ContentKindPDFWithAudio:
		return s.spaces.GetPresignedURL(content.PDF, 15*time.Minute)
	default:
		return "", fmt.Errorf("resource has no downloadable file: %w", ErrInvalid)
	}
}

// prepareContent sanitizes inline HTML and passes file keys and
// pdf-with-audio bundles through untouched.
func (s *ResourceService) prepareContent(raw string) (string, error) {
	parsed := model.ParseContent(raw)
	if parsed.Kind != model.ContentKindHTML {
		return raw, nil
	}

	clean, err := htmlcontent.Sanitize(raw)
	if err != nil {
		return "", fmt.Errorf("content: %w", ErrInvalid)
	}
	return clean, nil
}
