package model

import (
	"encoding/json"
	"strings"
	"time"

	"gorm.io/gorm"
)

// Resource types
const (
	ResourceTypeWorksheet = "worksheet"
	ResourceTypeDocument  = "document"
	ResourceTypeAudio     = "audio"
)

// Resource content kinds (see ResourceContent)
const (
	ContentKindHTML         = "html"
	ContentKindFile         = "file"
	ContentKindPDFWithAudio = "pdf-with-audio"
)

// Resource is a worksheet or document owned by the teacher who created it.
// Content holds raw HTML, an uploaded-file key, or a JSON-encoded
// pdf-with-audio bundle; use ParseContent to decode it once instead of
// re-sniffing the string at every consumer.
type Resource struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
	Title          string         `gorm:"not null" json:"title"`
	Description    string         `gorm:"type:text" json:"description"`
	Type           string         `gorm:"type:varchar(30);default:'worksheet'" json:"type"`
	Content        string         `gorm:"type:text" json:"content"`
	Level          string         `gorm:"type:varchar(10)" json:"level"` // a1..c2
	Skill          string         `gorm:"type:varchar(30)" json:"skill"` // reading, listening, ...
	EstimatedHours int            `gorm:"default:0" json:"estimated_hours"`
	CreatorID      uint           `gorm:"not null;index" json:"creator_id"`

	// Relationships
	Creator     User         `gorm:"foreignKey:CreatorID" json:"creator,omitempty"`
	Assignments []Assignment `gorm:"foreignKey:ResourceID;constraint:OnDelete:CASCADE" json:"-"`
}

// ResourceContent is the decoded form of Resource.Content. Exactly one of
// the variant fields is populated, according to Kind.
type ResourceContent struct {
	Kind    string   `json:"kind"`
	HTML    string   `json:"html,omitempty"`
	FileKey string   `json:"file_key,omitempty"`
	PDF     string   `json:"pdf,omitempty"`
	Audio   []string `json:"audio,omitempty"`
}

// pdfWithAudioPayload matches the JSON blob stored for composite resources
type pdfWithAudioPayload struct {
	Type  string   `json:"type"`
	PDF   string   `json:"pdf"`
	Audio []string `json:"audio"`
}

// ParseContent decodes the raw content column into its tagged variant.
// The decision is made once here: a JSON object tagged pdf-with-audio, an
// uploads/ file key, or raw HTML for everything else.
func ParseContent(raw string) ResourceContent {
	trimmed := strings.TrimSpace(raw)

	if strings.HasPrefix(trimmed, "{") {
		var payload pdfWithAudioPayload
		if err := json.Unmarshal([]byte(trimmed), &payload); err == nil && payload.Type == ContentKindPDFWithAudio {
			return ResourceContent{
				Kind:  ContentKindPDFWithAudio,
				PDF:   payload.PDF,
				Audio: payload.Audio,
			}
		}
	}

	if strings.HasPrefix(trimmed, "uploads/") {
		return ResourceContent{Kind: ContentKindFile, FileKey: trimmed}
	}

	return ResourceContent{Kind: ContentKindHTML, HTML: raw}
}

// EncodePDFWithAudio builds the stored content string for a composite
// pdf-with-audio resource.
func EncodePDFWithAudio(pdfKey string, audioKeys []string) (string, error) {
	payload := pdfWithAudioPayload{
		Type:  ContentKindPDFWithAudio,
		PDF:   pdfKey,
		Audio: audioKeys,
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// ParsedContent decodes the resource's content column
func (r *Resource) ParsedContent() ResourceContent {
	return ParseContent(r.Content)
}
