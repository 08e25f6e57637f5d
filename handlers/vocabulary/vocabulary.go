package vocabulary

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/langroom/api/handlers"
	"github.com/langroom/api/services"
	"github.com/langroom/api/utils/middleware"
	"github.com/langroom/api/utils/response"
	"github.com/langroom/api/utils/validation"
)

// VocabularyHandler serves vocabulary challenge progress
type VocabularyHandler struct {
	vocabulary *services.VocabularyService
	validator  *validation.Validator
}

func NewVocabularyHandler(vocabulary *services.VocabularyService) *VocabularyHandler {
	return &VocabularyHandler{
		vocabulary: vocabulary,
		validator:  validation.NewValidator(),
	}
}

// RecordRequest reports a challenge run's milestone flags
type RecordRequest struct {
	Level  string `json:"level" validate:"required,max=10"`
	Topic  string `json:"topic" validate:"required,max=100"`
	Bronze bool   `json:"bronze"`
	Silver bool   `json:"silver"`
	Gold   bool   `json:"gold"`
}

// Record merges a challenge result into the caller's progress
func (h *VocabularyHandler) Record(c *fiber.Ctx) error {
	principal, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	var req RecordRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	row, err := h.vocabulary.RecordChallenge(principal, req.Level, req.Topic, services.ChallengeResult{
		Bronze: req.Bronze,
		Silver: req.Silver,
		Gold:   req.Gold,
	})
	if err != nil {
		return handlers.MapServiceError(c, err)
	}
	return response.Success(c, row)
}

// List returns vocabulary progress rows, optionally filtered by
// level, topic, and (for teachers) student_id
func (h *VocabularyHandler) List(c *fiber.Ctx) error {
	principal, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	studentID, _ := strconv.ParseUint(c.Query("student_id", "0"), 10, 32)

	rows, err := h.vocabulary.List(principal, uint(studentID), c.Query("level"), c.Query("topic"))
	if err != nil {
		return handlers.MapServiceError(c, err)
	}
	return response.Success(c, rows)
}
