package document

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/langroom/api/handlers"
	"github.com/langroom/api/services"
	"github.com/langroom/api/utils/middleware"
	"github.com/langroom/api/utils/response"
)

// DocumentHandler serves teacher-managed student document files
type DocumentHandler struct {
	documents *services.DocumentService
}

func NewDocumentHandler(documents *services.DocumentService) *DocumentHandler {
	return &DocumentHandler{documents: documents}
}

// Upload attaches a file to a student's record
func (h *DocumentHandler) Upload(c *fiber.Ctx) error {
	principal, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	studentID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid student id")
	}

	file, err := c.FormFile("file")
	if err != nil {
		return response.BadRequest(c, "A 'file' upload is required")
	}

	doc, err := h.documents.Upload(c.Context(), principal, uint(studentID), c.FormValue("title"), file)
	if err != nil {
		return handlers.MapServiceError(c, err)
	}
	return response.Created(c, doc)
}

// List returns a student's documents
func (h *DocumentHandler) List(c *fiber.Ctx) error {
	principal, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	studentID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid student id")
	}

	docs, err := h.documents.List(principal, uint(studentID))
	if err != nil {
		return handlers.MapServiceError(c, err)
	}
	return response.Success(c, docs)
}

// Delete removes a document and its stored file
func (h *DocumentHandler) Delete(c *fiber.Ctx) error {
	principal, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	documentID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid document id")
	}

	if err := h.documents.Delete(c.Context(), principal, uint(documentID)); err != nil {
		return handlers.MapServiceError(c, err)
	}
	return response.SuccessWithMessage(c, "Document deleted", nil)
}
