package resource

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/langroom/api/handlers"
	"github.com/langroom/api/services"
	"github.com/langroom/api/utils/middleware"
	"github.com/langroom/api/utils/response"
	"github.com/langroom/api/utils/validation"
)

// ResourceHandler serves worksheet/document CRUD and file attachment
type ResourceHandler struct {
	resources *services.ResourceService
	validator *validation.Validator
}

func NewResourceHandler(resources *services.ResourceService) *ResourceHandler {
	return &ResourceHandler{
		resources: resources,
		validator: validation.NewValidator(),
	}
}

// Create adds a new resource
func (h *ResourceHandler) Create(c *fiber.Ctx) error {
	principal, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	var input services.ResourceInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(input); err != nil {
		return response.ValidationError(c, err)
	}

	resource, err := h.resources.Create(principal, input)
	if err != nil {
		return handlers.MapServiceError(c, err)
	}
	return response.Created(c, resource)
}

// List returns resources filtered by level/skill/type
func (h *ResourceHandler) List(c *fiber.Ctx) error {
	if _, ok := middleware.GetUser(c); !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	resources, total, err := h.resources.List(
		c.Query("level"),
		c.Query("skill"),
		c.Query("type"),
		page, limit,
	)
	if err != nil {
		return handlers.MapServiceError(c, err)
	}
	return response.Paginated(c, resources, response.CalculatePagination(page, limit, total))
}

// Get returns one resource with its decoded content variant
func (h *ResourceHandler) Get(c *fiber.Ctx) error {
	if _, ok := middleware.GetUser(c); !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	resourceID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid resource id")
	}

	resource, err := h.resources.Get(uint(resourceID))
	if err != nil {
		return handlers.MapServiceError(c, err)
	}

	return response.Success(c, fiber.Map{
		"resource": resource,
		"content":  resource.ParsedContent(),
	})
}

// Update replaces a resource's fields
func (h *ResourceHandler) Update(c *fiber.Ctx) error {
	principal, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	resourceID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid resource id")
	}

	var input services.ResourceInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(input); err != nil {
		return response.ValidationError(c, err)
	}

	resource, err := h.resources.Update(principal, uint(resourceID), input)
	if err != nil {
		return handlers.MapServiceError(c, err)
	}
	return response.Success(c, resource)
}

// Delete removes a resource
func (h *ResourceHandler) Delete(c *fiber.Ctx) error {
	principal, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	resourceID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid resource id")
	}

	if err := h.resources.Delete(principal, uint(resourceID)); err != nil {
		return handlers.MapServiceError(c, err)
	}
	return response.SuccessWithMessage(c, "Resource deleted", nil)
}

// AttachFile accepts a multipart upload: a "pdf" part plus zero or more
// "audio" parts, stored to object storage and referenced by the resource
func (h *ResourceHandler) AttachFile(c *fiber.Ctx) error {
	principal, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	resourceID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid resource id")
	}

	form, err := c.MultipartForm()
	if err != nil {
		return response.BadRequest(c, "Expected multipart form data")
	}

	pdfs := form.File["pdf"]
	if len(pdfs) != 1 {
		return response.BadRequest(c, "Exactly one 'pdf' file is required")
	}
	audio := form.File["audio"]

	resource, err := h.resources.AttachFile(c.Context(), principal, uint(resourceID), pdfs[0], audio)
	if err != nil {
		return handlers.MapServiceError(c, err)
	}
	return response.Success(c, resource)
}

// Download redirects to a presigned URL for file-backed resources
func (h *ResourceHandler) Download(c *fiber.Ctx) error {
	if _, ok := middleware.GetUser(c); !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	resourceID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid resource id")
	}

	url, err := h.resources.DownloadURL(uint(resourceID))
	if err != nil {
		return handlers.MapServiceError(c, err)
	}
	return response.Success(c, fiber.Map{"url": url})
}
