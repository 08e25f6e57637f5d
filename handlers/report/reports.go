package report

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/langroom/api/database"
	"github.com/langroom/api/utils/cache"
	"github.com/langroom/api/utils/response"
)

const overviewCacheKey = "reports:overview"

// ReportHandler serves the teacher dashboard aggregates. The numbers
// come from the raw SQL reporting store; the overview is cached in
// Redis because it touches every table.
type ReportHandler struct {
	store database.Storage
	cache *cache.RedisCache // nil when Redis is not configured
}

func NewReportHandler(store database.Storage, redisCache *cache.RedisCache) *ReportHandler {
	return &ReportHandler{
		store: store,
		cache: redisCache,
	}
}

// Overview returns school-wide totals and the completion rate
func (h *ReportHandler) Overview(c *fiber.Ctx) error {
	if h.cache != nil {
		var cached database.OverviewStats
		if err := h.cache.GetJSON(c.Context(), overviewCacheKey, &cached); err == nil {
			return response.Success(c, cached)
		}
	}

	stats, err := h.store.GetOverviewStats()
	if err != nil {
		return response.InternalServerError(c, "Failed to compute overview")
	}

	if h.cache != nil {
		_ = h.cache.SetJSON(c.Context(), overviewCacheKey, stats, 10*time.Minute)
	}
	return response.Success(c, stats)
}

// Course returns per-course enrollment and completion numbers
func (h *ReportHandler) Course(c *fiber.Ctx) error {
	courseID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid course id")
	}

	stats, err := h.store.GetCourseStats(uint(courseID))
	if err != nil {
		return response.NotFound(c, "Course not found")
	}
	return response.Success(c, stats)
}
