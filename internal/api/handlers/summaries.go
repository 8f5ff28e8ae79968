package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/tubebrief/tubebrief-backend/internal/models"
	"github.com/tubebrief/tubebrief-backend/internal/services"
	"github.com/tubebrief/tubebrief-backend/internal/transcript"
)

// SummaryHandler serves the summary endpoints
type SummaryHandler struct {
	summarizeService *services.SummarizeService
}

// NewSummaryHandler creates a new summary handler
func NewSummaryHandler(summarizeService *services.SummarizeService) *SummaryHandler {
	return &SummaryHandler{
		summarizeService: summarizeService,
	}
}

// CreateSummaryRequest is the POST /summaries body
type CreateSummaryRequest struct {
	URL string `json:"url"`
}

// CreateSummary handles POST /api/v1/summaries
func (h *SummaryHandler) CreateSummary(c *fiber.Ctx) error {
	var req CreateSummaryRequest
	if err := c.BodyParser(&req); err != nil || req.URL == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Request body must contain a url",
		})
	}

	// The refresh flag is only honored for privileged callers; the service
	// ignores it otherwise.
	refresh := c.QueryBool("refresh")
	caller, _ := c.Locals("user").(*models.UserContext)

	summary, err := h.summarizeService.SummarizeVideo(c.Context(), req.URL, caller, refresh)
	if err != nil {
		return summaryError(c, err)
	}

	return c.JSON(summary)
}

// ListSummaries handles GET /api/v1/summaries
func (h *SummaryHandler) ListSummaries(c *fiber.Ctx) error {
	summaries, err := h.summarizeService.ListRecent(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch summaries",
		})
	}

	if summaries == nil {
		summaries = []*models.Summary{}
	}
	return c.JSON(summaries)
}

func summaryError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, transcript.ErrInvalidURL):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	case errors.Is(err, transcript.ErrNoCaptions):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error": err.Error(),
		})
	default:
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error":   "Failed to generate summary",
			"details": err.Error(),
		})
	}
}
