package handler

import (
	"wrongbook/internal/middleware"
	"wrongbook/internal/service"

	"github.com/gofiber/fiber/v2"
)

// StatsHandler serves the stats endpoints.
type StatsHandler struct {
	statsService service.StatsService
}

// NewStatsHandler creates a new StatsHandler.
func NewStatsHandler(statsService service.StatsService) *StatsHandler {
	return &StatsHandler{statsService: statsService}
}

// Overview returns the caller's review overview.
// GET /stats/
func (h *StatsHandler) Overview(c *fiber.Ctx) error {
	userID, err := middleware.CurrentUserID(c)
	if err != nil {
		return err
	}

	resp, err := h.statsService.GetStudentStats(c.Context(), userID, c.Query("grade"))
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// BySubject returns the caller's per-subject breakdown.
// GET /stats/by-subject
func (h *StatsHandler) BySubject(c *fiber.Ctx) error {
	userID, err := middleware.CurrentUserID(c)
	if err != nil {
		return err
	}

	resp, err := h.statsService.GetSubjectStats(c.Context(), userID, c.Query("grade"))
	if err != nil {
		return err
	}
	return c.JSON(resp)
}
