package handler

import (
	"wrongbook/internal/middleware"
	"wrongbook/internal/service"

	"github.com/gofiber/fiber/v2"
)

// UsageHandler serves the token usage ledger endpoints.
type UsageHandler struct {
	usageService service.UsageService
}

// NewUsageHandler creates a new UsageHandler.
func NewUsageHandler(usageService service.UsageService) *UsageHandler {
	return &UsageHandler{usageService: usageService}
}

// MyUsage returns the caller's ledger counters.
// GET /usage/tokens
func (h *UsageHandler) MyUsage(c *fiber.Ctx) error {
	userID, err := middleware.CurrentUserID(c)
	if err != nil {
		return err
	}

	resp, err := h.usageService.GetUserUsage(c.Context(), userID)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// AllUsage returns the system-wide report. Admin only; the route is guarded
// by the AdminOnly middleware.
// GET /usage/tokens/all
func (h *UsageHandler) AllUsage(c *fiber.Ctx) error {
	resp, err := h.usageService.GetAllUsage(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(resp)
}
