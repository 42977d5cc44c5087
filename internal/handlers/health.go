package handlers

import (
	"github.com/gofiber/fiber/v2"
)

// Health reports service liveness with index freshness.
func (h *Handler) Health(c *fiber.Ctx) error {
	stats := h.pricing.Stats()
	resp := fiber.Map{
		"status":    "healthy",
		"models":    stats.TotalModels,
		"providers": stats.ProviderCount,
	}
	if !stats.LastRefresh.IsZero() {
		resp["last_refresh"] = stats.LastRefresh
	}
	return c.JSON(resp)
}

// Stats returns aggregate pricing statistics.
func (h *Handler) Stats(c *fiber.Ctx) error {
	return c.JSON(h.pricing.Stats())
}
