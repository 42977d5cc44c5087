package handlers

import (
	"github.com/gofiber/fiber/v2"
)

// Sync triggers a refresh. Without a provider query it syncs everything;
// with one it syncs that provider only. Responds after all fetches settle.
func (h *Handler) Sync(c *fiber.Ctx) error {
	if provider := c.Query("provider"); provider != "" {
		result, err := h.orchestrator.SyncProvider(c.Context(), provider)
		if err != nil {
			return errorJSON(c, fiber.StatusBadRequest, err.Error())
		}
		return c.JSON(fiber.Map{"results": []any{result}})
	}

	results := h.orchestrator.SyncAll(c.Context())
	return c.JSON(fiber.Map{"results": results})
}
