package handlers

import (
	"github.com/gofiber/fiber/v2"

	"pricedex/internal/models"
	"pricedex/internal/store"
)

// ListModels returns all models matching the query filters.
func (h *Handler) ListModels(c *fiber.Ctx) error {
	filter := store.Filter{
		Provider:   c.Query("provider"),
		Capability: c.Query("capability"),
		Family:     c.Query("family"),
		Search:     c.Query("search"),
		SortBy:     c.Query("sort_by"),
		SortOrder:  c.Query("sort_order"),
	}
	ms := h.pricing.GetAll(filter)
	return c.JSON(fiber.Map{
		"models": ms,
		"count":  len(ms),
	})
}

// ModelsByProvider returns all models grouped by provider ID.
func (h *Handler) ModelsByProvider(c *fiber.Ctx) error {
	return c.JSON(h.pricing.GroupByProvider())
}

// GetModel returns a single model by canonical ID. IDs embed ':' and '/'
// so the route matches the rest of the path as a wildcard.
func (h *Handler) GetModel(c *fiber.Ctx) error {
	id := c.Params("*")
	m, ok := h.pricing.GetByID(id)
	if !ok {
		return errorJSON(c, fiber.StatusNotFound, "model not found: "+id)
	}
	return c.JSON(m)
}

// PatchModel stores a partial override for a model and re-merges it into
// the live record immediately, without waiting for the next sync.
func (h *Handler) PatchModel(c *fiber.Ctx) error {
	id := c.Params("*")

	var patch models.Override
	if err := c.BodyParser(&patch); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "invalid override payload: "+err.Error())
	}
	if patch.IsEmpty() {
		return errorJSON(c, fiber.StatusBadRequest, "override patches no fields")
	}
	if _, ok := h.pricing.GetByID(id); !ok {
		return errorJSON(c, fiber.StatusNotFound, "model not found: "+id)
	}

	merged, err := h.overrides.Set(id, patch)
	if err != nil {
		return errorJSON(c, fiber.StatusInternalServerError, "failed to save override: "+err.Error())
	}

	updated, found, err := h.pricing.UpdateModel(id, func(m *models.Model) {
		*m = models.ApplyOverride(*m, merged)
	})
	if err != nil {
		return errorJSON(c, fiber.StatusInternalServerError, "failed to update model: "+err.Error())
	}
	if !found {
		return errorJSON(c, fiber.StatusNotFound, "model not found: "+id)
	}
	return c.JSON(updated)
}

// DeleteOverride clears a stored override. The model keeps its current
// values until the next sync restores the fetched ones.
func (h *Handler) DeleteOverride(c *fiber.Ctx) error {
	id := c.Params("*")
	deleted, err := h.overrides.Delete(id)
	if err != nil {
		return errorJSON(c, fiber.StatusInternalServerError, "failed to delete override: "+err.Error())
	}
	if !deleted {
		return errorJSON(c, fiber.StatusNotFound, "no override for model: "+id)
	}
	return c.JSON(fiber.Map{"deleted": true, "id": id})
}
