package handlers

import (
	"github.com/gofiber/fiber/v2"

	"pricedex/internal/store"
)

// ListProviders returns every registered provider. With capability or
// search filters, model counts reflect only the matching models.
func (h *Handler) ListProviders(c *fiber.Ctx) error {
	providers := h.pricing.ListProviders()

	capability := c.Query("capability")
	family := c.Query("family")
	search := c.Query("search")
	if capability != "" || family != "" || search != "" {
		for i := range providers {
			matching := h.pricing.GetAll(store.Filter{
				Provider:   providers[i].ID,
				Capability: capability,
				Family:     family,
				Search:     search,
			})
			providers[i].ModelCount = len(matching)
		}
	}

	return c.JSON(fiber.Map{
		"providers": providers,
		"count":     len(providers),
	})
}

// ListFamilies returns derived model families with their model counts,
// filterable like the model listing.
func (h *Handler) ListFamilies(c *fiber.Ctx) error {
	filter := store.Filter{
		Provider:   c.Query("provider"),
		Capability: c.Query("capability"),
		Search:     c.Query("search"),
	}
	grouped := h.pricing.GroupByFamily(filter)

	families := make(map[string]int, len(grouped))
	for family, ms := range grouped {
		families[family] = len(ms)
	}
	return c.JSON(fiber.Map{
		"families": families,
		"count":    len(families),
	})
}
