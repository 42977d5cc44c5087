// Package handlers exposes the read surface, override patching, and sync
// triggering over HTTP.
package handlers

import (
	"github.com/gofiber/fiber/v2"

	"pricedex/internal/store"
	"pricedex/internal/syncer"
)

// Handler bundles the stores and orchestrator behind the HTTP surface.
type Handler struct {
	pricing      *store.PricingStore
	overrides    *store.OverrideStore
	orchestrator *syncer.Orchestrator
}

// New creates the handler set.
func New(pricing *store.PricingStore, overrides *store.OverrideStore, orchestrator *syncer.Orchestrator) *Handler {
	return &Handler{pricing: pricing, overrides: overrides, orchestrator: orchestrator}
}

// Register mounts all routes on app. Model IDs contain ':' and '/', so the
// model routes use a wildcard segment rather than a named param.
func (h *Handler) Register(app *fiber.App) {
	api := app.Group("/api")

	api.Get("/health", h.Health)
	api.Get("/stats", h.Stats)

	api.Get("/models", h.ListModels)
	api.Get("/models/by-provider", h.ModelsByProvider)
	api.Get("/models/*", h.GetModel)
	api.Patch("/models/*", h.PatchModel)
	api.Delete("/models/*", h.DeleteOverride)

	api.Get("/providers", h.ListProviders)
	api.Get("/families", h.ListFamilies)

	api.Post("/sync", h.Sync)
}

func errorJSON(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(fiber.Map{"error": msg})
}
