package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/HenriqueLauxen/signea-sub001/internal/events"
)

// RegisterEventRoutes wires event management endpoints.
func RegisterEventRoutes(api fiber.Router, h *events.Handler) {
	api.Post("/events", h.Create)
	api.Get("/events", h.List)
	api.Get("/events/:eventId", h.Get)
	api.Delete("/events/:eventId", h.Cancel)
}
