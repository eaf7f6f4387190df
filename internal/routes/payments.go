package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/HenriqueLauxen/signea-sub001/internal/payments"
)

// RegisterChargeRoutes wires charge lookup and settlement endpoints. Charge
// creation is registered separately so it can sit behind the idempotency
// middleware.
func RegisterChargeRoutes(api fiber.Router, h *payments.Handler) {
	api.Get("/charges/:chargeId", h.Get)
	api.Get("/charges/:chargeId/qr", h.QR)
	api.Post("/charges/:chargeId/confirm", h.Confirm)
}
