package payments

import (
	"errors"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Handler exposes charge HTTP endpoints.
type Handler struct {
	service *Service
}

// NewHandler builds a charge HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type chargeRequest struct {
	AmountCents int64 `json:"amount_cents"`
}

type chargeResponse struct {
	ID             string    `json:"id"`
	RegistrationID string    `json:"registration_id"`
	TxID           string    `json:"tx_id"`
	AmountCents    int64     `json:"amount_cents"`
	Payload        string    `json:"payload"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"created_at"`
}

func toResponse(charge Charge) chargeResponse {
	return chargeResponse{
		ID:             charge.ID,
		RegistrationID: charge.RegistrationID,
		TxID:           charge.TxID,
		AmountCents:    charge.AmountCents,
		Payload:        charge.Payload,
		Status:         charge.Status,
		CreatedAt:      charge.CreatedAt,
	}
}

// Create issues a PIX charge for a registration.
func (h *Handler) Create(c *fiber.Ctx) error {
	var req chargeRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	charge, err := h.service.CreateCharge(c.UserContext(), ChargeInput{
		RegistrationID: c.Params("registrationId"),
		AmountCents:    req.AmountCents,
	})
	switch {
	case errors.Is(err, ErrChargeExists):
		return c.Status(http.StatusOK).JSON(toResponse(charge))
	case err != nil:
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	return c.Status(http.StatusCreated).JSON(toResponse(charge))
}

// Get returns charge metadata.
func (h *Handler) Get(c *fiber.Ctx) error {
	charge, err := h.service.Get(c.UserContext(), c.Params("chargeId"))
	if err != nil {
		return fiber.NewError(http.StatusNotFound, err.Error())
	}
	return c.Status(http.StatusOK).JSON(toResponse(charge))
}

// QR streams the charge's BR Code as a PNG image.
func (h *Handler) QR(c *fiber.Ctx) error {
	png, err := h.service.QR(c.UserContext(), c.Params("chargeId"))
	if err != nil {
		return fiber.NewError(http.StatusNotFound, err.Error())
	}
	c.Set(fiber.HeaderContentType, "image/png")
	return c.Status(http.StatusOK).Send(png)
}

// Confirm marks a charge as paid.
func (h *Handler) Confirm(c *fiber.Ctx) error {
	charge, err := h.service.Confirm(c.UserContext(), c.Params("chargeId"))
	if err != nil {
		return fiber.NewError(http.StatusNotFound, err.Error())
	}
	return c.Status(http.StatusOK).JSON(toResponse(charge))
}
