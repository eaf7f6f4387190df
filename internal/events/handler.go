package events

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/HenriqueLauxen/signea-sub001/internal/geo"
)

// Handler exposes event HTTP endpoints.
type Handler struct {
	service *Service
}

// NewHandler builds an event HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type createRequest struct {
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Lat          float64   `json:"lat"`
	Lon          float64   `json:"lon"`
	RadiusMeters int       `json:"radius_meters"`
	StartsAt     time.Time `json:"starts_at"`
	EndsAt       time.Time `json:"ends_at"`
	PriceCents   int64     `json:"price_cents"`
}

type eventResponse struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Lat          float64   `json:"lat"`
	Lon          float64   `json:"lon"`
	RadiusMeters int       `json:"radius_meters"`
	StartsAt     time.Time `json:"starts_at"`
	EndsAt       time.Time `json:"ends_at"`
	PriceCents   int64     `json:"price_cents"`
	Status       string    `json:"status"`
}

func toResponse(ev Event) eventResponse {
	return eventResponse{
		ID:           ev.ID,
		Title:        ev.Title,
		Description:  ev.Description,
		Lat:          ev.Location.Lat,
		Lon:          ev.Location.Lon,
		RadiusMeters: ev.RadiusMeters,
		StartsAt:     ev.StartsAt,
		EndsAt:       ev.EndsAt,
		PriceCents:   ev.PriceCents,
		Status:       ev.Status,
	}
}

// Create registers a new event.
func (h *Handler) Create(c *fiber.Ctx) error {
	var req createRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	event, err := h.service.Create(c.UserContext(), CreateInput{
		Title:        req.Title,
		Description:  req.Description,
		Location:     geo.Point{Lat: req.Lat, Lon: req.Lon},
		RadiusMeters: req.RadiusMeters,
		StartsAt:     req.StartsAt,
		EndsAt:       req.EndsAt,
		PriceCents:   req.PriceCents,
	})
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	return c.Status(http.StatusCreated).JSON(toResponse(event))
}

// Get returns one event.
func (h *Handler) Get(c *fiber.Ctx) error {
	event, err := h.service.Get(c.UserContext(), c.Params("eventId"))
	if err != nil {
		return fiber.NewError(http.StatusNotFound, err.Error())
	}
	return c.Status(http.StatusOK).JSON(toResponse(event))
}

// List returns all events.
func (h *Handler) List(c *fiber.Ctx) error {
	list, err := h.service.List(c.UserContext())
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	out := make([]eventResponse, 0, len(list))
	for _, ev := range list {
		out = append(out, toResponse(ev))
	}
	return c.Status(http.StatusOK).JSON(out)
}

// Cancel marks an event as canceled.
func (h *Handler) Cancel(c *fiber.Ctx) error {
	if err := h.service.Cancel(c.UserContext(), c.Params("eventId")); err != nil {
		return fiber.NewError(http.StatusNotFound, err.Error())
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"status": StatusCanceled})
}
