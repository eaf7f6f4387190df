package routes

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/HenriqueLauxen/signea-sub001/internal/geo"
	"github.com/HenriqueLauxen/signea-sub001/internal/identity"
	"github.com/HenriqueLauxen/signea-sub001/internal/registry"
)

type registrationResponse struct {
	ID             string    `json:"id"`
	EventID        string    `json:"event_id"`
	AccountID      string    `json:"account_id"`
	RegisteredAt   time.Time `json:"registered_at"`
	CheckedIn      bool      `json:"checked_in"`
	CheckedInAt    time.Time `json:"checked_in_at,omitempty"`
	DistanceMeters int       `json:"distance_meters,omitempty"`
}

func toRegistrationResponse(reg registry.Registration) registrationResponse {
	return registrationResponse{
		ID:             reg.ID,
		EventID:        reg.EventID,
		AccountID:      reg.AccountID,
		RegisteredAt:   reg.RegisteredAt,
		CheckedIn:      reg.CheckedIn,
		CheckedInAt:    reg.CheckedInAt,
		DistanceMeters: reg.DistanceMeters,
	}
}

// RegisterRegistrationRoutes wires event enrollment and GPS check-in.
func RegisterRegistrationRoutes(api fiber.Router, svc *registry.Service, accounts *identity.Service, log *slog.Logger) {
	api.Post("/events/:eventId/registrations", func(c *fiber.Ctx) error {
		email, _ := c.Locals("session_email").(string)
		account, err := accounts.Get(c.UserContext(), email)
		if err != nil {
			return fiber.NewError(http.StatusUnauthorized, "account not found")
		}

		reg, err := svc.Register(c.UserContext(), c.Params("eventId"), account.ID)
		switch {
		case errors.Is(err, registry.ErrDuplicateRegistration):
			// Enrollment is idempotent: repeats return the existing row.
			return c.Status(http.StatusOK).JSON(toRegistrationResponse(reg))
		case errors.Is(err, registry.ErrEventCanceled):
			return fiber.NewError(http.StatusConflict, err.Error())
		case err != nil:
			return fiber.NewError(http.StatusNotFound, err.Error())
		}

		log.Info("registration created",
			slog.String("registration_id", reg.ID),
			slog.String("event_id", reg.EventID))
		return c.Status(http.StatusCreated).JSON(toRegistrationResponse(reg))
	})

	api.Get("/events/:eventId/attendance", func(c *fiber.Ctx) error {
		list, err := svc.Attendance(c.UserContext(), c.Params("eventId"))
		if err != nil {
			return fiber.NewError(http.StatusInternalServerError, err.Error())
		}
		out := make([]registrationResponse, 0, len(list))
		for _, reg := range list {
			out = append(out, toRegistrationResponse(reg))
		}
		return c.Status(http.StatusOK).JSON(out)
	})

	api.Post("/registrations/:registrationId/checkin", func(c *fiber.Ctx) error {
		var req struct {
			Lat float64 `json:"lat"`
			Lon float64 `json:"lon"`
		}
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(http.StatusBadRequest, "invalid request body")
		}
		subject := geo.Point{Lat: req.Lat, Lon: req.Lon}
		if !subject.Valid() {
			return fiber.NewError(http.StatusBadRequest, "invalid coordinates")
		}

		result, err := svc.CheckIn(c.UserContext(), c.Params("registrationId"), subject, time.Now().UTC())
		switch {
		case errors.Is(err, registry.ErrOutsideRadius):
			return c.Status(http.StatusUnprocessableEntity).JSON(fiber.Map{
				"checked_in":      false,
				"distance_meters": result.Proximity.DistanceMeters,
				"message":         result.Proximity.Message,
			})
		case errors.Is(err, registry.ErrAlreadyCheckedIn):
			return fiber.NewError(http.StatusConflict, err.Error())
		case errors.Is(err, registry.ErrCheckInClosed), errors.Is(err, registry.ErrEventCanceled):
			return fiber.NewError(http.StatusUnprocessableEntity, err.Error())
		case err != nil:
			return fiber.NewError(http.StatusNotFound, err.Error())
		}

		log.Info("check-in recorded",
			slog.String("registration_id", result.Registration.ID),
			slog.Int("distance_meters", result.Proximity.DistanceMeters))
		return c.Status(http.StatusOK).JSON(fiber.Map{
			"checked_in":      true,
			"checked_in_at":   result.Registration.CheckedInAt,
			"distance_meters": result.Proximity.DistanceMeters,
			"message":         result.Proximity.Message,
		})
	})
}
