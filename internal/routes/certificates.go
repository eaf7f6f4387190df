package routes

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/HenriqueLauxen/signea-sub001/internal/certificates"
)

// RegisterCertificateRoutes wires certificate issuance.
func RegisterCertificateRoutes(api fiber.Router, svc *certificates.Service, log *slog.Logger) {
	api.Post("/registrations/:registrationId/certificate", func(c *fiber.Ctx) error {
		cert, err := svc.Issue(c.UserContext(), c.Params("registrationId"))
		switch {
		case errors.Is(err, certificates.ErrAlreadyIssued):
			return c.Status(http.StatusOK).JSON(certificateBody(cert))
		case errors.Is(err, certificates.ErrNotCheckedIn):
			return fiber.NewError(http.StatusUnprocessableEntity, err.Error())
		case err != nil:
			return fiber.NewError(http.StatusNotFound, err.Error())
		}

		log.Info("certificate issued",
			slog.String("registration_id", cert.RegistrationID),
			slog.String("code", cert.Code))
		return c.Status(http.StatusCreated).JSON(certificateBody(cert))
	})
}

// verifyCertificateHandler resolves a public certificate code.
func verifyCertificateHandler(svc *certificates.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		cert, err := svc.Verify(c.UserContext(), c.Params("code"))
		if err != nil {
			return fiber.NewError(http.StatusNotFound, "certificate not found")
		}
		return c.Status(http.StatusOK).JSON(certificateBody(cert))
	}
}

func certificateBody(cert certificates.Certificate) fiber.Map {
	return fiber.Map{
		"id":              cert.ID,
		"registration_id": cert.RegistrationID,
		"code":            cert.Code,
		"issued_at":       cert.IssuedAt,
	}
}
