package routes

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/HenriqueLauxen/signea-sub001/internal/identity"
)

// RegisterAccountRoutes wires account creation and email confirmation.
func RegisterAccountRoutes(api fiber.Router, svc *identity.Service, log *slog.Logger) {
	api.Post("/accounts", func(c *fiber.Ctx) error {
		var req struct {
			Email    string `json:"email"`
			Name     string `json:"name"`
			Password string `json:"password"`
		}
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(http.StatusBadRequest, "invalid request body")
		}

		account, err := svc.Register(c.UserContext(), identity.Credentials{
			Email:    req.Email,
			Name:     req.Name,
			Password: req.Password,
		})
		switch {
		case errors.Is(err, identity.ErrNotInstitutional):
			return fiber.NewError(http.StatusUnprocessableEntity, err.Error())
		case err != nil:
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}

		log.Info("account registered", slog.String("email", account.Email))
		return c.Status(http.StatusCreated).JSON(fiber.Map{
			"id":              account.ID,
			"email":           account.Email,
			"name":            account.Name,
			"email_confirmed": account.EmailConfirmed,
		})
	})

	// Stand-in for the confirmation link the mailer would deliver.
	api.Post("/accounts/confirm", func(c *fiber.Ctx) error {
		var req struct {
			Email string `json:"email"`
		}
		if err := c.BodyParser(&req); err != nil || req.Email == "" {
			return fiber.NewError(http.StatusBadRequest, "email is required")
		}
		if err := svc.ConfirmEmail(c.UserContext(), req.Email); err != nil {
			return fiber.NewError(http.StatusNotFound, "account not found")
		}
		log.Info("email confirmed", slog.String("email", req.Email))
		return c.Status(http.StatusOK).JSON(fiber.Map{"confirmed": true})
	})
}
