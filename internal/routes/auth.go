package routes

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/HenriqueLauxen/signea-sub001/internal/identity"
	"github.com/HenriqueLauxen/signea-sub001/internal/session"
)

// RegisterAuthRoutes wires login and logout through the session manager.
func RegisterAuthRoutes(api fiber.Router, mgr *session.Manager, rateLimiter fiber.Handler) {
	grp := api.Group("/auth")
	if rateLimiter != nil {
		grp.Post("/login", rateLimiter, loginHandler(mgr))
	} else {
		grp.Post("/login", loginHandler(mgr))
	}
	grp.Post("/logout", func(c *fiber.Ctx) error {
		// Logout always succeeds from the caller's perspective.
		mgr.Logout(c.UserContext())
		return c.SendStatus(http.StatusNoContent)
	})
}

func loginHandler(mgr *session.Manager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(http.StatusBadRequest, "invalid request body")
		}
		if req.Email == "" || req.Password == "" {
			return fiber.NewError(http.StatusBadRequest, "email and password are required")
		}

		sess, err := mgr.SignIn(c.UserContext(), req.Email, req.Password)
		if err != nil {
			if errors.Is(err, identity.ErrInvalidCredentials) {
				return fiber.NewError(http.StatusUnauthorized, "invalid credentials")
			}
			return fiber.NewError(http.StatusForbidden, err.Error())
		}

		return c.Status(http.StatusOK).JSON(fiber.Map{
			"email":      sess.Email,
			"token":      sess.Token,
			"expires_at": sess.ExpiresAt,
		})
	}
}
