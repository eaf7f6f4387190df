package middleware

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/HenriqueLauxen/signea-sub001/internal/session"
)

// SessionGuard protects routes behind the session manager: each request
// re-validates the session and counts as user activity. Requests without a
// valid session are rejected without detail; the client redirects to login.
func SessionGuard(mgr *session.Manager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !mgr.CheckSession(c.UserContext()) {
			return fiber.NewError(http.StatusUnauthorized, "session invalid")
		}
		mgr.NotifyActivity()

		snap := mgr.Snapshot()
		c.Locals("session_email", snap.Session.Email)
		return c.Next()
	}
}
