package middleware

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/fourgetech/payportal/internal/session"
)

// SessionGuard gates protected routes on the session state. While the store is
// still restoring, callers get a neutral loading answer rather than the view or a
// redirect, so a settled-later session never produces a false bounce to login. An
// adopted credential that turns out to be expired is logged out here instead of
// being allowed to hit the backend.
func SessionGuard(store *session.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		switch store.State() {
		case session.StateAuthenticated:
			if err := store.CheckCredential(time.Now()); err != nil {
				store.Logout(c.UserContext())
				return c.Redirect("/login", http.StatusFound)
			}
			return c.Next()
		case session.StateAnonymous:
			return c.Redirect("/login", http.StatusFound)
		default:
			// Uninitialized or Restoring.
			return c.Status(http.StatusServiceUnavailable).JSON(fiber.Map{"status": "loading"})
		}
	}
}
