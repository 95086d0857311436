package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/fourgetech/payportal/internal/session"
	"github.com/fourgetech/payportal/internal/watcher"
)

// RegisterSessionRoutes wires the public session endpoints plus the tab beacons.
func RegisterSessionRoutes(r fiber.Router, h *session.Handler, w *watcher.Handler, rateLimiter fiber.Handler) {
	r.Post("/login", rateLimiter, h.Login)
	r.Post("/register", h.Register)
	r.Post("/logout", h.Logout)

	group := r.Group("/session")
	group.Post("/visibility", w.Visibility)
	group.Post("/unload", w.Unload)
}
