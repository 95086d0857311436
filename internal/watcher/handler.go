package watcher

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
)

// Handler receives the visibility and unload beacons the tab fires.
type Handler struct {
	watcher *Watcher
}

// NewHandler constructs a watcher handler.
func NewHandler(watcher *Watcher) *Handler {
	return &Handler{watcher: watcher}
}

type visibilityRequest struct {
	Hidden bool `json:"hidden"`
}

// Visibility records a visibilitychange beacon.
func (h *Handler) Visibility(c *fiber.Ctx) error {
	var req visibilityRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	h.watcher.SetHidden(req.Hidden)
	return c.SendStatus(http.StatusNoContent)
}

// Unload records the tab's final beacon. Beacons carry no body worth parsing and
// expect nothing back, so this always answers 204.
func (h *Handler) Unload(c *fiber.Ctx) error {
	h.watcher.Unload(c.UserContext())
	return c.SendStatus(http.StatusNoContent)
}
