package handler

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/krishkalaria12/snap-upload/database"
)

const pingTimeout = 2 * time.Second

type HealthHandler struct {
	store     database.ImageStore
	startedAt time.Time
}

func NewHealthHandler(store database.ImageStore, startedAt time.Time) *HealthHandler {
	return &HealthHandler{store: store, startedAt: startedAt}
}

// Health probes the store on every call rather than trusting the outcome
// of the last request.
func (h *HealthHandler) Health(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), pingTimeout)
	defer cancel()

	state := "connected"
	if err := h.store.Ping(ctx); err != nil {
		state = "disconnected"
	}

	return c.JSON(fiber.Map{
		"status":    "OK",
		"timestamp": time.Now().UTC(),
		"uptime":    time.Since(h.startedAt).Seconds(),
		"database":  state,
	})
}
