package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

type HealthHandler struct {
	notifier UpdateSender
	started  time.Time
}

func NewHealthHandler(notifier UpdateSender) *HealthHandler {
	return &HealthHandler{notifier: notifier, started: time.Now()}
}

// Status reports the Discord connection state and process uptime.
func (h *HealthHandler) Status(c *fiber.Ctx) error {
	discordStatus := "connected"
	if !h.notifier.Ready() {
		discordStatus = "disconnected"
	}
	return c.JSON(fiber.Map{
		"status":  "ok",
		"discord": discordStatus,
		"uptime":  time.Since(h.started).Round(time.Second).String(),
	})
}
