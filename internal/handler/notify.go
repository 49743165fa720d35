package handler

import (
	"errors"
	"log"

	"github.com/PartyStarter240/donutmacro-discord-bot/internal/discord"
	"github.com/PartyStarter240/donutmacro-discord-bot/internal/model"
	"github.com/PartyStarter240/donutmacro-discord-bot/internal/registry"

	"github.com/gofiber/fiber/v2"
)

// UpdateSender is the slice of the Discord notifier the HTTP layer needs.
type UpdateSender interface {
	SendUpdate(uuid, message string) (*discord.UpdateResult, error)
	Ready() bool
}

type NotifyHandler struct {
	notifier UpdateSender
	codes    *registry.CodeStore
	links    *registry.LinkRegistry
}

func NewNotifyHandler(notifier UpdateSender, codes *registry.CodeStore, links *registry.LinkRegistry) *NotifyHandler {
	return &NotifyHandler{notifier: notifier, codes: codes, links: links}
}

// SendUpdate relays a player update into the player's private channel.
func (h *NotifyHandler) SendUpdate(c *fiber.Ctx) error {
	var req model.SendUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid body"})
	}
	if req.UUID == "" || req.Message == "" {
		return c.Status(400).JSON(fiber.Map{"error": "uuid and message are required"})
	}

	res, err := h.notifier.SendUpdate(req.UUID, req.Message)
	if err != nil {
		if errors.Is(err, discord.ErrNotReady) {
			return c.Status(503).JSON(fiber.Map{"error": "discord session not ready, retry later"})
		}
		log.Printf("[notify] send-update failed: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to deliver update"})
	}

	return c.JSON(model.SendUpdateResponse{
		Success:     true,
		ChannelID:   res.ChannelID,
		ChannelName: res.ChannelName,
	})
}

// GenerateCode issues a verification code for the /linkmc command, unless the
// player is already linked to a Discord account.
func (h *NotifyHandler) GenerateCode(c *fiber.Ctx) error {
	var req model.GenerateCodeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid body"})
	}
	if req.UUID == "" {
		return c.Status(400).JSON(fiber.Map{"error": "uuid is required"})
	}

	if h.links.IsLinked(req.UUID) {
		return c.JSON(model.GenerateCodeResponse{Success: false, AlreadyLinked: true})
	}

	code, err := h.codes.Issue(req.UUID)
	if err != nil {
		log.Printf("[notify] code generation failed: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to generate code"})
	}

	return c.JSON(model.GenerateCodeResponse{
		Success:   true,
		Code:      code,
		ExpiresIn: int(h.codes.TTL().Seconds()),
	})
}
