package api

import (
	"ouvidoria/utils"

	"github.com/gofiber/fiber/v2"
)

// MessagesHandler serves the message catalog
type MessagesHandler struct {
	catalog *utils.Catalog
}

// NewMessagesHandler creates a new instance of MessagesHandler
func NewMessagesHandler(catalog *utils.Catalog) *MessagesHandler {
	return &MessagesHandler{catalog: catalog}
}

// GetMessages returns every user-facing string for client-side rendering
func (h *MessagesHandler) GetMessages(c *fiber.Ctx) error {
	return c.JSON(h.catalog.All())
}

// Health reports that the service is up
func Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}
