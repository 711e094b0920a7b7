package handler

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/tahachak1/e-biblio/internal/chat/dto"
	"github.com/tahachak1/e-biblio/internal/chat/service"
)

var validate = validator.New()

type ChatHandler struct {
	chat *service.ChatService
}

func NewChatHandler(chat *service.ChatService) *ChatHandler {
	return &ChatHandler{chat: chat}
}

func (h *ChatHandler) Chat(c *fiber.Ctx) error {
	var input dto.ChatInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid input"})
	}
	if err := validate.Struct(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	out, err := h.chat.Complete(c.Context(), input)
	if err != nil {
		// Upstream failures and a missing key both surface as 500s, with
		// the provider's message passed through.
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(out)
}

func (h *ChatHandler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "chatbot-service ok"})
}
