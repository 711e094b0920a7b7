package handler

import "github.com/gofiber/fiber/v2"

func RegisterRoutes(app *fiber.App, h *ChatHandler) {
	app.Get("/", h.Health)
	app.Post("/chat", h.Chat)
}
