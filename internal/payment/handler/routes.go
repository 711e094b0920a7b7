package handler

import "github.com/gofiber/fiber/v2"

func RegisterRoutes(app *fiber.App, h *PaymentHandler) {
	app.Get("/", h.Health)

	auth := h.RequireAuth()

	methods := app.Group("/payment-methods", auth)
	methods.Get("/", h.ListMethods)
	methods.Post("/", h.AddMethod)
	methods.Delete("/", h.DeleteAllMethods)
	methods.Delete("/:id", h.DeleteMethod)
	methods.Patch("/:id/default", h.SetDefaultMethod)

	payments := app.Group("/payments", auth)
	payments.Post("/intent", h.CreateIntent)
	payments.Get("/intent/:id", h.GetIntent)
	payments.Get("/history", h.ListIntents)
}
