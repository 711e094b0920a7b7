package handler

import (
	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(app *fiber.App, h *CatalogHandler) {
	app.Get("/", h.Health)
	app.Get("/books", h.ListBooks)
	app.Get("/books/categories", h.ListCategories)
	app.Get("/books/:id", h.GetBook)
}
