package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/tahachak1/e-biblio/internal/catalog/domain"
)

const (
	defaultLimit = 50
	maxLimit     = 200
)

type CatalogHandler struct {
	books domain.BookRepository
}

func NewCatalogHandler(books domain.BookRepository) *CatalogHandler {
	return &CatalogHandler{books: books}
}

type bookOutput struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Author      string    `json:"author"`
	Category    string    `json:"category"`
	CategoryID  string    `json:"categorieId,omitempty"`
	Type        string    `json:"type"`
	Price       float64   `json:"price"`
	Description string    `json:"description"`
	CoverURL    string    `json:"coverUrl"`
	CreatedAt   time.Time `json:"createdAt"`
}

func newBookOutput(b domain.Book) bookOutput {
	return bookOutput{
		ID:          b.ID,
		Title:       b.Title,
		Author:      b.Author,
		Category:    b.Category,
		CategoryID:  b.CategoryID,
		Type:        b.Type,
		Price:       b.Price,
		Description: b.Description,
		CoverURL:    b.CoverURL,
		CreatedAt:   b.CreatedAt,
	}
}

func (h *CatalogHandler) ListBooks(c *fiber.Ctx) error {
	filter := domain.ListFilter{
		Search:     c.Query("search"),
		Category:   c.Query("category"),
		CategoryID: c.Query("categorieId"),
		Type:       c.Query("type"),
		Sort:       c.Query("sort"),
		Order:      c.Query("order", "asc"),
		Page:       c.QueryInt("page", 1),
		Limit:      c.QueryInt("limit", defaultLimit),
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 || filter.Limit > maxLimit {
		filter.Limit = defaultLimit
	}

	books, total, err := h.books.List(c.Context(), filter)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
	}

	out := make([]bookOutput, 0, len(books))
	for _, b := range books {
		out = append(out, newBookOutput(b))
	}

	return c.JSON(fiber.Map{
		"books": out,
		"total": total,
		"page":  filter.Page,
	})
}

func (h *CatalogHandler) ListCategories(c *fiber.Ctx) error {
	categories, err := h.books.ListCategories(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
	}

	out := make([]fiber.Map, 0, len(categories))
	for _, cat := range categories {
		out = append(out, fiber.Map{
			"id":        cat.ID,
			"nom":       cat.Name,
			"slug":      cat.Slug,
			"createdAt": cat.CreatedAt,
		})
	}

	return c.JSON(fiber.Map{"categories": out})
}

func (h *CatalogHandler) GetBook(c *fiber.Ctx) error {
	book, err := h.books.GetByID(c.Context(), c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
	}
	if book == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "book not found"})
	}

	return c.JSON(newBookOutput(*book))
}

func (h *CatalogHandler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "book-catalog ok"})
}
