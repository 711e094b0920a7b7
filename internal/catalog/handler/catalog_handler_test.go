package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tahachak1/e-biblio/internal/catalog/domain"
	"github.com/tahachak1/e-biblio/internal/catalog/handler"
)

// stubBookRepo records the filter it was called with and returns canned rows.
type stubBookRepo struct {
	lastFilter domain.ListFilter
	books      []domain.Book
	total      int
	categories []domain.Category
	book       *domain.Book
	err        error
}

func (s *stubBookRepo) List(_ context.Context, filter domain.ListFilter) ([]domain.Book, int, error) {
	s.lastFilter = filter
	return s.books, s.total, s.err
}

func (s *stubBookRepo) GetByID(_ context.Context, _ string) (*domain.Book, error) {
	return s.book, s.err
}

func (s *stubBookRepo) ListCategories(_ context.Context) ([]domain.Category, error) {
	return s.categories, s.err
}

func newCatalogApp(repo *stubBookRepo) *fiber.App {
	app := fiber.New()
	handler.RegisterRoutes(app, handler.NewCatalogHandler(repo))
	return app
}

func getJSON(t *testing.T, app *fiber.App, path string) (int, map[string]any) {
	t.Helper()

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil))
	require.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var body map[string]any
	require.NoError(t, json.Unmarshal(raw, &body))

	return resp.StatusCode, body
}

func TestListBooks(t *testing.T) {
	repo := &stubBookRepo{
		books: []domain.Book{
			{ID: "b-1", Title: "Les Misérables", Author: "Victor Hugo", Price: 9.99, CreatedAt: time.Now()},
		},
		total: 42,
	}
	app := newCatalogApp(repo)

	status, body := getJSON(t, app, "/books?search=hugo&sort=price&order=desc&page=3&limit=10")

	assert.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 42, body["total"])
	assert.EqualValues(t, 3, body["page"])
	assert.Len(t, body["books"], 1)

	assert.Equal(t, "hugo", repo.lastFilter.Search)
	assert.Equal(t, "price", repo.lastFilter.Sort)
	assert.Equal(t, "desc", repo.lastFilter.Order)
	assert.Equal(t, 3, repo.lastFilter.Page)
	assert.Equal(t, 10, repo.lastFilter.Limit)
}

func TestListBooks_ClampsPagination(t *testing.T) {
	repo := &stubBookRepo{}
	app := newCatalogApp(repo)

	status, body := getJSON(t, app, "/books?page=0&limit=9999")

	assert.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 1, body["page"])
	assert.Equal(t, 1, repo.lastFilter.Page)
	assert.Equal(t, 50, repo.lastFilter.Limit)
}

func TestListBooks_RepositoryError(t *testing.T) {
	repo := &stubBookRepo{err: errors.New("db down")}
	app := newCatalogApp(repo)

	status, _ := getJSON(t, app, "/books")

	assert.Equal(t, http.StatusInternalServerError, status)
}

func TestListCategories(t *testing.T) {
	repo := &stubBookRepo{
		categories: []domain.Category{
			{ID: "c-1", Name: "Romans", Slug: "romans", CreatedAt: time.Now()},
		},
	}
	app := newCatalogApp(repo)

	status, body := getJSON(t, app, "/books/categories")

	assert.Equal(t, http.StatusOK, status)
	categories, ok := body["categories"].([]any)
	require.True(t, ok)
	require.Len(t, categories, 1)

	first := categories[0].(map[string]any)
	assert.Equal(t, "Romans", first["nom"])
}

func TestGetBook(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		repo := &stubBookRepo{book: &domain.Book{ID: "b-1", Title: "Candide"}}
		app := newCatalogApp(repo)

		status, body := getJSON(t, app, "/books/b-1")

		assert.Equal(t, http.StatusOK, status)
		assert.Equal(t, "Candide", body["title"])
	})

	t.Run("not found", func(t *testing.T) {
		repo := &stubBookRepo{}
		app := newCatalogApp(repo)

		status, _ := getJSON(t, app, "/books/missing")

		assert.Equal(t, http.StatusNotFound, status)
	})
}

func TestCatalogHealth(t *testing.T) {
	app := newCatalogApp(&stubBookRepo{})

	status, body := getJSON(t, app, "/")

	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "book-catalog ok", body["status"])
}
