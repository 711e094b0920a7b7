package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tahachak1/e-biblio/internal/catalog/domain"
	repo "github.com/tahachak1/e-biblio/internal/catalog/repository/postgres"
)

var bookColumns = []string{
	"id", "title", "author", "category", "category_id", "type", "price",
	"description", "cover_url", "created_at",
}

func bookRow(id, title string) *pgxmock.Rows {
	return pgxmock.NewRows(bookColumns).
		AddRow(id, title, "Victor Hugo", "Romans", "c-1", "roman", 9.99, "", "", time.Now())
}

func TestList(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	r := repo.NewBookRepository(mock)
	ctx := context.Background()

	t.Run("no filters", func(t *testing.T) {
		mock.ExpectQuery("SELECT count").
			WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(1))
		mock.ExpectQuery("SELECT id, title").
			WithArgs(50, 0).
			WillReturnRows(bookRow("b-1", "Les Misérables"))

		books, total, err := r.List(ctx, domain.ListFilter{Page: 1, Limit: 50})
		require.NoError(t, err)
		assert.Equal(t, 1, total)
		require.Len(t, books, 1)
		assert.Equal(t, "Les Misérables", books[0].Title)
	})

	t.Run("search filter binds one argument for both title and author", func(t *testing.T) {
		mock.ExpectQuery("SELECT count").
			WithArgs("%hugo%").
			WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(3))
		mock.ExpectQuery("SELECT id, title").
			WithArgs("%hugo%", 10, 10).
			WillReturnRows(bookRow("b-1", "Les Misérables"))

		_, total, err := r.List(ctx, domain.ListFilter{Search: "hugo", Page: 2, Limit: 10})
		require.NoError(t, err)
		assert.Equal(t, 3, total)
	})

	t.Run("category id wins over category name", func(t *testing.T) {
		mock.ExpectQuery("SELECT count").
			WithArgs("c-1").
			WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(1))
		mock.ExpectQuery("SELECT id, title").
			WithArgs("c-1", 50, 0).
			WillReturnRows(bookRow("b-1", "Les Misérables"))

		_, _, err := r.List(ctx, domain.ListFilter{
			Category:   "Romans",
			CategoryID: "c-1",
			Page:       1,
			Limit:      50,
		})
		require.NoError(t, err)
	})

	t.Run("sorted by date descending", func(t *testing.T) {
		mock.ExpectQuery("SELECT count").
			WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(1))
		mock.ExpectQuery("ORDER BY created_at DESC").
			WithArgs(50, 0).
			WillReturnRows(bookRow("b-1", "Les Misérables"))

		_, _, err := r.List(ctx, domain.ListFilter{Sort: "date", Order: "desc", Page: 1, Limit: 50})
		require.NoError(t, err)
	})
}

func TestGetByID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	r := repo.NewBookRepository(mock)
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		mock.ExpectQuery("SELECT id, title").
			WithArgs("b-1").
			WillReturnRows(bookRow("b-1", "Candide"))

		book, err := r.GetByID(ctx, "b-1")
		require.NoError(t, err)
		assert.Equal(t, "Candide", book.Title)
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery("SELECT id, title").
			WithArgs("missing").
			WillReturnError(pgx.ErrNoRows)

		book, err := r.GetByID(ctx, "missing")
		require.NoError(t, err)
		assert.Nil(t, book)
	})
}

func TestListCategories(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	r := repo.NewBookRepository(mock)

	mock.ExpectQuery("SELECT id, name, slug").
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "slug", "created_at"}).
			AddRow("c-1", "Romans", "romans", time.Now()).
			AddRow("c-2", "Essais", "essais", time.Now()))

	categories, err := r.ListCategories(context.Background())
	require.NoError(t, err)
	require.Len(t, categories, 2)
	assert.Equal(t, "Romans", categories[0].Name)
}
