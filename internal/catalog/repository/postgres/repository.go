package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/tahachak1/e-biblio/internal/catalog/domain"
)

type PgxIface interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type BookRepository struct {
	db PgxIface
}

func NewBookRepository(db PgxIface) *BookRepository {
	return &BookRepository{db: db}
}

const bookColumns = `id, title, author, category, COALESCE(category_id, ''), type, price,
		description, cover_url, created_at`

func (r *BookRepository) List(ctx context.Context, filter domain.ListFilter) ([]domain.Book, int, error) {
	var (
		conds []string
		args  []any
	)

	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.Search != "" {
		p := arg("%" + filter.Search + "%")
		conds = append(conds, fmt.Sprintf("(title ILIKE %s OR author ILIKE %s)", p, p))
	}
	if filter.CategoryID != "" {
		conds = append(conds, "category_id = "+arg(filter.CategoryID))
	} else if filter.Category != "" {
		conds = append(conds, "category ILIKE "+arg("%"+filter.Category+"%"))
	}
	if filter.Type != "" {
		conds = append(conds, "type = "+arg(filter.Type))
	}

	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	if err := r.db.QueryRow(ctx, "SELECT count(*) FROM books"+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count books: %w", err)
	}

	// Sort column comes from a fixed whitelist, never from user input.
	orderBy := ""
	switch filter.Sort {
	case "price":
		orderBy = "price"
	case "title":
		orderBy = "title"
	case "date":
		orderBy = "created_at"
	}
	if orderBy != "" {
		dir := "ASC"
		if filter.Order == "desc" {
			dir = "DESC"
		}
		orderBy = fmt.Sprintf(" ORDER BY %s %s", orderBy, dir)
	}

	offset := (filter.Page - 1) * filter.Limit
	query := "SELECT " + bookColumns + " FROM books" + where + orderBy +
		fmt.Sprintf(" LIMIT %s OFFSET %s", arg(filter.Limit), arg(offset))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list books: %w", err)
	}
	defer rows.Close()

	books := make([]domain.Book, 0)
	for rows.Next() {
		var b domain.Book
		if err := rows.Scan(&b.ID, &b.Title, &b.Author, &b.Category, &b.CategoryID,
			&b.Type, &b.Price, &b.Description, &b.CoverURL, &b.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("failed to scan book: %w", err)
		}
		books = append(books, b)
	}

	return books, total, rows.Err()
}

func (r *BookRepository) GetByID(ctx context.Context, id string) (*domain.Book, error) {
	query := "SELECT " + bookColumns + " FROM books WHERE id = $1 LIMIT 1;"

	var b domain.Book
	err := r.db.QueryRow(ctx, query, id).Scan(&b.ID, &b.Title, &b.Author, &b.Category,
		&b.CategoryID, &b.Type, &b.Price, &b.Description, &b.CoverURL, &b.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get book: %w", err)
	}

	return &b, nil
}

func (r *BookRepository) ListCategories(ctx context.Context) ([]domain.Category, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, name, slug, created_at FROM categories ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	categories := make([]domain.Category, 0)
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, c)
	}

	return categories, rows.Err()
}
