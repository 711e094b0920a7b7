package domain

import (
	"context"
	"time"
)

type Book struct {
	ID          string
	Title       string
	Author      string
	Category    string
	CategoryID  string
	Type        string
	Price       float64
	Description string
	CoverURL    string
	CreatedAt   time.Time
}

type Category struct {
	ID        string
	Name      string
	Slug      string
	CreatedAt time.Time
}

// ListFilter carries the query-string filters of the listing endpoint. Page
// and Limit are already clamped by the handler.
type ListFilter struct {
	Search     string
	Category   string
	CategoryID string
	Type       string
	Sort       string // "price", "title" or "date"
	Order      string // "asc" or "desc"
	Page       int
	Limit      int
}

type BookRepository interface {
	List(ctx context.Context, filter ListFilter) ([]Book, int, error)
	GetByID(ctx context.Context, id string) (*Book, error)
	ListCategories(ctx context.Context) ([]Category, error)
}
