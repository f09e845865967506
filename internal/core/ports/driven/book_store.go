package driven

import (
	"context"

	"github.com/shelfwise/shelfwise-core/internal/core/domain"
)

// BookStore handles catalog persistence (PostgreSQL)
type BookStore interface {
	// ListCorpus returns (id, title, description) for every book ordered by id
	ListCorpus(ctx context.Context) ([]domain.CorpusDocument, error)

	// Get retrieves a book by ID
	Get(ctx context.Context, id int64) (*domain.Book, error)

	// GetByTitle retrieves the first book carrying title
	GetByTitle(ctx context.Context, title string) (*domain.Book, error)

	// ListTitles returns distinct titles in ascending order
	ListTitles(ctx context.Context) ([]string, error)

	// ListCategories returns distinct genres in ascending order
	ListCategories(ctx context.Context) ([]string, error)

	// Search matches title OR genre case-insensitively, ordered by title
	Search(ctx context.Context, filter domain.BookSearch) ([]*domain.Book, error)

	// ListByPriceRange returns books within the inclusive range, cheapest first
	ListByPriceRange(ctx context.Context, r domain.PriceRange) ([]*domain.Book, error)

	// ListTopRated returns up to limit books by rating desc, then title
	ListTopRated(ctx context.Context, limit int) ([]*domain.Book, error)

	// ReplaceAll swaps the whole catalog for books in one transaction
	ReplaceAll(ctx context.Context, books []*domain.Book) (int, error)

	// Overview aggregates totals, average price and the rating distribution
	Overview(ctx context.Context) (*domain.StatsOverview, error)

	// CategoryStats aggregates count and average price per genre
	CategoryStats(ctx context.Context) ([]domain.CategoryStats, error)
}
