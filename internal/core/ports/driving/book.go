package driving

import (
	"context"

	"github.com/shelfwise/shelfwise-core/internal/core/domain"
)

// BookService exposes read-only catalog queries
type BookService interface {
	// Titles returns every distinct title, sorted
	Titles(ctx context.Context) ([]string, error)

	// Get returns the full details of a book
	Get(ctx context.Context, id int64) (*domain.Book, error)

	// Search matches title or category; an empty filter yields no results
	Search(ctx context.Context, filter domain.BookSearch) ([]*domain.BookSummary, error)

	// ByPriceRange returns books priced within r, cheapest first
	ByPriceRange(ctx context.Context, r domain.PriceRange) ([]*domain.BookSummary, error)

	// TopRated returns the best rated books
	TopRated(ctx context.Context, limit int) ([]*domain.BookSummary, error)

	// Categories returns every distinct genre, sorted
	Categories(ctx context.Context) ([]string, error)
}

// StatsService aggregates catalog statistics
type StatsService interface {
	Overview(ctx context.Context) (*domain.StatsOverview, error)
	Categories(ctx context.Context) ([]domain.CategoryStats, error)
}

// ScrapeService refreshes the catalog from the scraper
type ScrapeService interface {
	// Run crawls the catalog and replaces the stored books
	Run(ctx context.Context) (*domain.ScrapeResult, error)
}
