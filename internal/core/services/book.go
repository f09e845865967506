package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/shelfwise/shelfwise-core/internal/core/domain"
	"github.com/shelfwise/shelfwise-core/internal/core/ports/driven"
	"github.com/shelfwise/shelfwise-core/internal/core/ports/driving"
)

// Ensure bookService implements BookService
var _ driving.BookService = (*bookService)(nil)

// MaxTopRatedLimit caps the top rated listing
const MaxTopRatedLimit = 100

// bookService implements the BookService interface
type bookService struct {
	bookStore driven.BookStore
}

// NewBookService creates a new BookService
func NewBookService(bookStore driven.BookStore) driving.BookService {
	return &bookService{bookStore: bookStore}
}

// Titles returns every distinct title, sorted
func (s *bookService) Titles(ctx context.Context) ([]string, error) {
	return s.bookStore.ListTitles(ctx)
}

// Get returns the full details of a book
func (s *bookService) Get(ctx context.Context, id int64) (*domain.Book, error) {
	if id <= 0 {
		return nil, domain.ErrInvalidInput
	}
	return s.bookStore.Get(ctx, id)
}

// Search matches title or category; an empty filter yields no results
func (s *bookService) Search(ctx context.Context, filter domain.BookSearch) ([]*domain.BookSummary, error) {
	if filter.IsEmpty() {
		return []*domain.BookSummary{}, nil
	}
	filter.Title = strings.TrimSpace(filter.Title)
	filter.Category = strings.TrimSpace(filter.Category)

	books, err := s.bookStore.Search(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("search books: %w", err)
	}
	return summarize(books), nil
}

// ByPriceRange returns books priced within r, cheapest first
func (s *bookService) ByPriceRange(ctx context.Context, r domain.PriceRange) ([]*domain.BookSummary, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("price range [%.2f, %.2f]: %w", r.Min, r.Max, domain.ErrInvalidInput)
	}
	books, err := s.bookStore.ListByPriceRange(ctx, r)
	if err != nil {
		return nil, fmt.Errorf("list by price: %w", err)
	}
	return summarize(books), nil
}

// TopRated returns the best rated books. A non-positive limit means
// domain.DefaultTopRatedLimit.
func (s *bookService) TopRated(ctx context.Context, limit int) ([]*domain.BookSummary, error) {
	if limit <= 0 {
		limit = domain.DefaultTopRatedLimit
	}
	if limit > MaxTopRatedLimit {
		limit = MaxTopRatedLimit
	}
	books, err := s.bookStore.ListTopRated(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list top rated: %w", err)
	}
	return summarize(books), nil
}

// Categories returns every distinct genre, sorted
func (s *bookService) Categories(ctx context.Context) ([]string, error) {
	return s.bookStore.ListCategories(ctx)
}

func summarize(books []*domain.Book) []*domain.BookSummary {
	out := make([]*domain.BookSummary, len(books))
	for i, b := range books {
		out[i] = b.ToSummary()
	}
	return out
}
