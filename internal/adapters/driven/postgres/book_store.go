package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/shelfwise/shelfwise-core/internal/core/domain"
	"github.com/shelfwise/shelfwise-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.BookStore = (*BookStore)(nil)

const bookColumns = `id, upc, title, genre, price, availability, rating, description, product_type,
	price_excl_tax, price_incl_tax, tax, number_of_reviews, url, image_url`

// ratingRank orders word ratings numerically; unknown ratings rank 0.
const ratingRank = `CASE rating
	WHEN 'One' THEN 1 WHEN 'Two' THEN 2 WHEN 'Three' THEN 3
	WHEN 'Four' THEN 4 WHEN 'Five' THEN 5 ELSE 0 END`

// BookStore implements driven.BookStore using PostgreSQL
type BookStore struct {
	db *DB
}

// NewBookStore creates a new BookStore
func NewBookStore(db *DB) *BookStore {
	return &BookStore{db: db}
}

// ListCorpus returns the training feed in id order
func (s *BookStore) ListCorpus(ctx context.Context) ([]domain.CorpusDocument, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, title, description FROM books ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []domain.CorpusDocument
	for rows.Next() {
		var (
			doc  domain.CorpusDocument
			desc sql.NullString
		)
		if err := rows.Scan(&doc.ID, &doc.Title, &desc); err != nil {
			return nil, err
		}
		doc.Description = StringPtr(desc)
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// Get retrieves a book by ID
func (s *BookStore) Get(ctx context.Context, id int64) (*domain.Book, error) {
	return s.getOne(ctx, "SELECT "+bookColumns+" FROM books WHERE id = $1", id)
}

// GetByTitle retrieves the lowest-id book carrying title
func (s *BookStore) GetByTitle(ctx context.Context, title string) (*domain.Book, error) {
	return s.getOne(ctx, "SELECT "+bookColumns+" FROM books WHERE title = $1 ORDER BY id LIMIT 1", title)
}

func (s *BookStore) getOne(ctx context.Context, query string, arg any) (*domain.Book, error) {
	book, err := scanBook(s.db.QueryRowContext(ctx, query, arg))
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return book, nil
}

// ListTitles returns distinct titles in ascending order
func (s *BookStore) ListTitles(ctx context.Context) ([]string, error) {
	return s.strings(ctx, "SELECT DISTINCT title FROM books ORDER BY title")
}

// ListCategories returns distinct genres in ascending order
func (s *BookStore) ListCategories(ctx context.Context) ([]string, error) {
	return s.strings(ctx, "SELECT DISTINCT genre FROM books WHERE genre <> '' ORDER BY genre")
}

func (s *BookStore) strings(ctx context.Context, query string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []string{}
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// Search matches title OR genre by case-insensitive substring
func (s *BookStore) Search(ctx context.Context, filter domain.BookSearch) ([]*domain.Book, error) {
	var (
		conds []string
		args  []any
	)
	if t := strings.TrimSpace(filter.Title); t != "" {
		args = append(args, likePattern(t))
		conds = append(conds, fmt.Sprintf("title ILIKE $%d", len(args)))
	}
	if c := strings.TrimSpace(filter.Category); c != "" {
		args = append(args, likePattern(c))
		conds = append(conds, fmt.Sprintf("genre ILIKE $%d", len(args)))
	}
	if len(conds) == 0 {
		return []*domain.Book{}, nil
	}
	query := "SELECT " + bookColumns + " FROM books WHERE " + strings.Join(conds, " OR ") + " ORDER BY title, id"
	return s.list(ctx, query, args...)
}

// ListByPriceRange returns books priced within r, cheapest first
func (s *BookStore) ListByPriceRange(ctx context.Context, r domain.PriceRange) ([]*domain.Book, error) {
	query := "SELECT " + bookColumns + " FROM books WHERE price BETWEEN $1 AND $2 ORDER BY price, id"
	return s.list(ctx, query, r.Min, r.Max)
}

// ListTopRated returns up to limit books by rating, then title
func (s *BookStore) ListTopRated(ctx context.Context, limit int) ([]*domain.Book, error) {
	query := "SELECT " + bookColumns + " FROM books ORDER BY " + ratingRank + " DESC, title, id LIMIT $1"
	return s.list(ctx, query, limit)
}

func (s *BookStore) list(ctx context.Context, query string, args ...any) ([]*domain.Book, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	books := []*domain.Book{}
	for rows.Next() {
		book, err := scanBook(rows)
		if err != nil {
			return nil, err
		}
		books = append(books, book)
	}
	return books, rows.Err()
}

// ReplaceAll empties the catalog and bulk loads books with COPY in a single
// transaction. Book IDs restart from 1 in input order.
func (s *BookStore) ReplaceAll(ctx context.Context, books []*domain.Book) (int, error) {
	err := s.db.Transaction(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "TRUNCATE books RESTART IDENTITY"); err != nil {
			return fmt.Errorf("truncate books: %w", err)
		}

		stmt, err := tx.PrepareContext(ctx, pq.CopyIn("books",
			"upc", "title", "genre", "price", "availability", "rating", "description", "product_type",
			"price_excl_tax", "price_incl_tax", "tax", "number_of_reviews", "url", "image_url"))
		if err != nil {
			return fmt.Errorf("prepare copy: %w", err)
		}
		for _, b := range books {
			_, err := stmt.ExecContext(ctx,
				b.UPC, b.Title, b.Genre, b.Price, b.Availability, b.Rating, NullString(b.Description), b.ProductType,
				b.PriceExclTax, b.PriceInclTax, b.Tax, b.NumberOfReviews, b.URL, b.ImageURL)
			if err != nil {
				stmt.Close()
				return fmt.Errorf("copy book %q: %w", b.Title, err)
			}
		}
		if _, err := stmt.ExecContext(ctx); err != nil {
			stmt.Close()
			return fmt.Errorf("flush copy: %w", err)
		}
		return stmt.Close()
	})
	if err != nil {
		return 0, err
	}
	return len(books), nil
}

// Overview aggregates the whole catalog. The rating distribution is
// ordered by count, highest first.
func (s *BookStore) Overview(ctx context.Context) (*domain.StatsOverview, error) {
	overview := &domain.StatsOverview{RatingDistribution: []domain.RatingCount{}}
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*), COALESCE(ROUND(AVG(price)::numeric, 2), 0)::float8 FROM books",
	).Scan(&overview.TotalBooks, &overview.AveragePrice)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT rating, COUNT(*) AS n FROM books GROUP BY rating ORDER BY n DESC, rating")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var rc domain.RatingCount
		if err := rows.Scan(&rc.Rating, &rc.Count); err != nil {
			return nil, err
		}
		overview.RatingDistribution = append(overview.RatingDistribution, rc)
	}
	return overview, rows.Err()
}

// CategoryStats aggregates count and average price per genre
func (s *BookStore) CategoryStats(ctx context.Context) ([]domain.CategoryStats, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT genre, COUNT(*), ROUND(AVG(price)::numeric, 2)::float8
		FROM books
		GROUP BY genre
		ORDER BY genre`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := []domain.CategoryStats{}
	for rows.Next() {
		var cs domain.CategoryStats
		if err := rows.Scan(&cs.Category, &cs.TotalBooks, &cs.AveragePrice); err != nil {
			return nil, err
		}
		stats = append(stats, cs)
	}
	return stats, rows.Err()
}

func scanBook(row rowScanner) (*domain.Book, error) {
	var (
		b    domain.Book
		desc sql.NullString
	)
	err := row.Scan(
		&b.ID, &b.UPC, &b.Title, &b.Genre, &b.Price, &b.Availability, &b.Rating, &desc, &b.ProductType,
		&b.PriceExclTax, &b.PriceInclTax, &b.Tax, &b.NumberOfReviews, &b.URL, &b.ImageURL,
	)
	if err != nil {
		return nil, err
	}
	b.Description = StringPtr(desc)
	return &b, nil
}

// likePattern wraps s for a substring ILIKE, escaping its wildcards
func likePattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)
	return "%" + r.Replace(s) + "%"
}
