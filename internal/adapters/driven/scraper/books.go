// Package scraper collects the catalog from books.toscrape.com.
package scraper

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/shelfwise/shelfwise-core/internal/core/domain"
	"github.com/shelfwise/shelfwise-core/internal/core/ports/driven"
	"github.com/shelfwise/shelfwise-core/internal/metrics"
)

// Verify interface compliance
var _ driven.CatalogScraper = (*BooksToScrape)(nil)

// DefaultBaseURL is the public catalog
const DefaultBaseURL = "http://books.toscrape.com/"

// maxPagesPerCategory bounds pagination if a site keeps linking "next"
const maxPagesPerCategory = 1000

// Config tunes the scraper
type Config struct {
	BaseURL string

	// RequestsPerSecond caps the request rate. Zero means unlimited.
	RequestsPerSecond float64

	// Timeout applies to each request.
	Timeout time.Duration

	// FailureThreshold opens the breaker after that many consecutive
	// request failures; while open, requests fail fast for BreakerTimeout.
	FailureThreshold uint32
	BreakerTimeout   time.Duration
}

// DefaultConfig returns polite defaults for the public site
func DefaultConfig() Config {
	return Config{
		BaseURL:           DefaultBaseURL,
		RequestsPerSecond: 5,
		Timeout:           15 * time.Second,
		FailureThreshold:  5,
		BreakerTimeout:    30 * time.Second,
	}
}

// BooksToScrape crawls every category of the catalog, follows pagination
// and parses each detail page. A book that cannot be fetched or parsed is
// logged, counted as failed and skipped.
type BooksToScrape struct {
	base    *url.URL
	client  *http.Client
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker[[]byte]
	logger  *slog.Logger
}

// New creates a scraper. client may be nil.
func New(cfg Config, client *http.Client, logger *slog.Logger) (*BooksToScrape, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	if logger == nil {
		logger = slog.Default()
	}

	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	threshold := cfg.FailureThreshold
	if threshold == 0 {
		threshold = 5
	}

	s := &BooksToScrape{
		base:    base,
		client:  client,
		limiter: rate.NewLimiter(limit, 1),
		logger:  logger,
	}
	s.breaker = gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:    "books-to-scrape",
		Timeout: cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("scraper circuit breaker", "name", name, "from", from.String(), "to", to.String())
			metrics.RecordBreakerTransition(name, from.String(), to.String(), int(to))
		},
	})
	return s, nil
}

// Scrape collects every book of the catalog. It fails only when the
// category index cannot be read; category and book errors are counted.
func (s *BooksToScrape) Scrape(ctx context.Context) ([]*domain.Book, int, error) {
	home := s.base.ResolveReference(&url.URL{Path: "index.html"})
	body, err := s.fetch(ctx, home.String())
	if err != nil {
		return nil, 0, fmt.Errorf("fetch category index: %w", err)
	}
	cats, err := parseCategories(bytes.NewReader(body))
	if err != nil {
		return nil, 0, fmt.Errorf("parse category index: %w", err)
	}
	s.logger.Info("scraping catalog", "categories", len(cats))

	var (
		books  []*domain.Book
		failed int
	)
	for _, cat := range cats {
		if err := ctx.Err(); err != nil {
			return books, failed, err
		}
		catURL, err := home.Parse(cat.Href)
		if err != nil {
			failed++
			continue
		}
		got, n := s.scrapeCategory(ctx, cat.Name, catURL)
		books = append(books, got...)
		failed += n
	}
	return books, failed, nil
}

func (s *BooksToScrape) scrapeCategory(ctx context.Context, genre string, page *url.URL) ([]*domain.Book, int) {
	var (
		books  []*domain.Book
		failed int
	)
	for n := 1; page != nil && n <= maxPagesPerCategory; n++ {
		if ctx.Err() != nil {
			break
		}
		s.logger.Debug("scraping category page", "genre", genre, "page", n)

		body, err := s.fetch(ctx, page.String())
		if err != nil {
			s.logger.Error("fetch category page", "genre", genre, "url", page.String(), "error", err)
			break
		}
		list, err := parseListing(bytes.NewReader(body))
		if err != nil {
			s.logger.Error("parse category page", "genre", genre, "url", page.String(), "error", err)
			break
		}

		for _, href := range list.Books {
			bookURL, err := page.Parse(href)
			if err != nil {
				failed++
				continue
			}
			book, err := s.scrapeBook(ctx, genre, bookURL)
			if err != nil {
				s.logger.Warn("skipping book", "url", bookURL.String(), "error", err)
				failed++
				continue
			}
			books = append(books, book)
		}

		var next *url.URL
		if list.Next != "" {
			if u, err := page.Parse(list.Next); err == nil {
				next = u
			}
		}
		page = next
	}
	return books, failed
}

func (s *BooksToScrape) scrapeBook(ctx context.Context, genre string, u *url.URL) (*domain.Book, error) {
	body, err := s.fetch(ctx, u.String())
	if err != nil {
		return nil, err
	}
	d, err := parseDetail(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	book := &domain.Book{
		UPC:             d.UPC,
		Title:           d.Title,
		Genre:           genre,
		Price:           d.Price,
		Availability:    d.Availability,
		Rating:          d.Rating,
		Description:     d.Description,
		ProductType:     d.ProductType,
		PriceExclTax:    d.PriceExclTax,
		PriceInclTax:    d.PriceInclTax,
		Tax:             d.Tax,
		NumberOfReviews: d.Reviews,
		URL:             u.String(),
	}
	if d.Image != "" {
		if img, err := u.Parse(d.Image); err == nil {
			book.ImageURL = img.String()
		}
	}
	return book, nil
}

// errStatus marks a non-200 response
var errStatus = errors.New("unexpected status")

// fetch GETs rawURL through the rate limiter and circuit breaker
func (s *BooksToScrape) fetch(ctx context.Context, rawURL string) ([]byte, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return s.breaker.Execute(func() ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", "shelfwise-core scraper")

		resp, err := s.client.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("GET %s: %d: %w", rawURL, resp.StatusCode, errStatus)
		}
		return io.ReadAll(resp.Body)
	})
}

// BreakerState reports the circuit breaker state for health output
func (s *BooksToScrape) BreakerState() string {
	return s.breaker.State().String()
}
