package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shelfwise/shelfwise-core/internal/core/domain"
	"github.com/shelfwise/shelfwise-core/internal/core/ports/driven"
	"github.com/shelfwise/shelfwise-core/internal/core/ports/driving"
	"github.com/shelfwise/shelfwise-core/internal/metrics"
)

// Ensure scrapeService implements ScrapeService
var _ driving.ScrapeService = (*scrapeService)(nil)

const (
	// ScrapeLockName serialises catalog refreshes across instances
	ScrapeLockName = "catalog:scrape"

	// DefaultScrapeLockTTL bounds how long a crashed scrape can block the next
	DefaultScrapeLockTTL = 30 * time.Minute

	// Scrape messages
	MsgScraped        = "Data collected and stored successfully."
	MsgNothingScraped = "No data collected."
)

// scrapeService implements the ScrapeService interface
type scrapeService struct {
	scraper   driven.CatalogScraper
	bookStore driven.BookStore
	lock      driven.DistributedLock
	logger    *slog.Logger
	now       func() time.Time
}

// NewScrapeService creates a new ScrapeService. lock may be nil.
func NewScrapeService(scraper driven.CatalogScraper, bookStore driven.BookStore, lock driven.DistributedLock, logger *slog.Logger) driving.ScrapeService {
	if logger == nil {
		logger = slog.Default()
	}
	return &scrapeService{
		scraper:   scraper,
		bookStore: bookStore,
		lock:      lock,
		logger:    logger,
		now:       time.Now,
	}
}

// Run crawls the catalog and replaces the stored books. A crawl that
// collects nothing leaves the catalog untouched.
func (s *scrapeService) Run(ctx context.Context) (*domain.ScrapeResult, error) {
	if s.lock != nil {
		acquired, err := s.lock.Acquire(ctx, ScrapeLockName, DefaultScrapeLockTTL)
		if err != nil {
			return nil, fmt.Errorf("acquire scrape lock: %w", err)
		}
		if !acquired {
			return nil, fmt.Errorf("scrape already running: %w", domain.ErrServiceUnavailable)
		}
		defer func() {
			if err := s.lock.Release(context.WithoutCancel(ctx), ScrapeLockName); err != nil {
				s.logger.Warn("failed to release scrape lock", "error", err)
			}
		}()
	}

	start := s.now()
	result := &domain.ScrapeResult{StartedAt: start.UTC()}

	books, failed, err := s.scraper.Scrape(ctx)
	result.Failed = failed
	if err != nil {
		metrics.RecordScrape(s.now().Sub(start), 0, failed, err)
		return nil, fmt.Errorf("scrape catalog: %w", err)
	}

	if len(books) == 0 {
		result.Message = MsgNothingScraped
		result.Duration = s.now().Sub(start)
		metrics.RecordScrape(result.Duration, 0, failed, nil)
		s.logger.Warn("scrape collected no books", "failed", failed)
		return result, nil
	}

	inserted, err := s.bookStore.ReplaceAll(ctx, books)
	result.Duration = s.now().Sub(start)
	metrics.RecordScrape(result.Duration, inserted, failed, err)
	if err != nil {
		return nil, fmt.Errorf("replace catalog: %w", err)
	}

	result.Message = MsgScraped
	result.Inserted = inserted
	s.logger.Info("catalog refreshed",
		"inserted", inserted,
		"failed", failed,
		"duration", result.Duration.String(),
	)
	return result, nil
}
