package driven

import (
	"context"

	"github.com/shelfwise/shelfwise-core/internal/core/domain"
)

// CatalogScraper collects books from an external catalog
type CatalogScraper interface {
	// Scrape crawls the whole catalog. Books that fail to parse are skipped
	// and counted in failed.
	Scrape(ctx context.Context) (books []*domain.Book, failed int, err error)
}
