package mocks

import (
	"context"
	"sync"

	"github.com/shelfwise/shelfwise-core/internal/core/domain"
)

// MockCatalogScraper returns a fixed set of books
type MockCatalogScraper struct {
	Books  []*domain.Book
	Failed int
	Err    error
	Calls  int
}

func (m *MockCatalogScraper) Scrape(ctx context.Context) ([]*domain.Book, int, error) {
	m.Calls++
	return m.Books, m.Failed, m.Err
}

// MockAccessLogStore records entries in memory
type MockAccessLogStore struct {
	mu      sync.Mutex
	Entries []*domain.AccessLogEntry
	Err     error
}

func (m *MockAccessLogStore) Record(ctx context.Context, entry *domain.AccessLogEntry) error {
	if m.Err != nil {
		return m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Entries = append(m.Entries, entry)
	return nil
}

// Len returns the number of recorded entries
func (m *MockAccessLogStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Entries)
}
