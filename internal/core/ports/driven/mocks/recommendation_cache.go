package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/shelfwise/shelfwise-core/internal/core/domain"
)

// MockRecommendationCache is an in-memory RecommendationCache for testing
type MockRecommendationCache struct {
	mu      sync.Mutex
	entries map[string][]domain.Recommendation
	Hits    int
}

// NewMockRecommendationCache creates a new MockRecommendationCache
func NewMockRecommendationCache() *MockRecommendationCache {
	return &MockRecommendationCache{entries: make(map[string][]domain.Recommendation)}
}

func (m *MockRecommendationCache) Get(ctx context.Context, generation, title string) ([]domain.Recommendation, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	recs, ok := m.entries[generation+"|"+title]
	if ok {
		m.Hits++
	}
	return recs, ok, nil
}

func (m *MockRecommendationCache) Set(ctx context.Context, generation, title string, recs []domain.Recommendation, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[generation+"|"+title] = recs
	return nil
}
