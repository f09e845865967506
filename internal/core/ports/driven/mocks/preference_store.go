package mocks

import (
	"context"
	"sort"
	"sync"

	"github.com/shelfwise/shelfwise-core/internal/core/domain"
)

// MockPreferenceStore is an in-memory PreferenceStore for testing.
// Views are resolved against Books when set.
type MockPreferenceStore struct {
	mu    sync.Mutex
	prefs []*domain.Preference

	Books   *MockBookStore
	SaveErr error
}

// NewMockPreferenceStore creates a new MockPreferenceStore
func NewMockPreferenceStore(books *MockBookStore) *MockPreferenceStore {
	return &MockPreferenceStore{Books: books}
}

func (m *MockPreferenceStore) SaveBatch(ctx context.Context, prefs []*domain.Preference) error {
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range prefs {
		p.ID = int64(len(m.prefs) + 1)
		m.prefs = append(m.prefs, p)
	}
	return nil
}

func (m *MockPreferenceStore) ListByUser(ctx context.Context, userID string) ([]*domain.PreferenceView, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var views []*domain.PreferenceView
	for _, p := range m.prefs {
		if p.UserID != userID {
			continue
		}
		view := &domain.PreferenceView{
			ID:              p.RecommendedBookID,
			Title:           p.RecommendedBookTitle,
			SimilarityScore: p.SimilarityScore,
		}
		if m.Books != nil {
			if b, err := m.Books.Get(ctx, p.RecommendedBookID); err == nil {
				view.Price, view.Rating, view.ImageURL = b.Price, b.Rating, b.ImageURL
			}
		}
		views = append(views, view)
	}
	sort.SliceStable(views, func(i, j int) bool { return views[i].SimilarityScore > views[j].SimilarityScore })
	return views, nil
}

// All returns every stored preference
func (m *MockPreferenceStore) All() []*domain.Preference {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*domain.Preference(nil), m.prefs...)
}
