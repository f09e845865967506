package mocks

import (
	"context"
	"math"
	"sort"
	"strings"
	"sync"

	"github.com/shelfwise/shelfwise-core/internal/core/domain"
)

// MockBookStore is an in-memory BookStore for testing
type MockBookStore struct {
	mu    sync.RWMutex
	books []*domain.Book

	// Err, when set, is returned by every read
	Err error
}

// NewMockBookStore creates a MockBookStore holding books, assigning IDs
// to books that have none
func NewMockBookStore(books ...*domain.Book) *MockBookStore {
	m := &MockBookStore{}
	m.set(books)
	return m
}

func (m *MockBookStore) set(books []*domain.Book) {
	m.books = make([]*domain.Book, len(books))
	for i, b := range books {
		cp := *b
		if cp.ID == 0 {
			cp.ID = int64(i + 1)
		}
		m.books[i] = &cp
	}
}

func (m *MockBookStore) ListCorpus(ctx context.Context) ([]domain.CorpusDocument, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	docs := make([]domain.CorpusDocument, len(m.books))
	for i, b := range m.books {
		docs[i] = domain.CorpusDocument{ID: b.ID, Title: b.Title, Description: b.Description}
	}
	return docs, nil
}

func (m *MockBookStore) Get(ctx context.Context, id int64) (*domain.Book, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, b := range m.books {
		if b.ID == id {
			return b, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *MockBookStore) GetByTitle(ctx context.Context, title string) (*domain.Book, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, b := range m.books {
		if b.Title == title {
			return b, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *MockBookStore) distinct(field func(*domain.Book) string) ([]string, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	seen := make(map[string]bool)
	var out []string
	for _, b := range m.books {
		v := field(b)
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (m *MockBookStore) ListTitles(ctx context.Context) ([]string, error) {
	return m.distinct(func(b *domain.Book) string { return b.Title })
}

func (m *MockBookStore) ListCategories(ctx context.Context) ([]string, error) {
	return m.distinct(func(b *domain.Book) string { return b.Genre })
}

func (m *MockBookStore) filter(keep func(*domain.Book) bool, less func(a, b *domain.Book) bool) ([]*domain.Book, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.Book
	for _, b := range m.books {
		if keep(b) {
			out = append(out, b)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out, nil
}

func (m *MockBookStore) Search(ctx context.Context, f domain.BookSearch) ([]*domain.Book, error) {
	title, category := strings.ToLower(f.Title), strings.ToLower(f.Category)
	return m.filter(func(b *domain.Book) bool {
		return (title != "" && strings.Contains(strings.ToLower(b.Title), title)) ||
			(category != "" && strings.Contains(strings.ToLower(b.Genre), category))
	}, func(a, b *domain.Book) bool { return a.Title < b.Title })
}

func (m *MockBookStore) ListByPriceRange(ctx context.Context, r domain.PriceRange) ([]*domain.Book, error) {
	return m.filter(func(b *domain.Book) bool {
		return b.Price >= r.Min && b.Price <= r.Max
	}, func(a, b *domain.Book) bool { return a.Price < b.Price })
}

func (m *MockBookStore) ListTopRated(ctx context.Context, limit int) ([]*domain.Book, error) {
	out, err := m.filter(func(*domain.Book) bool { return true }, func(a, b *domain.Book) bool {
		ra, rb := domain.RatingValue(a.Rating), domain.RatingValue(b.Rating)
		if ra != rb {
			return ra > rb
		}
		return a.Title < b.Title
	})
	if err != nil {
		return nil, err
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *MockBookStore) ReplaceAll(ctx context.Context, books []*domain.Book) (int, error) {
	if m.Err != nil {
		return 0, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.books = make([]*domain.Book, len(books))
	for i, b := range books {
		cp := *b
		cp.ID = int64(i + 1)
		m.books[i] = &cp
	}
	return len(books), nil
}

func (m *MockBookStore) Overview(ctx context.Context) (*domain.StatsOverview, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	overview := &domain.StatsOverview{TotalBooks: len(m.books)}
	counts := make(map[string]int)
	var sum float64
	for _, b := range m.books {
		sum += b.Price
		counts[b.Rating]++
	}
	if len(m.books) > 0 {
		overview.AveragePrice = math.Round(sum/float64(len(m.books))*100) / 100
	}
	for rating, count := range counts {
		overview.RatingDistribution = append(overview.RatingDistribution, domain.RatingCount{Rating: rating, Count: count})
	}
	sort.Slice(overview.RatingDistribution, func(i, j int) bool {
		a, b := overview.RatingDistribution[i], overview.RatingDistribution[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return a.Rating < b.Rating
	})
	return overview, nil
}

func (m *MockBookStore) CategoryStats(ctx context.Context) ([]domain.CategoryStats, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	byGenre := make(map[string]*domain.CategoryStats)
	for _, b := range m.books {
		s, ok := byGenre[b.Genre]
		if !ok {
			s = &domain.CategoryStats{Category: b.Genre}
			byGenre[b.Genre] = s
		}
		s.TotalBooks++
		s.AveragePrice += b.Price
	}
	out := make([]domain.CategoryStats, 0, len(byGenre))
	for _, s := range byGenre {
		s.AveragePrice = math.Round(s.AveragePrice/float64(s.TotalBooks)*100) / 100
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Category < out[j].Category })
	return out, nil
}
