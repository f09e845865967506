package mocks

import (
	"context"
	"sync"

	"github.com/shelfwise/shelfwise-core/internal/core/domain"
)

// MockArtifactStore keeps one artifact set in memory. SaveErr and LoadErr
// inject failures; Loads counts Load calls.
type MockArtifactStore struct {
	mu  sync.Mutex
	set *domain.ArtifactSet

	SaveErr error
	LoadErr error
	Loads   int
	Saves   int
}

// NewMockArtifactStore creates an empty MockArtifactStore
func NewMockArtifactStore() *MockArtifactStore {
	return &MockArtifactStore{}
}

func (m *MockArtifactStore) Save(ctx context.Context, set *domain.ArtifactSet) error {
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.set = set
	m.Saves++
	return nil
}

func (m *MockArtifactStore) Load(ctx context.Context) (*domain.ArtifactSet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Loads++
	if m.LoadErr != nil {
		return nil, m.LoadErr
	}
	if m.set == nil {
		return nil, domain.ErrArtifactNotFound
	}
	return m.set, nil
}

func (m *MockArtifactStore) Manifest(ctx context.Context) (*domain.ArtifactManifest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.LoadErr != nil {
		return nil, m.LoadErr
	}
	if m.set == nil {
		return nil, domain.ErrArtifactNotFound
	}
	manifest := m.set.Manifest
	return &manifest, nil
}

// Put replaces the stored set directly
func (m *MockArtifactStore) Put(set *domain.ArtifactSet) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.set = set
}
