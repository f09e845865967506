package artifacts

import (
	"context"
	"fmt"
	"sync"

	"github.com/shelfwise/shelfwise-core/internal/core/domain"
	"github.com/shelfwise/shelfwise-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.ArtifactStore = (*MemoryStore)(nil)

// MemoryStore keeps the current artifact set in memory. Save swaps the
// whole set under a lock.
type MemoryStore struct {
	mu    sync.RWMutex
	set   *domain.ArtifactSet
	saves int
}

// NewMemoryStore creates an empty MemoryStore
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Save(ctx context.Context, set *domain.ArtifactSet) error {
	if !set.Complete() {
		return fmt.Errorf("save artifacts: incomplete set")
	}
	cp := copySet(set)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.set = cp
	s.saves++
	return nil
}

func (s *MemoryStore) Load(ctx context.Context) (*domain.ArtifactSet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.set == nil {
		return nil, domain.ErrArtifactNotFound
	}
	return copySet(s.set), nil
}

func (s *MemoryStore) Manifest(ctx context.Context) (*domain.ArtifactManifest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.set == nil {
		return nil, domain.ErrArtifactNotFound
	}
	m := s.set.Manifest
	return &m, nil
}

// Saves returns how many sets have been written
func (s *MemoryStore) Saves() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.saves
}

func copySet(set *domain.ArtifactSet) *domain.ArtifactSet {
	cp := &domain.ArtifactSet{Manifest: set.Manifest, Blobs: make(map[string][]byte, len(set.Blobs))}
	for name, blob := range set.Blobs {
		cp.Blobs[name] = append([]byte(nil), blob...)
	}
	return cp
}
