package driven

import (
	"context"

	"github.com/shelfwise/shelfwise-core/internal/core/domain"
)

// ArtifactStore persists the trained recommendation artifacts.
//
// A set is always written and read as a unit. Save replaces the previous
// set atomically: a concurrent Load observes either the old set or the new
// one, never a mix. There is no versioning or rollback.
type ArtifactStore interface {
	// Save replaces the current artifact set
	Save(ctx context.Context, set *domain.ArtifactSet) error

	// Load returns the current set, or domain.ErrArtifactNotFound when no
	// complete set exists
	Load(ctx context.Context) (*domain.ArtifactSet, error)

	// Manifest returns the current manifest without reading the blobs
	Manifest(ctx context.Context) (*domain.ArtifactManifest, error)
}
