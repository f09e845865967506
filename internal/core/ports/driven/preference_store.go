package driven

import (
	"context"

	"github.com/shelfwise/shelfwise-core/internal/core/domain"
)

// PreferenceStore persists recommendation history (PostgreSQL)
type PreferenceStore interface {
	// SaveBatch stores every preference atomically
	SaveBatch(ctx context.Context, prefs []*domain.Preference) error

	// ListByUser returns a user's history joined with the recommended
	// books, highest similarity first
	ListByUser(ctx context.Context, userID string) ([]*domain.PreferenceView, error)
}
