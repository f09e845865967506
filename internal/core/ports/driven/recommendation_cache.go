package driven

import (
	"context"
	"time"

	"github.com/shelfwise/shelfwise-core/internal/core/domain"
)

// RecommendationCache memoizes prediction results (Redis).
// Entries are keyed by artifact generation so a retrain never serves stale results.
type RecommendationCache interface {
	Get(ctx context.Context, generation, title string) ([]domain.Recommendation, bool, error)
	Set(ctx context.Context, generation, title string, recs []domain.Recommendation, ttl time.Duration) error
}
