package driving

import (
	"context"

	"github.com/shelfwise/shelfwise-core/internal/core/domain"
)

// RecommendationService trains and queries the content-based recommender
type RecommendationService interface {
	// Train rebuilds every artifact from the current catalog. An empty or
	// textless catalog yields a result with zero records and no artifacts.
	Train(ctx context.Context) (*domain.TrainingResult, error)

	// Predict returns the books most similar to req.Title and records them
	// in the caller's history.
	Predict(ctx context.Context, caller *domain.AuthContext, req domain.PredictRequest) ([]domain.Recommendation, error)

	// History returns the recorded recommendations of userID
	History(ctx context.Context, caller *domain.AuthContext, userID string) ([]*domain.PreferenceView, error)

	// Status returns the manifest of the artifacts in use
	Status(ctx context.Context) (*domain.ArtifactManifest, error)
}
