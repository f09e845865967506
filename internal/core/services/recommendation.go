package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/shelfwise/shelfwise-core/internal/core/domain"
	"github.com/shelfwise/shelfwise-core/internal/core/ports/driven"
	"github.com/shelfwise/shelfwise-core/internal/core/ports/driving"
	"github.com/shelfwise/shelfwise-core/internal/metrics"
	"github.com/shelfwise/shelfwise-core/internal/recommender"
)

// Ensure recommendationService implements RecommendationService
var _ driving.RecommendationService = (*recommendationService)(nil)

const (
	// TrainLockName serialises training runs across instances
	TrainLockName = "recommender:train"

	// DefaultTrainLockTTL bounds how long a crashed run can block training
	DefaultTrainLockTTL = 10 * time.Minute

	// DefaultCacheTTL is the lifetime of a cached recommendation list
	DefaultCacheTTL = time.Hour

	// Training messages
	MsgTrained = "Training data ready. Model artifacts saved."
	MsgNoData  = "No data found in the catalog for training."
)

// RecommendationConfig tunes the recommendation service
type RecommendationConfig struct {
	// TopN caps every result list. Zero means recommender.DefaultTopN.
	TopN int

	// ExcludeSelfByIndex drops the query row itself instead of the top
	// ranked entry.
	ExcludeSelfByIndex bool

	// HistoryRequired fails a prediction whose history cannot be recorded.
	// When false the failure is logged and the recommendations returned.
	HistoryRequired bool

	// CacheTTL is the lifetime of cached results. Zero means DefaultCacheTTL.
	CacheTTL time.Duration

	// VerifyInterval is how long a successful corpus fingerprint check is
	// trusted before the live feed is read again. Zero checks every query.
	VerifyInterval time.Duration

	// LockTTL bounds a training run's lock. Zero means DefaultTrainLockTTL.
	LockTTL time.Duration
}

// DefaultRecommendationConfig returns the production defaults
func DefaultRecommendationConfig() RecommendationConfig {
	return RecommendationConfig{
		TopN:            recommender.DefaultTopN,
		HistoryRequired: true,
		CacheTTL:        DefaultCacheTTL,
		VerifyInterval:  30 * time.Second,
		LockTTL:         DefaultTrainLockTTL,
	}
}

// RecommendationDeps groups the stores the recommendation service uses.
// Cache and Lock are optional.
type RecommendationDeps struct {
	Books       driven.BookStore
	Preferences driven.PreferenceStore
	Artifacts   driven.ArtifactStore
	Cache       driven.RecommendationCache
	Lock        driven.DistributedLock
}

// loadedModel is a decoded artifact generation held in memory
type loadedModel struct {
	model *recommender.Model

	// verifiedAt is the unix nano time of the last matching fingerprint check
	verifiedAt atomic.Int64
}

// recommendationService implements the RecommendationService interface
type recommendationService struct {
	deps   RecommendationDeps
	cfg    RecommendationConfig
	logger *slog.Logger

	current atomic.Pointer[loadedModel]
	loadMu  sync.Mutex

	// trainMu serialises runs inside this process; the distributed lock
	// covers other instances.
	trainMu sync.Mutex

	now           func() time.Time
	newGeneration func(time.Time) string
}

// NewRecommendationService creates a new RecommendationService
func NewRecommendationService(deps RecommendationDeps, cfg RecommendationConfig, logger *slog.Logger) driving.RecommendationService {
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = DefaultCacheTTL
	}
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = DefaultTrainLockTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &recommendationService{
		deps:          deps,
		cfg:           cfg,
		logger:        logger,
		now:           time.Now,
		newGeneration: generationSource(rand.Reader),
	}
}

// generationSource returns a monotonic ULID generator. Generations sort by
// creation time, which keeps the artifact directories in training order.
func generationSource(r io.Reader) func(time.Time) string {
	var mu sync.Mutex
	entropy := ulid.Monotonic(r, 0)
	return func(t time.Time) string {
		mu.Lock()
		defer mu.Unlock()
		return ulid.MustNew(ulid.Timestamp(t), entropy).String()
	}
}

// Train rebuilds every artifact from the current catalog
func (s *recommendationService) Train(ctx context.Context) (*domain.TrainingResult, error) {
	start := s.now()
	result, err := s.train(ctx)
	rows := 0
	if result != nil {
		rows = result.TotalRecords
	}
	metrics.RecordTraining(s.now().Sub(start), rows, err)
	return result, err
}

func (s *recommendationService) train(ctx context.Context) (*domain.TrainingResult, error) {
	if !s.trainMu.TryLock() {
		return nil, domain.ErrTrainingInProgress
	}
	defer s.trainMu.Unlock()

	if s.deps.Lock != nil {
		acquired, err := s.deps.Lock.Acquire(ctx, TrainLockName, s.cfg.LockTTL)
		if err != nil {
			return nil, fmt.Errorf("acquire training lock: %w", err)
		}
		if !acquired {
			return nil, domain.ErrTrainingInProgress
		}
		defer func() {
			if err := s.deps.Lock.Release(context.WithoutCancel(ctx), TrainLockName); err != nil {
				s.logger.Warn("failed to release training lock", "error", err)
			}
		}()
	}

	docs, err := s.deps.Books.ListCorpus(ctx)
	if err != nil {
		return nil, fmt.Errorf("list corpus: %w", err)
	}

	model, err := recommender.Train(docs)
	if errors.Is(err, domain.ErrEmptyCorpus) {
		s.logger.Info("training skipped, no usable descriptions", "documents", len(docs))
		return &domain.TrainingResult{Message: MsgNoData}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("train model: %w", err)
	}

	trainedAt := s.now()
	model.Stamp(s.newGeneration(trainedAt), trainedAt)

	set, err := recommender.Encode(model)
	if err != nil {
		return nil, err
	}
	if err := s.deps.Artifacts.Save(ctx, set); err != nil {
		return nil, fmt.Errorf("save artifacts: %w", err)
	}

	loaded := &loadedModel{model: model}
	loaded.verifiedAt.Store(trainedAt.UnixNano())
	s.current.Store(loaded)

	s.logger.Info("recommender trained",
		"generation", model.Manifest.Generation,
		"documents", len(docs),
		"rows", model.Manifest.Rows,
		"terms", model.Manifest.Terms,
	)

	return &domain.TrainingResult{
		Message:      MsgTrained,
		TotalRecords: len(model.Records),
		Generation:   model.Manifest.Generation,
		TrainingData: model.Records,
	}, nil
}

// Predict returns the books most similar to req.Title
func (s *recommendationService) Predict(ctx context.Context, caller *domain.AuthContext, req domain.PredictRequest) ([]domain.Recommendation, error) {
	start := s.now()
	recs, err := s.predict(ctx, caller, req)
	metrics.RecordPrediction(s.now().Sub(start), err)
	return recs, err
}

func (s *recommendationService) predict(ctx context.Context, caller *domain.AuthContext, req domain.PredictRequest) ([]domain.Recommendation, error) {
	if strings.TrimSpace(req.Title) == "" {
		return nil, fmt.Errorf("title is required: %w", domain.ErrInvalidInput)
	}

	loaded, err := s.model(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.verify(ctx, loaded); err != nil {
		return nil, err
	}
	model := loaded.model
	gen := model.Manifest.Generation

	recs, hit := s.cached(ctx, gen, req.Title)
	if !hit {
		recs, err = model.Recommend(req.Title, recommender.Options{
			TopN:               s.cfg.TopN,
			ExcludeSelfByIndex: s.cfg.ExcludeSelfByIndex,
		})
		if err != nil {
			return nil, err
		}
		if s.deps.Cache != nil {
			if err := s.deps.Cache.Set(ctx, gen, req.Title, recs, s.cfg.CacheTTL); err != nil {
				s.logger.Warn("failed to cache recommendations", "title", req.Title, "error", err)
			}
		}
	}

	if err := s.record(ctx, caller, model, req.Title, recs); err != nil {
		if s.cfg.HistoryRequired {
			return nil, fmt.Errorf("%w: record history: %v", domain.ErrInternal, err)
		}
		s.logger.Warn("failed to record recommendation history", "title", req.Title, "error", err)
	}
	return recs, nil
}

// model returns the decoded artifact set matching the stored manifest,
// reloading it when another instance has trained a newer generation.
func (s *recommendationService) model(ctx context.Context) (*loadedModel, error) {
	manifest, err := s.deps.Artifacts.Manifest(ctx)
	if err != nil {
		return nil, err
	}
	if cur := s.current.Load(); cur != nil && cur.model.Manifest.Generation == manifest.Generation {
		return cur, nil
	}

	s.loadMu.Lock()
	defer s.loadMu.Unlock()
	if cur := s.current.Load(); cur != nil && cur.model.Manifest.Generation == manifest.Generation {
		return cur, nil
	}

	set, err := s.deps.Artifacts.Load(ctx)
	if err != nil {
		return nil, err
	}
	model, err := recommender.Decode(set)
	if err != nil {
		return nil, err
	}
	loaded := &loadedModel{model: model}
	s.current.Store(loaded)
	metrics.TrainingCorpusRows.Set(float64(model.Manifest.Rows))
	s.logger.Info("recommender artifacts loaded", "generation", model.Manifest.Generation, "rows", model.Manifest.Rows)
	return loaded, nil
}

// verify compares the model fingerprint with the live catalog. A catalog
// changed since training yields domain.ErrArtifactMismatch until the next
// training run.
func (s *recommendationService) verify(ctx context.Context, loaded *loadedModel) error {
	now := s.now()
	if s.cfg.VerifyInterval > 0 {
		last := loaded.verifiedAt.Load()
		if last != 0 && now.Sub(time.Unix(0, last)) < s.cfg.VerifyInterval {
			return nil
		}
	}

	docs, err := s.deps.Books.ListCorpus(ctx)
	if err != nil {
		return fmt.Errorf("list corpus: %w", err)
	}
	live := recommender.CorpusFingerprint(docs)
	if want := loaded.model.Manifest.Fingerprint; live != want {
		loaded.verifiedAt.Store(0)
		return fmt.Errorf("catalog fingerprint %s, artifacts %s: %w", live, want, domain.ErrArtifactMismatch)
	}
	loaded.verifiedAt.Store(now.UnixNano())
	return nil
}

func (s *recommendationService) cached(ctx context.Context, gen, title string) ([]domain.Recommendation, bool) {
	if s.deps.Cache == nil {
		return nil, false
	}
	recs, ok, err := s.deps.Cache.Get(ctx, gen, title)
	if err != nil {
		s.logger.Warn("recommendation cache lookup failed", "title", title, "error", err)
		return nil, false
	}
	metrics.RecordCacheLookup(ok)
	return recs, ok
}

// record stores one history row per recommendation
func (s *recommendationService) record(ctx context.Context, caller *domain.AuthContext, model *recommender.Model, title string, recs []domain.Recommendation) error {
	if caller == nil || len(recs) == 0 || s.deps.Preferences == nil {
		return nil
	}

	var inputID *int64
	if row, ok := model.Row(title); ok {
		id := row.ID
		inputID = &id
	}

	now := s.now()
	prefs := make([]*domain.Preference, len(recs))
	for i, rec := range recs {
		prefs[i] = &domain.Preference{
			UserID:               caller.UserID,
			InputBookTitle:       title,
			InputBookID:          inputID,
			RecommendedBookID:    rec.ID,
			RecommendedBookTitle: rec.Title,
			SimilarityScore:      rec.SimilarityScore,
			CreatedAt:            now,
		}
	}
	return s.deps.Preferences.SaveBatch(ctx, prefs)
}

// History returns the recorded recommendations of userID
func (s *recommendationService) History(ctx context.Context, caller *domain.AuthContext, userID string) ([]*domain.PreferenceView, error) {
	if caller == nil {
		return nil, domain.ErrUnauthorized
	}
	if strings.TrimSpace(userID) == "" {
		return nil, domain.ErrInvalidInput
	}
	if !caller.CanAccessUser(userID) {
		return nil, domain.ErrForbidden
	}

	views, err := s.deps.Preferences.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	if len(views) == 0 {
		return nil, domain.ErrNotFound
	}
	return views, nil
}

// Status returns the manifest of the artifacts in use
func (s *recommendationService) Status(ctx context.Context) (*domain.ArtifactManifest, error) {
	return s.deps.Artifacts.Manifest(ctx)
}
