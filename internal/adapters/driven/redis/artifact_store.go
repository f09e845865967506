package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/shelfwise/shelfwise-core/internal/core/domain"
	"github.com/shelfwise/shelfwise-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.ArtifactStore = (*ArtifactStore)(nil)

// retiredGenerationTTL keeps a replaced generation readable for callers that
// resolved the pointer just before a swap.
const retiredGenerationTTL = 10 * time.Minute

// ArtifactStore keeps artifact generations in Redis for multi-instance
// deployments. Each generation is written under its own keys in one
// MULTI/EXEC together with the pointer to it, and read back with a single
// MGET, so a reader sees one whole generation.
type ArtifactStore struct {
	client *redis.Client
	keys   keyspace
}

// NewArtifactStore creates a Redis-backed ArtifactStore
func NewArtifactStore(client *redis.Client) *ArtifactStore {
	return &ArtifactStore{client: client, keys: keyspace(DefaultNamespace + ":artifacts")}
}

func (s *ArtifactStore) currentKey() string { return s.keys.key("current") }

func (s *ArtifactStore) blobKey(gen, name string) string { return s.keys.key(gen, name) }

func (s *ArtifactStore) generationKeys(gen string) []string {
	keys := []string{s.blobKey(gen, "manifest")}
	for _, name := range domain.ArtifactNames {
		keys = append(keys, s.blobKey(gen, name))
	}
	return keys
}

// Save publishes set as the current generation
func (s *ArtifactStore) Save(ctx context.Context, set *domain.ArtifactSet) error {
	if !set.Complete() {
		return fmt.Errorf("save artifacts: incomplete set")
	}
	gen := set.Manifest.Generation
	manifest, err := json.Marshal(set.Manifest)
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}

	previous, err := s.client.Get(ctx, s.currentKey()).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("read current generation: %w", err)
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.blobKey(gen, "manifest"), manifest, 0)
		for _, name := range domain.ArtifactNames {
			pipe.Set(ctx, s.blobKey(gen, name), set.Blobs[name], 0)
		}
		pipe.Set(ctx, s.currentKey(), gen, 0)
		if previous != "" && previous != gen {
			for _, key := range s.generationKeys(previous) {
				pipe.Expire(ctx, key, retiredGenerationTTL)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("save artifacts: %w", err)
	}
	return nil
}

// Load reads the current generation
func (s *ArtifactStore) Load(ctx context.Context) (*domain.ArtifactSet, error) {
	gen, err := s.current(ctx)
	if err != nil {
		return nil, err
	}

	values, err := s.client.MGet(ctx, s.generationKeys(gen)...).Result()
	if err != nil {
		return nil, fmt.Errorf("load artifacts: %w", err)
	}

	manifest, err := decodeManifest(values[0])
	if err != nil {
		return nil, err
	}
	set := &domain.ArtifactSet{Manifest: *manifest, Blobs: make(map[string][]byte, len(domain.ArtifactNames))}
	for i, name := range domain.ArtifactNames {
		v, ok := values[i+1].(string)
		if !ok {
			return nil, fmt.Errorf("%s missing: %w", name, domain.ErrArtifactNotFound)
		}
		set.Blobs[name] = []byte(v)
	}
	return set, nil
}

// Manifest reads the manifest of the current generation
func (s *ArtifactStore) Manifest(ctx context.Context) (*domain.ArtifactManifest, error) {
	gen, err := s.current(ctx)
	if err != nil {
		return nil, err
	}
	v, err := s.client.Get(ctx, s.blobKey(gen, "manifest")).Result()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("manifest missing: %w", domain.ErrArtifactNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load manifest: %w", err)
	}
	return decodeManifest(v)
}

func (s *ArtifactStore) current(ctx context.Context) (string, error) {
	gen, err := s.client.Get(ctx, s.currentKey()).Result()
	if errors.Is(err, redis.Nil) {
		return "", domain.ErrArtifactNotFound
	}
	if err != nil {
		return "", fmt.Errorf("read current generation: %w", err)
	}
	return gen, nil
}

func decodeManifest(v interface{}) (*domain.ArtifactManifest, error) {
	s, ok := v.(string)
	if !ok {
		return nil, fmt.Errorf("manifest missing: %w", domain.ErrArtifactNotFound)
	}
	var m domain.ArtifactManifest
	if err := json.Unmarshal([]byte(s), &m); err != nil {
		return nil, fmt.Errorf("decode manifest: %v: %w", err, domain.ErrArtifactMismatch)
	}
	return &m, nil
}
