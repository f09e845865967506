package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelfwise/shelfwise-core/internal/core/domain"
)

func testArtifactSet(gen string) *domain.ArtifactSet {
	return &domain.ArtifactSet{
		Manifest: domain.ArtifactManifest{
			Generation:  gen,
			Fingerprint: "3:f00",
			Rows:        3,
			Terms:       7,
			TrainedAt:   time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		},
		Blobs: map[string][]byte{
			domain.ArtifactVectorizer: []byte("vec-" + gen),
			domain.ArtifactSimilarity: {0, 1, 2, 0xff},
			domain.ArtifactTitleIndex: []byte("idx-" + gen),
		},
	}
}

func TestArtifactStore_Empty(t *testing.T) {
	client, _ := setupTestRedis(t)
	store := NewArtifactStore(client)

	_, err := store.Load(context.Background())
	assert.ErrorIs(t, err, domain.ErrArtifactNotFound)
	_, err = store.Manifest(context.Background())
	assert.ErrorIs(t, err, domain.ErrArtifactNotFound)
}

func TestArtifactStore_SaveAndLoad(t *testing.T) {
	ctx := context.Background()
	client, _ := setupTestRedis(t)
	store := NewArtifactStore(client)

	want := testArtifactSet("01A")
	require.NoError(t, store.Save(ctx, want))

	got, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, want.Manifest, got.Manifest)
	assert.Equal(t, want.Blobs, got.Blobs)

	m, err := store.Manifest(ctx)
	require.NoError(t, err)
	assert.Equal(t, "01A", m.Generation)
}

func TestArtifactStore_SwapRetiresPrevious(t *testing.T) {
	ctx := context.Background()
	client, mr := setupTestRedis(t)
	store := NewArtifactStore(client)

	require.NoError(t, store.Save(ctx, testArtifactSet("01A")))
	require.NoError(t, store.Save(ctx, testArtifactSet("01B")))

	got, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "01B", got.Manifest.Generation)

	assert.Equal(t, retiredGenerationTTL, mr.TTL("shelfwise:artifacts:01A:"+domain.ArtifactSimilarity))
	assert.Zero(t, mr.TTL("shelfwise:artifacts:01B:"+domain.ArtifactSimilarity))

	mr.FastForward(retiredGenerationTTL + time.Second)
	assert.False(t, mr.Exists("shelfwise:artifacts:01A:manifest"))
	_, err = store.Load(ctx)
	assert.NoError(t, err)
}

func TestArtifactStore_MissingBlob(t *testing.T) {
	ctx := context.Background()
	client, mr := setupTestRedis(t)
	store := NewArtifactStore(client)
	require.NoError(t, store.Save(ctx, testArtifactSet("01A")))

	mr.Del("shelfwise:artifacts:01A:" + domain.ArtifactTitleIndex)

	_, err := store.Load(ctx)
	assert.ErrorIs(t, err, domain.ErrArtifactNotFound)
}

func TestArtifactStore_IncompleteSet(t *testing.T) {
	client, _ := setupTestRedis(t)
	store := NewArtifactStore(client)
	set := testArtifactSet("01A")
	delete(set.Blobs, domain.ArtifactVectorizer)

	assert.Error(t, store.Save(context.Background(), set))
}

func TestRecommendationCache(t *testing.T) {
	ctx := context.Background()
	client, mr := setupTestRedis(t)
	cache := NewRecommendationCache(client)

	_, ok, err := cache.Get(ctx, "01A", "Dune")
	require.NoError(t, err)
	assert.False(t, ok)

	recs := []domain.Recommendation{{ID: 2, Title: "Dune Messiah", SimilarityScore: 0.8}}
	require.NoError(t, cache.Set(ctx, "01A", "Dune", recs, time.Minute))

	got, ok, err := cache.Get(ctx, "01A", "Dune")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, recs, got)

	// another generation misses
	_, ok, err = cache.Get(ctx, "01B", "Dune")
	require.NoError(t, err)
	assert.False(t, ok)

	mr.FastForward(2 * time.Minute)
	_, ok, err = cache.Get(ctx, "01A", "Dune")
	require.NoError(t, err)
	assert.False(t, ok)
}
