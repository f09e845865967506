package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLock_OwnerID_Unique(t *testing.T) {
	client, _ := setupTestRedis(t)
	a, b := NewLock(client), NewLock(client)
	assert.NotEmpty(t, a.OwnerID())
	assert.NotEqual(t, a.OwnerID(), b.OwnerID())
}

func TestLock_Acquire(t *testing.T) {
	ctx := context.Background()
	client, mr := setupTestRedis(t)
	lock := NewLock(client)

	ok, err := lock.Acquire(ctx, "recommender:train", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	val, err := mr.Get("shelfwise:lock:recommender:train")
	require.NoError(t, err)
	assert.Equal(t, lock.OwnerID(), val)
	assert.Equal(t, time.Minute, mr.TTL("shelfwise:lock:recommender:train"))
}

func TestLock_Acquire_HeldByOther(t *testing.T) {
	ctx := context.Background()
	client, _ := setupTestRedis(t)
	first, second := NewLock(client), NewLock(client)

	ok, err := first.Acquire(ctx, "job", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = second.Acquire(ctx, "job", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	// names are independent
	ok, err = second.Acquire(ctx, "other", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestLock_Acquire_AfterExpiry(t *testing.T) {
	ctx := context.Background()
	client, mr := setupTestRedis(t)
	first, second := NewLock(client), NewLock(client)

	_, err := first.Acquire(ctx, "job", time.Second)
	require.NoError(t, err)
	mr.FastForward(2 * time.Second)

	ok, err := second.Acquire(ctx, "job", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestLock_Release(t *testing.T) {
	ctx := context.Background()
	client, mr := setupTestRedis(t)
	lock := NewLock(client)

	_, err := lock.Acquire(ctx, "job", time.Minute)
	require.NoError(t, err)
	require.NoError(t, lock.Release(ctx, "job"))
	assert.False(t, mr.Exists("shelfwise:lock:job"))

	// releasing again is a no-op
	assert.NoError(t, lock.Release(ctx, "job"))
}

func TestLock_Release_ByDifferentOwner(t *testing.T) {
	ctx := context.Background()
	client, mr := setupTestRedis(t)
	owner, other := NewLock(client), NewLock(client)

	_, err := owner.Acquire(ctx, "job", time.Minute)
	require.NoError(t, err)
	require.NoError(t, other.Release(ctx, "job"))
	assert.True(t, mr.Exists("shelfwise:lock:job"))
}

func TestLock_Extend(t *testing.T) {
	ctx := context.Background()
	client, mr := setupTestRedis(t)
	owner, other := NewLock(client), NewLock(client)

	_, err := owner.Acquire(ctx, "job", time.Second)
	require.NoError(t, err)

	require.NoError(t, owner.Extend(ctx, "job", time.Hour))
	assert.Equal(t, time.Hour, mr.TTL("shelfwise:lock:job"))

	assert.Error(t, other.Extend(ctx, "job", time.Hour))
	assert.Error(t, owner.Extend(ctx, "missing", time.Hour))
}

func TestLock_Ping(t *testing.T) {
	client, mr := setupTestRedis(t)
	lock := NewLock(client)
	assert.NoError(t, lock.Ping(context.Background()))

	mr.Close()
	assert.Error(t, lock.Ping(context.Background()))
}
