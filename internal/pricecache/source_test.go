package pricecache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/scolli03/rwmarket/internal/types"
)

type countingSource struct {
	calls int
	err   error
}

func (s *countingSource) Lookup(_ context.Context, itemID int64) (types.PriceSnapshot, error) {
	s.calls++
	if s.err != nil {
		return types.PriceSnapshot{}, s.err
	}
	avg := int64(100)
	return types.PriceSnapshot{
		ItemID:        itemID,
		Listings:      []types.ExternalListing{{Price: 90, Quantity: 1}},
		BazaarAverage: &avg,
	}, nil
}

func TestCachedSourceMemory(t *testing.T) {
	src := &countingSource{}
	cs := NewCachedSource(src, NewMemoryStore(time.Minute, time.Minute), time.Minute)
	ctx := context.Background()

	first, err := cs.Lookup(ctx, 1118)
	require.NoError(t, err)
	second, err := cs.Lookup(ctx, 1118)
	require.NoError(t, err)

	assert.Equal(t, 1, src.calls)
	assert.Equal(t, first, second)
	require.NotNil(t, second.BazaarAverage)
	assert.Equal(t, int64(100), *second.BazaarAverage)

	_, err = cs.Lookup(ctx, 1119)
	require.NoError(t, err)
	assert.Equal(t, 2, src.calls)
}

func TestCachedSourceDoesNotCacheErrors(t *testing.T) {
	src := &countingSource{err: errors.New("boom")}
	cs := NewCachedSource(src, NewMemoryStore(time.Minute, time.Minute), time.Minute)

	_, err := cs.Lookup(context.Background(), 1)
	require.Error(t, err)
	_, err = cs.Lookup(context.Background(), 1)
	require.Error(t, err)
	assert.Equal(t, 2, src.calls)
}

func TestMemoryStoreExpiry(t *testing.T) {
	s := NewMemoryStore(time.Minute, time.Minute)
	ctx := context.Background()
	require.NoError(t, s.Set(ctx, "k", []byte("v"), 10*time.Millisecond))

	v, ok, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("v"), v)

	time.Sleep(30 * time.Millisecond)
	_, ok, err = s.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestOpenUnknownBackend(t *testing.T) {
	_, err := Open(context.Background(), Options{Backend: "memcached"})
	assert.Error(t, err)

	s, err := Open(context.Background(), Options{})
	require.NoError(t, err)
	assert.Equal(t, BackendMemory, s.Name())
}

func TestRedisStore(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping redis container test in short mode")
	}
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections"),
		},
		Started: true,
	})
	if err != nil {
		t.Skipf("docker not available: %v", err)
	}
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	endpoint, err := container.Endpoint(ctx, "")
	require.NoError(t, err)

	store, err := Open(ctx, Options{Backend: BackendRedis, RedisAddr: endpoint})
	require.NoError(t, err)
	defer store.Close()

	src := &countingSource{}
	cs := NewCachedSource(src, store, time.Minute)
	_, err = cs.Lookup(ctx, 42)
	require.NoError(t, err)
	snap, err := cs.Lookup(ctx, 42)
	require.NoError(t, err)

	assert.Equal(t, 1, src.calls)
	assert.Equal(t, int64(42), snap.ItemID)
}
