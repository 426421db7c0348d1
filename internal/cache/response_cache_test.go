package cache

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/require"
)

// fakeDurableStore is an in-memory stand-in for the Redis tier that can be
// forced to fail.
type fakeDurableStore struct {
	store    *MemoryStore
	getErr   error
	setErr   error
	getCalls int
	setCalls int
}

func newFakeDurableStore() *fakeDurableStore {
	return &fakeDurableStore{store: NewMemoryStore()}
}

func (f *fakeDurableStore) Get(ctx context.Context, key string) ([]byte, time.Duration, bool, error) {
	f.getCalls++
	if f.getErr != nil {
		return nil, 0, false, f.getErr
	}
	return f.store.Get(ctx, key)
}

func (f *fakeDurableStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	f.setCalls++
	if f.setErr != nil {
		return f.setErr
	}
	return f.store.Set(ctx, key, value, ttl)
}

func TestResponseCache_SetThenGet(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	c, err := NewResponseCache(hclog.NewNullLogger(), WithDefaultTTL(time.Hour))
	require.NoError(t, err)

	c.Set(ctx, "k1", []byte("v1"), 0)

	value, ok := c.Get(ctx, "k1")
	require.True(t, ok)
	require.Equal(t, []byte("v1"), value)

	_, ok = c.Get(ctx, "missing")
	require.False(t, ok)
}

func TestResponseCache_TTLOverride(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	c, err := NewResponseCache(hclog.NewNullLogger(), WithDefaultTTL(time.Hour))
	require.NoError(t, err)

	// The explicit TTL overrides the default for this entry only.
	c.Set(ctx, "short", []byte("v"), 10*time.Millisecond)
	c.Set(ctx, "long", []byte("v"), 0)

	time.Sleep(20 * time.Millisecond)

	_, ok := c.Get(ctx, "short")
	require.False(t, ok)

	_, ok = c.Get(ctx, "long")
	require.True(t, ok)
}

func TestResponseCache_DurablePromotion(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	durable := newFakeDurableStore()

	c, err := NewResponseCache(hclog.NewNullLogger(), WithDefaultTTL(time.Hour), WithDurable(durable))
	require.NoError(t, err)

	// Seed the durable tier only, simulating a restarted process.
	require.NoError(t, durable.store.Set(ctx, "k1", []byte("v1"), time.Hour))

	value, ok := c.Get(ctx, "k1")
	require.True(t, ok)
	require.Equal(t, []byte("v1"), value)
	require.Equal(t, 1, durable.getCalls)

	// The hit was promoted: a second read is served from the volatile tier.
	_, ok = c.Get(ctx, "k1")
	require.True(t, ok)
	require.Equal(t, 1, durable.getCalls)
}

func TestResponseCache_DurableFailuresAreNonFatal(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	durable := newFakeDurableStore()
	durable.getErr = fmt.Errorf("connection refused")
	durable.setErr = fmt.Errorf("connection refused")

	c, err := NewResponseCache(hclog.NewNullLogger(), WithDefaultTTL(time.Hour), WithDurable(durable))
	require.NoError(t, err)

	// A failing durable read is a miss, not an error.
	_, ok := c.Get(ctx, "k1")
	require.False(t, ok)

	// A failing durable write leaves the volatile tier authoritative.
	c.Set(ctx, "k1", []byte("v1"), 0)
	value, ok := c.Get(ctx, "k1")
	require.True(t, ok)
	require.Equal(t, []byte("v1"), value)
}

func TestResponseCache_SetMirrorsToDurable(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	durable := newFakeDurableStore()

	c, err := NewResponseCache(hclog.NewNullLogger(), WithDefaultTTL(time.Hour), WithDurable(durable))
	require.NoError(t, err)

	c.Set(ctx, "k1", []byte("v1"), 0)
	require.Equal(t, 1, durable.setCalls)

	value, _, ok, err := durable.store.Get(ctx, "k1")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte("v1"), value)
}

func TestResponseCache_InvalidateAndClear(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	c, err := NewResponseCache(hclog.NewNullLogger(), WithDefaultTTL(time.Hour))
	require.NoError(t, err)

	c.Set(ctx, "journey:a", []byte("1"), 0)
	c.Set(ctx, "journey:b", []byte("2"), 0)
	c.Set(ctx, "meteo:c", []byte("3"), 0)
	require.Equal(t, 3, c.Stats().VolatileEntries)

	require.Equal(t, 2, c.Invalidate("journey"))
	require.Equal(t, 1, c.Stats().VolatileEntries)

	_, ok := c.Get(ctx, "meteo:c")
	require.True(t, ok)

	c.Clear()
	require.Equal(t, 0, c.Stats().VolatileEntries)
	_, ok = c.Get(ctx, "meteo:c")
	require.False(t, ok)
}
