package tiered_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/davidbz/howl/internal/cache/tiered"
)

// memCache is a simple in-memory cache for testing.
type memCache struct {
	data map[string][]byte
	ttls map[string]time.Duration
	err  error
}

func newMemCache() *memCache {
	return &memCache{data: make(map[string][]byte), ttls: make(map[string]time.Duration)}
}

func (m *memCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	if m.err != nil {
		return nil, false, m.err
	}
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if m.err != nil {
		return m.err
	}
	m.data[key] = value
	m.ttls[key] = ttl
	return nil
}

func (m *memCache) Delete(_ context.Context, key string) error {
	delete(m.data, key)
	return nil
}

func TestTiered_Get(t *testing.T) {
	ctx := context.Background()

	t.Run("l1 hit", func(t *testing.T) {
		l1, l2 := newMemCache(), newMemCache()
		l1.data["k"] = []byte("l1")
		l2.data["k"] = []byte("l2")

		val, found, err := tiered.New(l1, l2, time.Minute).Get(ctx, "k")
		require.NoError(t, err)
		require.True(t, found)
		require.Equal(t, []byte("l1"), val)
	})

	t.Run("l2 hit backfills l1", func(t *testing.T) {
		l1, l2 := newMemCache(), newMemCache()
		l2.data["k"] = []byte("l2")

		val, found, err := tiered.New(l1, l2, time.Minute).Get(ctx, "k")
		require.NoError(t, err)
		require.True(t, found)
		require.Equal(t, []byte("l2"), val)
		require.Equal(t, []byte("l2"), l1.data["k"])
		require.Equal(t, time.Minute, l1.ttls["k"])
	})

	t.Run("miss", func(t *testing.T) {
		_, found, err := tiered.New(newMemCache(), newMemCache(), time.Minute).Get(ctx, "k")
		require.NoError(t, err)
		require.False(t, found)
	})

	t.Run("l2 error", func(t *testing.T) {
		l2 := newMemCache()
		l2.err = errors.New("redis down")

		_, _, err := tiered.New(newMemCache(), l2, time.Minute).Get(ctx, "k")
		require.Error(t, err)
	})
}

func TestTiered_SetAndDelete(t *testing.T) {
	ctx := context.Background()
	l1, l2 := newMemCache(), newMemCache()
	c := tiered.New(l1, l2, time.Minute)

	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Hour))
	require.Equal(t, []byte("v"), l1.data["k"])
	require.Equal(t, []byte("v"), l2.data["k"])
	require.Equal(t, time.Minute, l1.ttls["k"])
	require.Equal(t, time.Hour, l2.ttls["k"])

	require.NoError(t, c.Delete(ctx, "k"))
	require.NotContains(t, l1.data, "k")
	require.NotContains(t, l2.data, "k")
}
