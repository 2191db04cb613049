package tiered

import (
	"context"
	"time"

	"github.com/davidbz/howl/internal/domain"
	"github.com/davidbz/howl/internal/observability"
)

// Cache reads through an in-process L1 to a shared L2 and backfills L1 on L2 hits.
// Set and Delete write both levels.
type Cache struct {
	l1       domain.Cache
	l2       domain.Cache
	l1Expire time.Duration
}

// New creates a tiered cache. l1Expire bounds how long L2 backfills live in L1.
func New(l1, l2 domain.Cache, l1Expire time.Duration) *Cache {
	return &Cache{l1: l1, l2: l2, l1Expire: l1Expire}
}

// Get checks L1, then L2.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, found, err := c.l1.Get(ctx, key)
	if err != nil {
		return nil, false, err
	}
	if found {
		return val, true, nil
	}

	val, found, err = c.l2.Get(ctx, key)
	if err != nil {
		return nil, false, err
	}
	if !found {
		return nil, false, nil
	}

	if setErr := c.l1.Set(ctx, key, val, c.l1Expire); setErr != nil {
		observability.FromContext(ctx).Warn("l1 backfill failed",
			observability.String("key", key), observability.Error(setErr))
	}

	return val, true, nil
}

// Set writes to both levels.
func (c *Cache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	l1TTL := ttl
	if c.l1Expire > 0 && c.l1Expire < ttl {
		l1TTL = c.l1Expire
	}

	if err := c.l1.Set(ctx, key, value, l1TTL); err != nil {
		return err
	}
	return c.l2.Set(ctx, key, value, ttl)
}

// Delete removes key from both levels.
func (c *Cache) Delete(ctx context.Context, key string) error {
	if err := c.l1.Delete(ctx, key); err != nil {
		return err
	}
	return c.l2.Delete(ctx, key)
}
