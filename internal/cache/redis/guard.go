package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/davidbz/howl/internal/observability"
)

// SettlementGuard claims settlement attempt ids with SET NX so a retried
// request cannot deduct twice.
type SettlementGuard struct {
	client *redis.Client
	prefix string
}

// NewSettlementGuard creates a redis-backed settlement guard.
func NewSettlementGuard(client *redis.Client, prefix string) *SettlementGuard {
	return &SettlementGuard{
		client: client,
		prefix: prefix,
	}
}

// Acquire claims key for ttl and reports false if it is already claimed.
func (g *SettlementGuard) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	acquired, err := g.client.SetNX(ctx, g.prefix+key, time.Now().UTC().Format(time.RFC3339Nano), ttl).Result()
	if err != nil {
		return false, fmt.Errorf("redis setnx %s: %w", key, err)
	}

	if !acquired {
		observability.FromContext(ctx).Warn("settlement attempt already claimed",
			observability.String("key", key))
	}

	return acquired, nil
}

// Release frees key.
func (g *SettlementGuard) Release(ctx context.Context, key string) error {
	if err := g.client.Del(ctx, g.prefix+key).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", key, err)
	}
	return nil
}
