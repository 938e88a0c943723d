package replay

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisGuard records first-seen ids in Redis so replicas share one view.
type RedisGuard struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisGuard creates a Redis-backed guard retaining ids for ttl.
func NewRedisGuard(client *redis.Client, ttl time.Duration) *RedisGuard {
	return &RedisGuard{client: client, ttl: ttl}
}

func (g *RedisGuard) FirstSeen(ctx context.Context, txID string) (bool, error) {
	// SETNX is atomic: exactly one caller wins per id.
	ok, err := g.client.SetNX(ctx, "coffer:replay:"+txID, 1, g.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("replay guard setnx: %w", err)
	}
	return ok, nil
}
