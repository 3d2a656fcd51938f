// Package cache dials the Redis instance shared by the report cache and the
// job queue.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// pingBudget caps how long startup waits on Redis before the caller decides
// to run degraded.
const pingBudget = 5 * time.Second

// New connects to Redis and pings it within the startup budget. Callers that
// can serve uncached reads may fall back to an unverified client on error.
func New(ctx context.Context, addr string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
	})

	ctx, cancel := context.WithTimeout(ctx, pingBudget)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("cache: ping: %w", err)
	}

	return client, nil
}
