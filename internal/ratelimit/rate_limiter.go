package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RateLimiter counts uploads per caller in fixed Redis windows
type RateLimiter struct {
	rdb    *redis.Client
	max    int
	window time.Duration
}

// NewRateLimiter creates a limiter allowing max events per window.
// A nil client yields a limiter that allows everything.
func NewRateLimiter(rdb *redis.Client, max int, window time.Duration) *RateLimiter {
	return &RateLimiter{rdb: rdb, max: max, window: window}
}

// Enabled reports whether the limiter is backed by Redis.
func (rl *RateLimiter) Enabled() bool {
	return rl != nil && rl.rdb != nil && rl.max > 0
}

// Allow records one event for key and reports whether it is within the limit
func (rl *RateLimiter) Allow(ctx context.Context, key string) (bool, error) {
	if !rl.Enabled() {
		return true, nil
	}

	redisKey := fmt.Sprintf("rate:upload:%s", key)

	// the window starts at the first event; EXPIRE NX keeps later events from extending it
	var incr *redis.IntCmd
	_, err := rl.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, redisKey)
		pipe.ExpireNX(ctx, redisKey, rl.window)
		return nil
	})
	if err != nil {
		return false, err
	}
	count := incr.Val()

	return count <= int64(rl.max), nil
}
