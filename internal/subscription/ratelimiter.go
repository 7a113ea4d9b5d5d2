package subscription

import (
	"context"
	"time"

	"github.com/fuel-streams/streams/pkg/api/ratelimit"
	"github.com/fuel-streams/streams/pkg/cache"
)

// RateLimiter gates outbound per-key message delivery (spec.md §4.6
// "Rate limiter: consume one token per outbound message"), built on the
// teacher's token-bucket strategy.
type RateLimiter struct {
	limiter ratelimit.Limiter
}

func NewRateLimiter(c cache.Cache) *RateLimiter {
	return &RateLimiter{limiter: ratelimit.New(c, ratelimit.StrategyTokenBucket)}
}

// Allow consumes one token for key, bucketed at limitPerMinute tokens per
// minute. A false result means the caller must close the session with
// RateLimitExceeded.
func (r *RateLimiter) Allow(ctx context.Context, key string, limitPerMinute int64) (bool, error) {
	if limitPerMinute <= 0 {
		return true, nil
	}
	result, err := r.limiter.Allow(ctx, key, limitPerMinute, time.Minute)
	if err != nil {
		return false, err
	}
	return result.Allowed, nil
}
