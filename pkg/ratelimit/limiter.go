package ratelimit

import (
	"context"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/Oghenemaro93/QGlide/pkg/config"
)

// Result captures the outcome of a rate limiting decision.
type Result struct {
	Allowed    bool
	Remaining  int
	Limit      int
	RetryAfter time.Duration
}

// Limiter implements a Redis-backed fixed-window rate limiter keyed by
// identity (user ID or client IP) and endpoint.
type Limiter struct {
	client redis.Cmdable
	cfg    config.RateLimitConfig
	now    func() time.Time
}

// NewLimiter creates a new Limiter instance.
func NewLimiter(client redis.Cmdable, cfg config.RateLimitConfig) *Limiter {
	return &Limiter{
		client: client,
		cfg:    cfg,
		now:    time.Now,
	}
}

// Allow determines whether the request should be allowed for the provided
// identity and endpoint within the current window.
func (l *Limiter) Allow(ctx context.Context, endpointKey, identityKey string) (Result, error) {
	limit := l.cfg.DefaultLimit
	if !l.cfg.Enabled || limit <= 0 {
		return Result{Allowed: true, Remaining: limit, Limit: limit}, nil
	}

	window := l.cfg.Window()
	windowStart := l.now().Truncate(window)
	key := fmt.Sprintf("%s:%s:%s:%d", l.cfg.RedisPrefix, endpointKey, identityKey, windowStart.Unix())

	pipe := l.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return Result{}, fmt.Errorf("rate limit pipeline: %w", err)
	}

	count := int(incr.Val())
	remaining := limit - count
	if remaining < 0 {
		remaining = 0
	}

	if count > limit {
		retryAfter := windowStart.Add(window).Sub(l.now())
		if retryAfter < time.Second {
			retryAfter = time.Second
		}
		return Result{Allowed: false, Remaining: 0, Limit: limit, RetryAfter: retryAfter}, nil
	}

	return Result{Allowed: true, Remaining: remaining, Limit: limit}, nil
}
