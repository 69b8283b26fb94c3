package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const DefaultPerMinute = 5

// Limiter decides whether another attempt for key is allowed in the current window.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// RedisLimiter is a fixed one-minute window counter kept in redis.
type RedisLimiter struct {
	client *redis.Client
	max    int64
	window time.Duration
	prefix string
}

func NewRedisLimiter(client *redis.Client, perMinute int) *RedisLimiter {
	if perMinute <= 0 {
		perMinute = DefaultPerMinute
	}
	return &RedisLimiter{
		client: client,
		max:    int64(perMinute),
		window: time.Minute,
		prefix: "rl:login:",
	}
}

// NewClient parses a redis:// URL into a client.
func NewClient(url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return redis.NewClient(opts), nil
}

// Allow counts the attempt and reports whether it fits the window. On redis
// errors it returns true together with the error so callers can fail open.
func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	k := l.prefix + key
	cnt, err := l.client.Incr(ctx, k).Result()
	if err != nil {
		return true, fmt.Errorf("incr %s: %w", k, err)
	}
	if cnt == 1 {
		if err := l.client.Expire(ctx, k, l.window).Err(); err != nil {
			return true, fmt.Errorf("expire %s: %w", k, err)
		}
	}
	return cnt <= l.max, nil
}

var _ Limiter = (*RedisLimiter)(nil)
