// Package ratelimit throttles requests per client key using fixed windows
// counted in Redis.
package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/CoderAaditya/BookBliss-Backend/internal/logger"
	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker/v2"
)

const keyPrefix = "ratelimit"

// consecutiveFailuresToTrip is how many Redis errors in a row open the breaker.
const consecutiveFailuresToTrip = 5

var ErrInvalidLimit = errors.New("rate limit and window must be positive")

// Limiter decides whether another request for key fits in the current window.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

type RedisLimiter struct {
	client  redis.Cmdable
	limit   int64
	window  time.Duration
	breaker *gobreaker.CircuitBreaker[int64]
	now     func() time.Time
}

type Option func(*RedisLimiter)

// WithClock overrides the time source used to pick the current window.
func WithClock(now func() time.Time) Option {
	return func(l *RedisLimiter) {
		l.now = now
	}
}

// WithBreakerTimeout sets how long the breaker stays open before probing Redis again.
func WithBreakerTimeout(timeout time.Duration) Option {
	return func(l *RedisLimiter) {
		l.breaker = newBreaker(timeout)
	}
}

func NewRedisLimiter(client redis.Cmdable, limit int, window time.Duration, opts ...Option) (*RedisLimiter, error) {
	if limit <= 0 || window <= 0 {
		return nil, ErrInvalidLimit
	}

	l := &RedisLimiter{
		client:  client,
		limit:   int64(limit),
		window:  window,
		breaker: newBreaker(30 * time.Second),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}

	return l, nil
}

func newBreaker(timeout time.Duration) *gobreaker.CircuitBreaker[int64] {
	return gobreaker.NewCircuitBreaker[int64](gobreaker.Settings{
		Name:        "redis-ratelimit",
		MaxRequests: 1,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= consecutiveFailuresToTrip
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Log.Warnw("circuit breaker state changed", "name", name, "from", from.String(), "to", to.String())
		},
	})
}

// Allow counts the request against key and reports whether it is within the limit.
// When Redis is unavailable the request is allowed and the error is returned
// so the caller can log it.
func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	windowKey := l.windowKey(key)

	count, err := l.breaker.Execute(func() (int64, error) {
		return l.increment(ctx, windowKey)
	})
	if err != nil {
		return true, fmt.Errorf("rate limit check failed: %w", err)
	}

	return count <= l.limit, nil
}

func (l *RedisLimiter) increment(ctx context.Context, windowKey string) (int64, error) {
	var incr *redis.IntCmd
	_, err := l.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, windowKey)
		pipe.Expire(ctx, windowKey, l.window)
		return nil
	})
	if err != nil {
		return 0, err
	}

	return incr.Val(), nil
}

func (l *RedisLimiter) windowKey(key string) string {
	window := l.now().UnixNano() / int64(l.window)
	return fmt.Sprintf("%s:%s:%d", keyPrefix, key, window)
}
