package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultTimeout = 5 * time.Second

// Config captures the settings for establishing a Redis connection.
type Config struct {
	Addr    string
	DB      int
	Timeout time.Duration
}

// Connect initialises a Redis client and validates connectivity with a ping.
// A default timeout is applied when none is provided.
func Connect(ctx context.Context, cfg Config) (*redis.Client, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	client := redis.NewClient(&redis.Options{
		Addr: cfg.Addr,
		DB:   cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return client, nil
}

// AttemptLimiter counts consecutive failed logins per account and locks the
// account once the limit is reached. Counters carry a TTL, so every lockout
// clears on its own.
// Key format: login_attempts:<name>
type AttemptLimiter struct {
	client      *redis.Client
	maxAttempts int
	lockTTL     time.Duration
}

// NewAttemptLimiter creates an AttemptLimiter wrapping the given Redis client.
func NewAttemptLimiter(client *redis.Client, maxAttempts int, lockTTL time.Duration) *AttemptLimiter {
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	if lockTTL <= 0 {
		lockTTL = 15 * time.Minute
	}
	return &AttemptLimiter{client: client, maxAttempts: maxAttempts, lockTTL: lockTTL}
}

// Locked reports whether name has exhausted its login attempts.
func (l *AttemptLimiter) Locked(ctx context.Context, name string) (bool, error) {
	n, err := l.client.Get(ctx, l.key(name)).Int()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("attempt lookup: %w", err)
	}
	return n >= l.maxAttempts, nil
}

// RecordFailure counts one failed login and reports whether the account is
// now locked.
func (l *AttemptLimiter) RecordFailure(ctx context.Context, name string) (bool, error) {
	key := l.key(name)
	n, err := l.client.Incr(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("attempt increment: %w", err)
	}
	if n == 1 {
		if err := l.client.Expire(ctx, key, l.lockTTL).Err(); err != nil {
			return false, fmt.Errorf("attempt expire: %w", err)
		}
	}
	return n >= int64(l.maxAttempts), nil
}

// Clear wipes the counter after a successful login.
func (l *AttemptLimiter) Clear(ctx context.Context, name string) error {
	return l.client.Del(ctx, l.key(name)).Err()
}

func (l *AttemptLimiter) key(name string) string {
	return fmt.Sprintf("login_attempts:%s", name)
}
