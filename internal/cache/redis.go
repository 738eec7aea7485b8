// Package cache holds the Redis connection shared by the submission limiter
// and the event publisher.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Client settings. Every Redis call sits on the submit path, and the limiter
// fails open, so a slow Redis should error quickly rather than hold requests.
const (
	poolSize        = 10
	minIdleConns    = 2
	dialTimeout     = 2 * time.Second
	commandTimeout  = 300 * time.Millisecond
	poolTimeout     = time.Second
	connMaxIdleTime = 5 * time.Minute
	maxRetries      = 1
)

// Cache wraps the Redis client used by the intake service.
type Cache struct {
	client *redis.Client
}

// New connects to redisURL and verifies the connection.
func New(ctx context.Context, redisURL string) (*Cache, error) {
	opt, err := clientOptions(redisURL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}

	return &Cache{client: client}, nil
}

// clientOptions parses redisURL and applies the intake client settings.
// Timeouts given in the URL take precedence.
func clientOptions(redisURL string) (*redis.Options, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	opt.PoolSize = poolSize
	opt.MinIdleConns = minIdleConns
	opt.PoolTimeout = poolTimeout
	opt.ConnMaxIdleTime = connMaxIdleTime
	opt.MaxRetries = maxRetries
	if opt.DialTimeout == 0 {
		opt.DialTimeout = dialTimeout
	}
	if opt.ReadTimeout == 0 {
		opt.ReadTimeout = commandTimeout
	}
	if opt.WriteTimeout == 0 {
		opt.WriteTimeout = commandTimeout
	}

	return opt, nil
}

// NewFromClient wraps an existing Redis client.
func NewFromClient(client *redis.Client) *Cache {
	return &Cache{client: client}
}

// Ping reports whether Redis answers. Used by the readiness check.
func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the Redis client.
func (c *Cache) Close() error {
	return c.client.Close()
}

// Client returns the underlying client for the event publisher.
func (c *Cache) Client() *redis.Client {
	return c.client
}
