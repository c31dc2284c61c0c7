// Package cache provides a Redis client wrapper.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Fallback timeouts, used when the corresponding Config field is unset.
const (
	defaultDialTimeout  = 5 * time.Second
	defaultReadTimeout  = 2 * time.Second
	defaultWriteTimeout = 2 * time.Second
)

// Config holds Redis client settings. Zero-valued timeouts fall back to the
// package defaults.
type Config struct {
	URL          string
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Cache wraps a Redis client.
type Cache struct {
	Client *redis.Client
}

// ParseURL validates a Redis connection URL.
func ParseURL(url string) (*redis.Options, error) {
	if url == "" {
		return nil, fmt.Errorf("cache URL is empty")
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse cache URL: %w", err)
	}
	return opts, nil
}

// Options builds the Redis client options with cfg's timeouts applied.
func Options(cfg Config) (*redis.Options, error) {
	opts, err := ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	dial := cfg.DialTimeout
	if dial <= 0 {
		dial = defaultDialTimeout
	}
	read := cfg.ReadTimeout
	if read <= 0 {
		read = defaultReadTimeout
	}
	write := cfg.WriteTimeout
	if write <= 0 {
		write = defaultWriteTimeout
	}
	opts.DialTimeout = dial
	opts.ReadTimeout = read
	opts.WriteTimeout = write

	return opts, nil
}

// New creates a cache client and verifies it with a ping.
func New(ctx context.Context, cfg Config) (*Cache, error) {
	opts, err := Options(cfg)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping cache: %w", err)
	}

	return &Cache{Client: client}, nil
}

// Close shuts down the cache client.
func (c *Cache) Close() error {
	return c.Client.Close()
}

// HealthCheck verifies the cache connection is alive.
func (c *Cache) HealthCheck(ctx context.Context) error {
	return c.Client.Ping(ctx).Err()
}
