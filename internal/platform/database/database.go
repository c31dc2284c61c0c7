// Package database provides PostgreSQL connection management via pgx.
package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Fallback pool bounds, used when the corresponding Config field is unset.
const (
	defaultConnLifetime = 45 * time.Minute
	defaultConnIdleTime = 10 * time.Minute
)

// Config bounds the connection pool. Zero-valued fields fall back to the
// package defaults.
type Config struct {
	URL          string
	MaxConns     int
	MinConns     int
	ConnLifetime time.Duration
	ConnIdleTime time.Duration
}

// DB wraps a pgx connection pool.
type DB struct {
	Pool *pgxpool.Pool
}

// ParseURL validates a PostgreSQL connection URL.
func ParseURL(url string) (*pgxpool.Config, error) {
	if url == "" {
		return nil, fmt.Errorf("database URL is empty")
	}
	cfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}
	return cfg, nil
}

// PoolConfig builds the pgx pool configuration with cfg's bounds applied.
func PoolConfig(cfg Config) (*pgxpool.Config, error) {
	pc, err := ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	if cfg.MaxConns > 0 {
		pc.MaxConns = int32(cfg.MaxConns)
	}
	if cfg.MinConns > 0 {
		pc.MinConns = int32(cfg.MinConns)
	}

	lifetime := cfg.ConnLifetime
	if lifetime <= 0 {
		lifetime = defaultConnLifetime
	}
	idle := cfg.ConnIdleTime
	if idle <= 0 {
		idle = defaultConnIdleTime
	}
	pc.MaxConnLifetime = lifetime
	pc.MaxConnIdleTime = idle

	return pc, nil
}

// New opens a connection pool and verifies it with a ping.
func New(ctx context.Context, cfg Config) (*DB, error) {
	pc, err := PoolConfig(cfg)
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, pc)
	if err != nil {
		return nil, fmt.Errorf("open connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &DB{Pool: pool}, nil
}

// Close shuts down the connection pool.
func (db *DB) Close() {
	db.Pool.Close()
}

// HealthCheck verifies the database connection is alive.
func (db *DB) HealthCheck(ctx context.Context) error {
	return db.Pool.Ping(ctx)
}
