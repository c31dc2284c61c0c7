package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// GraphResolver is the resolution contract shared by Resolver and
// CachedResolver.
type GraphResolver interface {
	Resolve(ctx context.Context, rawID string) (*ResolvedGraph, error)
}

// CachedResolver caches resolved graphs in Redis with a TTL. NotFound and
// repository failures are never cached; a cache failure falls back to the
// inner resolver.
type CachedResolver struct {
	inner  GraphResolver
	client *redis.Client
	ttl    time.Duration
}

// NewCachedResolver wraps a resolver with a Redis cache.
func NewCachedResolver(inner GraphResolver, client *redis.Client, ttl time.Duration) *CachedResolver {
	return &CachedResolver{inner: inner, client: client, ttl: ttl}
}

func cacheKey(id string) string {
	return "studyengine:resolve:" + id
}

func (c *CachedResolver) Resolve(ctx context.Context, rawID string) (*ResolvedGraph, error) {
	key := cacheKey(TranslateSlug(rawID))

	data, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		var graph ResolvedGraph
		if jerr := json.Unmarshal(data, &graph); jerr == nil {
			return &graph, nil
		}
		// Corrupt entry; drop it and resolve fresh.
		c.client.Del(ctx, key)
	} else if !errors.Is(err, redis.Nil) {
		slog.Warn("resolve cache read failed", "key", key, "error", err)
	}

	graph, err := c.inner.Resolve(ctx, rawID)
	if err != nil {
		return nil, err
	}

	if data, jerr := json.Marshal(graph); jerr == nil {
		if serr := c.client.Set(ctx, key, data, c.ttl).Err(); serr != nil {
			slog.Warn("resolve cache write failed", "key", key, "error", serr)
		}
	}

	return graph, nil
}

// Invalidate drops the cached graph for an identifier, for callers that know
// the underlying content changed.
func (c *CachedResolver) Invalidate(ctx context.Context, rawID string) error {
	key := cacheKey(TranslateSlug(rawID))
	if err := c.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("invalidate %s: %w", key, err)
	}
	return nil
}
