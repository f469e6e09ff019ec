// Package cache provides the short-lived token cache shared by client
// instances (e.g. Bilibili's w_webid, TTL ~12h). It is injected rather
// than global, and GetOrFill guarantees a single fetch in flight per
// key.
package cache

import (
	"context"
	"time"
)

type Cache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	// GetOrFill returns the cached value, or runs fill and stores its
	// result. Concurrent callers on the same key share one fill call.
	GetOrFill(ctx context.Context, key string, ttl time.Duration, fill func(ctx context.Context) (string, error)) (string, error)
}
