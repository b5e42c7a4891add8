// Package cachemanager provides a typed in-memory cache with TTLs and a
// read-through wrapper that never stores failed lookups.
package cachemanager

import (
	"context"
	"time"
)

// CacheManager is a typed key/value cache with per-entry TTLs.
type CacheManager[K ~string, V any] interface {
	Get(ctx context.Context, key K) (V, bool)
	GetWithRefresh(ctx context.Context, key K, ttl time.Duration) (V, bool)
	Set(ctx context.Context, key K, value V, ttl time.Duration)
	Delete(ctx context.Context, keys ...K) error
	DeletePrefix(ctx context.Context, prefix K) int
	Len(ctx context.Context) int
	Flush(ctx context.Context) error
}

var _ CacheManager[string, int] = (*InMemoryCacheManager[string, int])(nil)
