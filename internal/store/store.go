// Package store is the key-value service behind orders, carts and rate
// limits: plain values with optional expiry, atomic counters and lists.
package store

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("store: key not found")

// Store mirrors the small Redis subset the app relies on.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Del(ctx context.Context, keys ...string) error
	// MGet returns one entry per key; missing keys come back as "".
	MGet(ctx context.Context, keys ...string) ([]string, error)

	// Incr atomically adds one, creating the key at 1 when absent or expired.
	Incr(ctx context.Context, key string) (int64, error)
	Expire(ctx context.Context, key string, ttl time.Duration) error

	// LPush prepends; LRange returns the whole list head first.
	LPush(ctx context.Context, key, value string) error
	LRange(ctx context.Context, key string) ([]string, error)
	LRem(ctx context.Context, key, value string) (int64, error)

	Ping(ctx context.Context) error
	Close() error
}

// Open picks Redis when redisURL is set, otherwise the SQL store on dsn.
func Open(ctx context.Context, dsn, redisURL string) (Store, error) {
	if redisURL != "" {
		return OpenRedis(ctx, redisURL)
	}
	return OpenSQL(ctx, dsn)
}
