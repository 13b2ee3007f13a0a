// Package cache stores build results keyed by the content of their inputs.
//
// A [Cache] is a flat byte store with per-entry expiry. [FileCache] serves
// the CLI; [RedisCache] and [MongoCache] let several hosts share results;
// [NullCache] disables caching. Keys come from a [Keyer], which hashes every
// input that affects the stored bytes.
package cache

import (
	"context"
	"time"
)

// Cache is a byte store with expiring entries.
type Cache interface {
	// Get returns the value for key. A miss is (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Entry lifetimes. Graphs depend only on hashed inputs, so they live long;
// variant tables are cheap to rebuild.
const (
	TTLGraph        = 30 * 24 * time.Hour
	TTLVariantTable = 7 * 24 * time.Hour
)
