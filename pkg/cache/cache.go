// Package cache stores computed layouts and rendered artifacts.
//
// Three backends implement [Cache]: [NullCache] for disabled caching,
// [FileCache] for the CLI (one JSON file per entry under the XDG cache
// directory) and [RedisCache] for the HTTP server. Keys are produced by a
// [Keyer] from a hash of the input document and every option that changes
// the result:
//
//	k := cache.NewDefaultKeyer()
//	key := k.LayoutKey(cache.Hash(input), cache.LayoutKeyOpts{Threshold: 2, Settings: s})
//	data, hit, err := c.Get(ctx, key)
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key-value store with optional expiry.
type Cache interface {
	// Get returns the stored value and whether it was found.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. A ttl of zero never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases backend resources.
	Close() error
}

// Entry lifetimes. Layouts are deterministic for a given key, so they can
// live long; artifacts are cheap to regenerate from a cached layout.
const (
	TTLLayout   = 7 * 24 * time.Hour
	TTLArtifact = 24 * time.Hour
)
