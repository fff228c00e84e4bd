// Package cache stores computed layouts and rendered artifacts so repeated
// runs over unchanged input skip the solver.
//
// Entries are opaque byte slices addressed by string keys. A [Keyer]
// derives keys from the graph's content hash plus every option that
// affects the result, so any change to either produces a fresh entry.
//
//	c, _ := cache.NewFileCache(dir)
//	key := cache.NewDefaultKeyer().LayoutKey(g.Hash(), cache.LayoutKeyOpts{Width: 800})
//	if data, hit, _ := c.Get(ctx, key); hit {
//	    ...
//	}
package cache

import (
	"context"
	"time"
)

// TTLs for cached entries. Layouts are deterministic for a given seed, so
// they live long; artifacts are cheap to rebuild from a cached layout.
const (
	TTLLayout   = 7 * 24 * time.Hour
	TTLArtifact = 24 * time.Hour
)

// Cache is a byte store with per-entry expiry.
type Cache interface {
	// Get returns the data for key and whether it was found. Expired
	// entries are misses.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. A ttl of 0 never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}
