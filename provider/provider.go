// Package provider defines the storage abstraction used by asidecache.
//
// Implementations MUST be byte-for-byte transparent: Get must return exactly
// the same []byte that was previously passed to Set for a key (no prepended
// or appended metadata, no re-encoding, no mutation). If a store performs
// internal transforms (e.g., compression), they MUST be fully reversed.
//
// Per-entry TTL support is best-effort. The accessor embeds the logical
// expiry inside the stored bytes, so providers without per-entry TTL
// (BigCache, plain LRU) still serve correct results; their entries are just
// evicted on the store's own schedule.
//
// The keyspace "entry:<ns>:" is owned by asidecache. External code MUST NOT
// write values under this prefix; foreign writes fail envelope validation
// and read as misses.
package provider

import (
	"context"
	"time"
)

// Provider is a minimal byte store with TTLs. Must be safe for concurrent use.
type Provider interface {
	// Get returns (value, true, nil) on hit; (nil, false, nil) on miss.
	// If an IO/remote error happens, return (nil, false, err).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores value with the given TTL. May ignore cost if unsupported.
	// Returns ok=false when the store rejected the write under pressure.
	Set(ctx context.Context, key string, value []byte, cost int64, ttl time.Duration) (ok bool, err error)

	// Del removes a key (best-effort).
	Del(ctx context.Context, key string) error

	// Close releases resources.
	Close(ctx context.Context) error
}
