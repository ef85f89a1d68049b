package asidecache

import (
	"context"
	"time"

	c "github.com/unkn0wn-root/asidecache/codec"
	pr "github.com/unkn0wn-root/asidecache/provider"
)

// Source tells the caller where a Get result came from. The values match
// the wire-level `source` annotation HTTP handlers typically attach.
type Source string

const (
	// SourceCache marks a value served from the store (a hit).
	SourceCache Source = "cache"
	// SourceDatabase marks a value produced by the origin loader (a miss).
	SourceDatabase Source = "database"
)

// LoaderFunc produces a value from the origin on a cache miss. It is
// invoked at most once per miss-resolution cycle regardless of how many
// callers are waiting on the same key.
type LoaderFunc[V any] func(ctx context.Context) (V, error)

type SetCostFunc func(key string, raw []byte) int64

type Cache[V any] = Accessor[V] // alias -> asidecache.Cache[User] or asidecache.Accessor[User]

// Accessor is the high-level, provider-agnostic cache-aside API.
// V is the caller's value type. Serialization is handled by a pluggable Codec[V].
type Accessor[V any] interface {
	Enabled() bool
	Close(context.Context) error

	// Get resolves key: store first, loader on miss, write-back with ttl.
	// Concurrent misses for the same key share one loader invocation.
	// A non-positive ttl disables the write-back (in-flight dedup only).
	Get(ctx context.Context, key string, load LoaderFunc[V], ttl time.Duration) (v V, src Source, err error)

	// Peek reads the store without consulting the loader.
	Peek(ctx context.Context, key string) (v V, ok bool, err error)

	// Set writes a value directly. ttl <= 0 falls back to DefaultTTL.
	Set(ctx context.Context, key string, value V, ttl time.Duration) error

	// Invalidate removes a key from the store.
	Invalidate(ctx context.Context, key string) error

	// Stats returns a snapshot of the running counters.
	Stats() StatsSnapshot
}

// Options tune the accessor. Only Namespace, Provider and Codec are
// required; others have sensible defaults.
type Options[V any] struct {
	// Required
	Namespace string // logical namespace to avoid collisions, e.g. "user", "profile"
	Provider  pr.Provider
	Codec     c.Codec[V]

	Logger         Logger        // if nil, NopLogger is used
	Hooks          Hooks         // if nil, NopHooks is used
	DefaultTTL     time.Duration // 0 => 60s
	MaxKeyLen      int           // storage keys longer than this are hashed; 0 => 512
	Disabled       bool          // default false (enabled); disabled => loader passthrough
	ComputeSetCost SetCostFunc   // default 1
}

func New[V any](opts Options[V]) (Accessor[V], error) {
	return newAccessor[V](opts)
}
