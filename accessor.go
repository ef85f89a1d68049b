package asidecache

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	c "github.com/unkn0wn-root/asidecache/codec"
	"github.com/unkn0wn-root/asidecache/internal/util"
	"github.com/unkn0wn-root/asidecache/internal/wire"
	pr "github.com/unkn0wn-root/asidecache/provider"
)

const (
	defaultTTL       = 60 * time.Second
	defaultMaxKeyLen = 512
)

type accessor[V any] struct {
	ns             string
	provider       pr.Provider
	codec          c.Codec[V]
	log            Logger
	hooks          Hooks
	enabled        bool
	defaultTTL     time.Duration
	maxKeyLen      int
	computeSetCost SetCostFunc

	// flight collapses concurrent loads per storage key. At most one
	// loader invocation is in flight per key within this process.
	flight singleflight.Group

	stats stats

	now func() time.Time
}

// outcome travels from the in-flight load to every waiter attached to it.
type outcome[V any] struct {
	value V
	src   Source
}

func newAccessor[V any](opts Options[V]) (*accessor[V], error) {
	if opts.Provider == nil {
		return nil, fmt.Errorf("asidecache: provider is required")
	}
	if opts.Codec == nil {
		return nil, fmt.Errorf("asidecache: codec is required")
	}
	if opts.Namespace == "" {
		return nil, fmt.Errorf("asidecache: namespace is required")
	}

	a := &accessor[V]{
		ns:       opts.Namespace,
		provider: opts.Provider,
		codec:    opts.Codec,
		enabled:  !opts.Disabled,
		now:      time.Now,
	}

	// defaults
	a.log = coalesce[Logger](opts.Logger, NopLogger{})
	a.hooks = coalesce[Hooks](opts.Hooks, NopHooks{})
	a.defaultTTL = coalesce[time.Duration](opts.DefaultTTL, defaultTTL)
	a.maxKeyLen = coalesce[int](opts.MaxKeyLen, defaultMaxKeyLen)

	if opts.ComputeSetCost != nil {
		a.computeSetCost = opts.ComputeSetCost
	} else {
		a.computeSetCost = func(_ string, _ []byte) int64 { return 1 }
	}

	return a, nil
}

func (a *accessor[V]) Enabled() bool { return a.enabled }

func (a *accessor[V]) Close(ctx context.Context) error {
	if a.provider != nil {
		return a.provider.Close(ctx)
	}
	return nil
}

func (a *accessor[V]) Stats() StatsSnapshot { return a.stats.snapshot() }

func (a *accessor[V]) Get(ctx context.Context, key string, load LoaderFunc[V], ttl time.Duration) (V, Source, error) {
	var zero V
	if key == "" {
		return zero, "", ErrEmptyKey
	}
	if load == nil {
		return zero, "", ErrNilLoader
	}
	if !a.enabled {
		v, err := load(ctx)
		if err != nil {
			return zero, "", err
		}
		return v, SourceDatabase, nil
	}

	k := a.storageKey(key)
	if v, ok, _ := a.lookup(ctx, k); ok {
		a.stats.hits.Add(1)
		return v, SourceCache, nil
	}
	a.stats.misses.Add(1)

	ch := a.flight.DoChan(k, func() (any, error) {
		// The load must outlive the triggering caller: waiters may still
		// be attached, and the result warms the cache either way.
		lctx := context.WithoutCancel(ctx)

		// Another flight may have settled between our miss and this
		// callback running; serve its write instead of reloading.
		if v, ok, _ := a.lookup(lctx, k); ok {
			return outcome[V]{value: v, src: SourceCache}, nil
		}

		a.stats.loads.Add(1)
		v, err := load(lctx)
		if err != nil {
			a.stats.loadErrors.Add(1)
			return nil, err
		}
		if ttl > 0 {
			if err := a.writeEntry(lctx, k, v, ttl); err != nil {
				a.stats.storeWriteErrors.Add(1)
				a.hooks.StoreWriteError(k, err)
				a.log.Warn("cache write failed; value served uncached", Fields{"key": k, "err": err})
			}
		}
		return outcome[V]{value: v, src: SourceDatabase}, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			// loader failure, propagated verbatim; nothing was cached
			return zero, "", res.Err
		}
		if res.Shared {
			a.stats.dedupedLoads.Add(1)
			a.hooks.LoadShared(k)
		}
		out := res.Val.(outcome[V])
		return out.value, out.src, nil
	case <-ctx.Done():
		// Detach this waiter; the in-flight load continues for the rest.
		return zero, "", ctx.Err()
	}
}

func (a *accessor[V]) Peek(ctx context.Context, key string) (V, bool, error) {
	var zero V
	if key == "" {
		return zero, false, ErrEmptyKey
	}
	if !a.enabled {
		return zero, false, nil
	}
	return a.lookup(ctx, a.storageKey(key))
}

func (a *accessor[V]) Set(ctx context.Context, key string, value V, ttl time.Duration) error {
	if key == "" {
		return ErrEmptyKey
	}
	if !a.enabled {
		return nil
	}
	if ttl <= 0 {
		ttl = a.defaultTTL
	}
	return a.writeEntry(ctx, a.storageKey(key), value, ttl)
}

func (a *accessor[V]) Invalidate(ctx context.Context, key string) error {
	if key == "" {
		return ErrEmptyKey
	}
	if !a.enabled {
		return nil
	}
	k := a.storageKey(key)
	if err := a.provider.Del(ctx, k); err != nil {
		return err
	}
	a.log.Debug("invalidated key", Fields{"key": k})
	return nil
}

// lookup reads and validates one entry. The returned error is a provider
// read error only; decode and expiry problems are reported as a plain miss.
func (a *accessor[V]) lookup(ctx context.Context, storageKey string) (V, bool, error) {
	var zero V
	raw, ok, err := a.provider.Get(ctx, storageKey)
	if err != nil {
		// availability over strict caching: fall through to the loader
		a.stats.storeReadErrors.Add(1)
		a.hooks.StoreReadError(storageKey, err)
		a.log.Warn("store get failed; treating as miss", Fields{"key": storageKey, "err": err})
		return zero, false, err
	}
	if !ok {
		return zero, false, nil
	}
	expiresAt, payload, err := wire.DecodeEntry(raw)
	if err != nil {
		a.hooks.EntryCorrupt(storageKey, "envelope")
		a.log.Debug("corrupt entry; treating as miss", Fields{"key": storageKey, "err": err})
		return zero, false, nil
	}
	// logical expiry is authoritative even if the provider has not evicted yet
	if expiresAt > 0 && a.now().After(time.Unix(0, expiresAt)) {
		a.stats.expirations.Add(1)
		return zero, false, nil
	}
	v, err := a.codec.Decode(payload)
	if err != nil {
		a.hooks.EntryCorrupt(storageKey, "value_decode")
		a.log.Debug("value decode failed; treating as miss", Fields{"key": storageKey, "err": err})
		return zero, false, nil
	}
	return v, true, nil
}

func (a *accessor[V]) writeEntry(ctx context.Context, storageKey string, value V, ttl time.Duration) error {
	payload, err := a.codec.Encode(value)
	if err != nil {
		return err
	}
	raw := wire.EncodeEntry(a.now().Add(ttl).UnixNano(), payload)
	ok, err := a.provider.Set(ctx, storageKey, raw, a.computeSetCost(storageKey, raw), ttl)
	if err != nil {
		return err
	}
	if !ok {
		a.hooks.ProviderSetRejected(storageKey)
		a.log.Debug("set rejected by provider (pressure)", Fields{"key": storageKey})
	}
	return nil
}

func (a *accessor[V]) storageKey(userKey string) string {
	// isolate by namespace
	return util.StorageKey(a.ns, userKey, a.maxKeyLen)
}
