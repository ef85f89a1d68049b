// Package asynchook decouples hook execution from the accessor's hot path.
// Events are queued on a bounded channel and run on background workers;
// when the queue is full, events are dropped rather than blocking a read.
//
// usage:
//
//	raw := sloghook.New(slog.Default(), sloghook.Options{CorruptEvery: 10})
//	hooks := asynchook.New(raw, 1, 1000) // 1 worker; queue 1000 events
//	defer hooks.Close()
//
//	cache, _ := asidecache.New[User](asidecache.Options[User]{
//	    Namespace: "user",
//	    Provider:  provider,
//	    Codec:     codec.JSON[User]{},
//	    Hooks:     hooks, // or `raw` if you don't want async
//	})
package asynchook

import (
	"sync"

	"github.com/unkn0wn-root/asidecache"
)

type Hooks struct {
	inner asidecache.Hooks
	q     chan func()
	wg    sync.WaitGroup
	once  sync.Once
}

var _ asidecache.Hooks = (*Hooks)(nil)

func New(inner asidecache.Hooks, workers, qlen int) *Hooks {
	if workers <= 0 {
		workers = 1
	}
	if qlen <= 0 {
		qlen = 1024
	}

	h := &Hooks{inner: inner, q: make(chan func(), qlen)}
	h.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer h.wg.Done()
			for f := range h.q {
				f()
			}
		}()
	}
	return h
}

func (h *Hooks) Close() {
	h.once.Do(func() {
		close(h.q)
		h.wg.Wait()
	})
}

func (h *Hooks) try(f func()) {
	select {
	case h.q <- f:
	default: // drop
	}
}

func (h *Hooks) EntryCorrupt(k, r string)     { h.try(func() { h.inner.EntryCorrupt(k, r) }) }
func (h *Hooks) ProviderSetRejected(k string) { h.try(func() { h.inner.ProviderSetRejected(k) }) }
func (h *Hooks) LoadShared(k string)          { h.try(func() { h.inner.LoadShared(k) }) }
func (h *Hooks) StoreReadError(k string, err error) {
	h.try(func() { h.inner.StoreReadError(k, err) })
}
func (h *Hooks) StoreWriteError(k string, err error) {
	h.try(func() { h.inner.StoreWriteError(k, err) })
}
