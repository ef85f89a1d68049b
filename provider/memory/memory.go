package memory

import (
	"context"
	"sync"
	"time"

	pr "github.com/unkn0wn-root/asidecache/provider"
)

type entry struct {
	value     []byte
	expiresAt time.Time // zero => no TTL
}

// Provider is an in-process byte store guarded by a RWMutex, with an
// optional background sweep that prunes expired entries. Reads also lazily
// drop entries found expired, so the sweep only bounds memory, not
// correctness.
type Provider struct {
	mu      sync.RWMutex
	entries map[string]entry

	ticker *time.Ticker
	stopCh chan struct{}
	wg     sync.WaitGroup
	once   sync.Once
}

var _ pr.Provider = (*Provider)(nil)

type Config struct {
	// SweepInterval is how often expired entries are pruned.
	// 0 disables the background sweep.
	SweepInterval time.Duration
}

func New(cfg Config) *Provider {
	p := &Provider{entries: make(map[string]entry)}
	if cfg.SweepInterval > 0 {
		p.ticker = time.NewTicker(cfg.SweepInterval)
		p.stopCh = make(chan struct{})
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for {
				select {
				case <-p.ticker.C:
					p.sweep(time.Now())
				case <-p.stopCh:
					return
				}
			}
		}()
	}
	return p
}

func (p *Provider) Get(_ context.Context, key string) ([]byte, bool, error) {
	p.mu.RLock()
	e, ok := p.entries[key]
	p.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	if !e.expiresAt.IsZero() && time.Now().After(e.expiresAt) {
		p.mu.Lock()
		// re-check under the write lock; a concurrent Set may have renewed it
		if cur, ok := p.entries[key]; ok && cur.expiresAt.Equal(e.expiresAt) {
			delete(p.entries, key)
		}
		p.mu.Unlock()
		return nil, false, nil
	}
	return e.value, true, nil
}

func (p *Provider) Set(_ context.Context, key string, value []byte, _ int64, ttl time.Duration) (bool, error) {
	var exp time.Time
	if ttl > 0 {
		exp = time.Now().Add(ttl)
	}
	p.mu.Lock()
	p.entries[key] = entry{value: value, expiresAt: exp}
	p.mu.Unlock()
	return true, nil
}

func (p *Provider) Del(_ context.Context, key string) error {
	p.mu.Lock()
	delete(p.entries, key)
	p.mu.Unlock()
	return nil
}

func (p *Provider) Close(_ context.Context) error {
	p.once.Do(func() {
		if p.stopCh != nil {
			close(p.stopCh)
			p.ticker.Stop()
			p.wg.Wait()
		}
	})
	return nil
}

// Len reports the number of stored entries, expired or not. Test helper.
func (p *Provider) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.entries)
}

func (p *Provider) sweep(now time.Time) {
	p.mu.Lock()
	for k, e := range p.entries {
		if !e.expiresAt.IsZero() && now.After(e.expiresAt) {
			delete(p.entries, k)
		}
	}
	p.mu.Unlock()
}
