package lru

import (
	"context"
	"errors"
	"time"

	hlru "github.com/hashicorp/golang-lru/v2"

	pr "github.com/unkn0wn-root/asidecache/provider"
)

// Provider is a fixed-size LRU store. Like BigCache it has no per-entry
// TTL; entries live until evicted, and the accessor's embedded deadline
// keeps reads correct in the meantime.
type Provider struct {
	c *hlru.Cache[string, []byte]
}

var _ pr.Provider = (*Provider)(nil)

type Config struct {
	// Size is the maximum number of entries. Must be positive.
	Size int
}

func New(cfg Config) (*Provider, error) {
	if cfg.Size <= 0 {
		return nil, errors.New("lru: size must be positive")
	}
	c, err := hlru.New[string, []byte](cfg.Size)
	if err != nil {
		return nil, err
	}
	return &Provider{c: c}, nil
}

func (p *Provider) Get(_ context.Context, key string) ([]byte, bool, error) {
	b, ok := p.c.Get(key)
	if !ok {
		return nil, false, nil
	}
	return b, true, nil
}

func (p *Provider) Set(_ context.Context, key string, value []byte, _ int64, _ time.Duration) (bool, error) {
	p.c.Add(key, value)
	return true, nil
}

func (p *Provider) Del(_ context.Context, key string) error {
	p.c.Remove(key)
	return nil
}

func (p *Provider) Close(_ context.Context) error {
	p.c.Purge()
	return nil
}
