package redis

import (
	"context"
	"errors"
	"time"

	goredis "github.com/redis/go-redis/v9"

	pr "github.com/unkn0wn-root/asidecache/provider"
)

var ErrNilClient = errors.New("redis provider: nil client")

// Provider adapts a go-redis client to the provider contract. Redis is the
// only bundled backend with true per-entry TTL, so entries disappear
// physically when they expire, not just logically.
type Provider struct {
	rdb   goredis.UniversalClient
	owned bool
}

var _ pr.Provider = (*Provider)(nil)

type Config struct {
	Client goredis.UniversalClient
	// CloseClient makes Close shut the client down. Set it only when this
	// provider exclusively owns the connection.
	CloseClient bool
}

func New(cfg Config) (*Provider, error) {
	if cfg.Client == nil {
		return nil, ErrNilClient
	}
	return &Provider{rdb: cfg.Client, owned: cfg.CloseClient}, nil
}

func (p *Provider) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := p.rdb.Get(ctx, key).Bytes()
	switch {
	case err == goredis.Nil:
		return nil, false, nil // miss
	case err != nil:
		return nil, false, err // transport/server error
	}
	return b, true, nil
}

func (p *Provider) Set(ctx context.Context, key string, value []byte, _ int64, ttl time.Duration) (bool, error) {
	if ttl < 0 {
		ttl = 0 // non-positive => no expiry, per provider contract
	}
	if err := p.rdb.Set(ctx, key, value, ttl).Err(); err != nil {
		return false, err
	}
	return true, nil
}

func (p *Provider) Del(ctx context.Context, key string) error {
	return p.rdb.Del(ctx, key).Err()
}

// Close releases the client only when this provider owns it. Safe to call
// more than once.
func (p *Provider) Close(context.Context) error {
	if !p.owned {
		return nil
	}
	if err := p.rdb.Close(); err != nil && !errors.Is(err, goredis.ErrClosed) {
		return err
	}
	return nil
}
