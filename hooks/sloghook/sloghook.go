package sloghook

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"sync/atomic"

	"github.com/unkn0wn-root/asidecache"
)

type Options struct {
	// Sampling to avoid floods; 0/1 = log all.
	CorruptEvery    uint64
	LoadSharedEvery uint64
	// Optional key redactor. Defaults to SHA-256 prefix.
	Redact func(string) string
}

// Hooks logs accessor events through slog with per-event sampling and
// key redaction.
type Hooks struct {
	l    *slog.Logger
	opts Options

	corruptCtr    atomic.Uint64
	loadSharedCtr atomic.Uint64
}

var _ asidecache.Hooks = (*Hooks)(nil)

func New(l *slog.Logger, opts Options) *Hooks {
	return &Hooks{l: l, opts: opts}
}

func (h *Hooks) redact(k string) string {
	if h.opts.Redact != nil {
		return h.opts.Redact(k)
	}
	sum := sha256.Sum256([]byte(k))
	return hex.EncodeToString(sum[:8])
}

func sample(n uint64, ctr *atomic.Uint64) bool {
	if n == 0 || n == 1 {
		return true
	}
	return ctr.Add(1)%n == 0
}

func (h *Hooks) EntryCorrupt(storageKey, reason string) {
	if h.l == nil || !sample(h.opts.CorruptEvery, &h.corruptCtr) {
		return
	}
	h.l.Debug("asidecache.entry_corrupt",
		"key", h.redact(storageKey),
		"reason", reason)
}

func (h *Hooks) StoreReadError(storageKey string, err error) {
	if h.l == nil {
		return
	}
	h.l.Warn("asidecache.store_read_error",
		"key", h.redact(storageKey),
		"err", err)
}

func (h *Hooks) StoreWriteError(storageKey string, err error) {
	if h.l == nil {
		return
	}
	h.l.Warn("asidecache.store_write_error",
		"key", h.redact(storageKey),
		"err", err)
}

func (h *Hooks) ProviderSetRejected(storageKey string) {
	if h.l == nil {
		return
	}
	h.l.Warn("asidecache.provider_set_rejected",
		"key", h.redact(storageKey))
}

func (h *Hooks) LoadShared(storageKey string) {
	if h.l == nil || !sample(h.opts.LoadSharedEvery, &h.loadSharedCtr) {
		return
	}
	h.l.Debug("asidecache.load_shared",
		"key", h.redact(storageKey))
}
