package asidecache

// Hooks are lightweight callbacks for high-signal events.
// Implementations MUST be cheap and non-blocking.
// The accessor calls them on hot paths.
type Hooks interface {
	// A stored entry could not be used on read.
	// reason ∈ {"envelope", "value_decode"}
	EntryCorrupt(storageKey, reason string)

	// Provider read failed; the accessor fell through to the loader.
	StoreReadError(storageKey string, err error)

	// Provider write failed after a successful load; value still returned.
	StoreWriteError(storageKey string, err error)

	// Provider returned ok=false on Set (backpressure/eviction).
	ProviderSetRejected(storageKey string)

	// A caller attached to an already in-flight load instead of loading.
	LoadShared(storageKey string)
}

// NopHooks is the default no-op
type NopHooks struct{}

func (NopHooks) EntryCorrupt(string, string)   {}
func (NopHooks) StoreReadError(string, error)  {}
func (NopHooks) StoreWriteError(string, error) {}
func (NopHooks) ProviderSetRejected(string)    {}
func (NopHooks) LoadShared(string)             {}
