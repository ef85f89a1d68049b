package asidecache

import "sync/atomic"

// stats holds the accessor's running counters. All fields are updated
// atomically on the hot path; Snapshot reads are not mutually consistent
// across counters (monitoring, not accounting).
type stats struct {
	hits             atomic.Uint64
	misses           atomic.Uint64
	expirations      atomic.Uint64
	loads            atomic.Uint64
	loadErrors       atomic.Uint64
	dedupedLoads     atomic.Uint64
	storeReadErrors  atomic.Uint64
	storeWriteErrors atomic.Uint64
}

// StatsSnapshot is a point-in-time copy of the accessor counters.
type StatsSnapshot struct {
	Hits             uint64 `json:"hits"`
	Misses           uint64 `json:"misses"`
	Expirations      uint64 `json:"expirations"`
	Loads            uint64 `json:"loads"`
	LoadErrors       uint64 `json:"load_errors"`
	DedupedLoads     uint64 `json:"deduped_loads"`
	StoreReadErrors  uint64 `json:"store_read_errors"`
	StoreWriteErrors uint64 `json:"store_write_errors"`
}

func (s *stats) snapshot() StatsSnapshot {
	return StatsSnapshot{
		Hits:             s.hits.Load(),
		Misses:           s.misses.Load(),
		Expirations:      s.expirations.Load(),
		Loads:            s.loads.Load(),
		LoadErrors:       s.loadErrors.Load(),
		DedupedLoads:     s.dedupedLoads.Load(),
		StoreReadErrors:  s.storeReadErrors.Load(),
		StoreWriteErrors: s.storeWriteErrors.Load(),
	}
}
