// Package asidecache implements a provider-agnostic cache-aside accessor:
// read through a byte store first, fall back to an origin loader on miss,
// write the result back with a TTL, and collapse concurrent misses for the
// same key into a single origin load (single-flight).
//
// Components:
//   - Provider: byte store with TTL (e.g. Ristretto, BigCache, Redis, LRU, memory).
//   - Codec[V]: (de)serializes V <-> []byte.
//   - LoaderFunc[V]: the origin ("the database"), invoked only on a miss.
//
// Entries carry their absolute expiry inside the stored envelope, so a key
// is logically absent once its deadline passes even on providers that cannot
// expire per entry (BigCache, plain LRU).
//
// Read path:
//
//	v, src, err := cache.Get(ctx, "user:1", loadUser, time.Minute)
//	// src == asidecache.SourceCache on a hit, SourceDatabase after a load
//
// Loader failures are shared with every caller waiting on the same in-flight
// load and are never cached. Store failures degrade: a failed read is treated
// as a miss, a failed write-back is logged and the loaded value is still
// returned.
package asidecache
