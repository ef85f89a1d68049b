package util

import (
	"crypto/sha256"
	"fmt"
)

// StorageKey builds the namespaced storage key "entry:<ns>:<key>".
// Keys that would exceed maxLen are replaced by a short deterministic
// hash so backends with key-size limits stay usable; the same user key
// always maps to the same storage key.
func StorageKey(ns, key string, maxLen int) string {
	k := "entry:" + ns + ":" + key
	if maxLen <= 0 || len(k) <= maxLen {
		return k
	}
	sum := sha256.Sum256([]byte(key))
	return fmt.Sprintf("entry:%s:%x", ns, sum[:8])
}
