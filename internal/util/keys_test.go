package util

import (
	"strings"
	"testing"
)

func TestStorageKeyShortForm(t *testing.T) {
	got := StorageKey("user", "u:1", 512)
	if got != "entry:user:u:1" {
		t.Fatalf("got %q", got)
	}
}

func TestStorageKeyHashesLongKeys(t *testing.T) {
	long := strings.Repeat("k", 600)
	a := StorageKey("user", long, 512)
	b := StorageKey("user", long, 512)
	if a != b {
		t.Fatalf("hashing not deterministic: %q vs %q", a, b)
	}
	if len(a) > 512 {
		t.Fatalf("hashed key still too long: %d", len(a))
	}
	if !strings.HasPrefix(a, "entry:user:") {
		t.Fatalf("hashed key lost its namespace prefix: %q", a)
	}
	if a == StorageKey("user", long+"x", 512) {
		t.Fatalf("distinct long keys collided")
	}
}

func TestStorageKeyNoLimit(t *testing.T) {
	long := strings.Repeat("k", 600)
	if got := StorageKey("user", long, 0); got != "entry:user:"+long {
		t.Fatalf("maxLen=0 must not hash, got %q", got)
	}
}
