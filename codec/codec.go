// Package codec provides pluggable value (de)serialization for asidecache.
// A Codec must round-trip exactly: Decode(Encode(v)) yields an equal value.
package codec

// Codec encodes/decodes values V to []byte for storage.
type Codec[V any] interface {
	Encode(V) ([]byte, error)
	Decode([]byte) (V, error)
}
