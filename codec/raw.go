package codec

// Bytes is an identity codec for []byte values: Encode and Decode return
// the input unchanged. Useful when the value already is a raw byte slice
// and only the accessor's envelope and expiry handling are wanted.
type Bytes struct{}

func (Bytes) Encode(b []byte) ([]byte, error) { return b, nil }
func (Bytes) Decode(b []byte) ([]byte, error) { return b, nil }

// String is a trivial codec for Go strings. Assumes UTF-8 by convention
// and performs no validation.
type String struct{}

func (String) Encode(s string) ([]byte, error) { return []byte(s), nil }
func (String) Decode(b []byte) (string, error) { return string(b), nil }
