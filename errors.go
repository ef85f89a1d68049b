package asidecache

import "errors"

var (
	// ErrEmptyKey is returned by Get/Peek/Set/Invalidate for an empty key.
	ErrEmptyKey = errors.New("asidecache: empty key")

	// ErrNilLoader is returned by Get when no loader is supplied.
	ErrNilLoader = errors.New("asidecache: nil loader")
)
