package storage

import (
	"errors"
	"io"
)

// ErrClosed is returned by operations on a closed backend.
var ErrClosed = errors.New("storage backend is closed")

// Backend is a flat, synchronous, string-keyed key/value store.
// Values are plain strings; any serialization happens above this layer.
// Implementations must be safe for concurrent use.
type Backend interface {
	// GetItem returns the value stored under key.
	// ok is false when the key is absent.
	GetItem(key string) (value string, ok bool, err error)

	// SetItem stores value under key, overwriting any previous value.
	SetItem(key, value string) error

	// RemoveItem deletes key. Removing an absent key is not an error.
	RemoveItem(key string) error

	// Clear deletes every key in the backend.
	Clear() error

	// Keys returns all keys currently present, in no particular order.
	Keys() ([]string, error)

	io.Closer
}
