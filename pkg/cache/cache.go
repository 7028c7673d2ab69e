package cache

import (
	"errors"
)

// Store is a generic, thread-safe, write-once key/value store.
// The store is parameterized by value type V for type safety.
type Store[V any] interface {
	// Get retrieves a value by key. Returns the value and true if found,
	// zero value and false otherwise.
	Get(key string) (V, bool)

	// Set stores a value for a key that has no value yet. Returns true if
	// the entry was created, false if the key already held a value (the
	// existing value is kept; entries are write-once).
	Set(key string, value V) (bool, error)

	// Size returns the current number of entries.
	Size() int

	// Keys returns a slice of all keys currently stored.
	Keys() []string

	// Stats returns the always-on statistics for this store.
	Stats() *Statistics

	// Close releases any resources held by the store.
	Close() error
}

// ErrEmptyKey is returned for operations on an empty key.
var ErrEmptyKey = errors.New("cache: key cannot be empty")

// validateKey validates a cache key for basic requirements.
func validateKey(key string) error {
	if key == "" {
		return ErrEmptyKey
	}
	return nil
}
