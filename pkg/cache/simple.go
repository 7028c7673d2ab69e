package cache

import (
	"sync"
)

// simpleStore is a thread-safe, write-once store with no eviction policy.
type simpleStore[V any] struct {
	mu      sync.RWMutex
	items   map[string]V
	stats   *Statistics   // ALWAYS initialized
	metrics *cacheMetrics // Optional, if metrics enabled
}

// NewStore creates a new write-once store.
// Returns an error if metrics registration fails when requested.
func NewStore[V any](opts ...Option[V]) (Store[V], error) {
	options := applyOptions(opts...)

	// Stats are always initialized - observability is not optional.
	stats := NewStatistics()

	var metrics *cacheMetrics
	if options.metricsReg != nil && options.metricsPrefix != "" {
		var err error
		metrics, err = newCacheMetrics(options.metricsReg, options.metricsPrefix)
		if err != nil {
			return nil, err
		}
	}

	return &simpleStore[V]{
		items:   make(map[string]V),
		stats:   stats,
		metrics: metrics,
	}, nil
}

// Get retrieves a value by key.
func (s *simpleStore[V]) Get(key string) (V, bool) {
	s.mu.RLock()
	value, exists := s.items[key]
	s.mu.RUnlock()

	if exists {
		s.stats.Hit()
		if s.metrics != nil {
			s.metrics.recordHit()
		}
	} else {
		s.stats.Miss()
		if s.metrics != nil {
			s.metrics.recordMiss()
		}
	}

	return value, exists
}

// Set stores a value for a key with write-once semantics: an existing
// entry is never overwritten.
func (s *simpleStore[V]) Set(key string, value V) (bool, error) {
	if err := validateKey(key); err != nil {
		return false, err
	}

	s.mu.Lock()
	if _, exists := s.items[key]; exists {
		s.mu.Unlock()
		return false, nil
	}
	s.items[key] = value
	size := len(s.items)
	s.mu.Unlock()

	s.stats.Set()
	s.stats.UpdateSize(int64(size))

	if s.metrics != nil {
		s.metrics.recordSet()
		s.metrics.updateSize(size)
	}

	return true, nil
}

// Size returns the current number of entries.
func (s *simpleStore[V]) Size() int {
	s.mu.RLock()
	size := len(s.items)
	s.mu.RUnlock()
	return size
}

// Keys returns a slice of all keys currently stored.
func (s *simpleStore[V]) Keys() []string {
	s.mu.RLock()
	keys := make([]string, 0, len(s.items))
	for key := range s.items {
		keys = append(keys, key)
	}
	s.mu.RUnlock()
	return keys
}

// Stats returns store statistics.
func (s *simpleStore[V]) Stats() *Statistics {
	return s.stats
}

// Close shuts down the store. No background goroutines to clean up.
func (s *simpleStore[V]) Close() error {
	return nil
}
