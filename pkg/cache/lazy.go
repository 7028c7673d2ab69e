package cache

import (
	"context"

	"golang.org/x/sync/singleflight"
)

// ResolveFunc produces the value for a key on first access.
type ResolveFunc[V any] func(ctx context.Context) (V, error)

// Lazy memoizes values produced by ResolveFuncs with an at-most-one
// resolution guarantee per key. Concurrent first accesses to the same key
// coalesce into a single call; accesses to different keys never block each
// other. Failed resolutions are not cached, so a transient startup race
// does not permanently poison a key.
type Lazy[V any] struct {
	store  Store[V]
	flight singleflight.Group
}

// NewLazy creates a lazy cache backed by a write-once store.
func NewLazy[V any](opts ...Option[V]) (*Lazy[V], error) {
	store, err := NewStore[V](opts...)
	if err != nil {
		return nil, err
	}
	return &Lazy[V]{store: store}, nil
}

// GetOrResolve returns the cached value for key, resolving it with fn on
// first access. Under concurrent first access, fn runs exactly once and
// every caller observes the same value.
//
// fn runs on a context detached from the caller's cancellation: a caller
// that gives up waiting abandons the result, but the in-flight resolution
// completes and caches for the next access. A failing fn caches nothing.
func (l *Lazy[V]) GetOrResolve(ctx context.Context, key string, fn ResolveFunc[V]) (V, error) {
	var zero V

	if err := validateKey(key); err != nil {
		return zero, err
	}

	if v, ok := l.store.Get(key); ok {
		return v, nil
	}

	ch := l.flight.DoChan(key, func() (any, error) {
		// Re-check inside the flight: a call that completed between the
		// miss above and this point has already populated the store.
		if v, ok := l.store.Get(key); ok {
			return v, nil
		}

		v, err := fn(context.WithoutCancel(ctx))
		if err != nil {
			return zero, err
		}
		if _, err := l.store.Set(key, v); err != nil {
			return zero, err
		}
		return v, nil
	})

	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		return res.Val.(V), nil
	}
}

// Peek returns the cached value without triggering resolution.
func (l *Lazy[V]) Peek(key string) (V, bool) {
	return l.store.Get(key)
}

// Keys returns the keys that have been resolved so far.
func (l *Lazy[V]) Keys() []string {
	return l.store.Keys()
}

// Size returns the number of resolved entries.
func (l *Lazy[V]) Size() int {
	return l.store.Size()
}

// Stats returns the underlying store statistics.
func (l *Lazy[V]) Stats() *Statistics {
	return l.store.Stats()
}

// Close releases the underlying store.
func (l *Lazy[V]) Close() error {
	return l.store.Close()
}
