package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLazyResolvesOnFirstAccess(t *testing.T) {
	lazy, err := NewLazy[string]()
	require.NoError(t, err)
	defer lazy.Close()

	var calls atomic.Int64
	resolve := func(context.Context) (string, error) {
		calls.Add(1)
		return "resolved", nil
	}

	// Nothing is pre-fetched.
	_, ok := lazy.Peek("key")
	assert.False(t, ok)
	assert.Equal(t, int64(0), calls.Load())

	v, err := lazy.GetOrResolve(context.Background(), "key", resolve)
	require.NoError(t, err)
	assert.Equal(t, "resolved", v)
	assert.Equal(t, int64(1), calls.Load())
}

func TestLazyMemoizes(t *testing.T) {
	lazy, err := NewLazy[string]()
	require.NoError(t, err)
	defer lazy.Close()

	var calls atomic.Int64
	backend := "before"
	resolve := func(context.Context) (string, error) {
		calls.Add(1)
		return backend, nil
	}

	first, err := lazy.GetOrResolve(context.Background(), "key", resolve)
	require.NoError(t, err)

	// The backend value changing underneath must not be observed.
	backend = "after"
	second, err := lazy.GetOrResolve(context.Background(), "key", resolve)
	require.NoError(t, err)

	assert.Equal(t, "before", first)
	assert.Equal(t, first, second)
	assert.Equal(t, int64(1), calls.Load())
}

func TestLazyConcurrentFirstAccessResolvesOnce(t *testing.T) {
	lazy, err := NewLazy[string]()
	require.NoError(t, err)
	defer lazy.Close()

	var calls atomic.Int64
	release := make(chan struct{})
	resolve := func(context.Context) (string, error) {
		calls.Add(1)
		<-release
		return "shared", nil
	}

	const n = 50
	results := make([]string, n)
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			v, err := lazy.GetOrResolve(context.Background(), "key", resolve)
			if err != nil {
				t.Errorf("caller %d: %v", i, err)
				return
			}
			results[i] = v
		}(i)
	}

	// Give the callers time to pile up on the in-flight resolution.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int64(1), calls.Load(), "exactly one backend call expected")
	for i := 0; i < n; i++ {
		assert.Equal(t, "shared", results[i])
	}
}

func TestLazyDifferentKeysDoNotBlockEachOther(t *testing.T) {
	lazy, err := NewLazy[string]()
	require.NoError(t, err)
	defer lazy.Close()

	slowStarted := make(chan struct{})
	slowRelease := make(chan struct{})
	go func() {
		_, _ = lazy.GetOrResolve(context.Background(), "slow", func(context.Context) (string, error) {
			close(slowStarted)
			<-slowRelease
			return "slow", nil
		})
	}()
	<-slowStarted

	done := make(chan struct{})
	go func() {
		defer close(done)
		v, err := lazy.GetOrResolve(context.Background(), "fast", func(context.Context) (string, error) {
			return "fast", nil
		})
		assert.NoError(t, err)
		assert.Equal(t, "fast", v)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("resolution of an unrelated key blocked behind an in-flight key")
	}
	close(slowRelease)
}

func TestLazyDoesNotCacheFailures(t *testing.T) {
	lazy, err := NewLazy[string]()
	require.NoError(t, err)
	defer lazy.Close()

	var calls atomic.Int64
	resolve := func(context.Context) (string, error) {
		if calls.Add(1) == 1 {
			return "", errors.New("backend unavailable")
		}
		return "recovered", nil
	}

	_, err = lazy.GetOrResolve(context.Background(), "key", resolve)
	require.Error(t, err)
	_, ok := lazy.Peek("key")
	assert.False(t, ok, "a failed resolution must not populate the cache")

	v, err := lazy.GetOrResolve(context.Background(), "key", resolve)
	require.NoError(t, err)
	assert.Equal(t, "recovered", v)
	assert.Equal(t, int64(2), calls.Load())
}

func TestLazyCancelledWaiterAbandonsButResolutionCaches(t *testing.T) {
	lazy, err := NewLazy[string]()
	require.NoError(t, err)
	defer lazy.Close()

	var calls atomic.Int64
	started := make(chan struct{})
	release := make(chan struct{})
	resolve := func(ctx context.Context) (string, error) {
		calls.Add(1)
		close(started)
		<-release
		// The resolution context is detached from the cancelled caller.
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "value", nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		_, err := lazy.GetOrResolve(ctx, "key", resolve)
		errCh <- err
	}()

	<-started
	cancel()
	err = <-errCh
	assert.ErrorIs(t, err, context.Canceled)

	// Let the detached resolution finish; it completes and caches.
	close(release)
	require.Eventually(t, func() bool {
		_, ok := lazy.Peek("key")
		return ok
	}, 2*time.Second, 5*time.Millisecond)

	v, err := lazy.GetOrResolve(context.Background(), "key", resolve)
	require.NoError(t, err)
	assert.Equal(t, "value", v)
	assert.Equal(t, int64(1), calls.Load(), "cached result must be reused after cancellation")
}

func TestLazyRejectsEmptyKey(t *testing.T) {
	lazy, err := NewLazy[string]()
	require.NoError(t, err)
	defer lazy.Close()

	_, err = lazy.GetOrResolve(context.Background(), "", func(context.Context) (string, error) {
		return "", nil
	})
	assert.ErrorIs(t, err, ErrEmptyKey)
}

func TestLazyKeysAndSize(t *testing.T) {
	lazy, err := NewLazy[int]()
	require.NoError(t, err)
	defer lazy.Close()

	_, _ = lazy.GetOrResolve(context.Background(), "a", func(context.Context) (int, error) { return 1, nil })
	_, _ = lazy.GetOrResolve(context.Background(), "b", func(context.Context) (int, error) { return 2, nil })

	assert.Equal(t, 2, lazy.Size())
	assert.ElementsMatch(t, []string{"a", "b"}, lazy.Keys())
}
