package konfetti

import (
	"context"
	stderrors "errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samarcan/konfetti/errors"
	"github.com/samarcan/konfetti/resolver"
)

// scriptedResolver is a mutable in-memory source that counts backend calls.
type scriptedResolver struct {
	name   string
	mu     sync.Mutex
	values map[string]string
	err    error
	delay  time.Duration
	calls  atomic.Int64
}

func newScripted(name string, values map[string]string) *scriptedResolver {
	if values == nil {
		values = make(map[string]string)
	}
	return &scriptedResolver{name: name, values: values}
}

func (s *scriptedResolver) Name() string { return s.name }

func (s *scriptedResolver) Resolve(_ context.Context, key string) (string, error) {
	s.calls.Add(1)
	if s.delay > 0 {
		time.Sleep(s.delay)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return "", s.err
	}
	value, ok := s.values[key]
	if !ok {
		return "", errors.ErrNotFound
	}
	return value, nil
}

func (s *scriptedResolver) set(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
}

func (s *scriptedResolver) fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

type closableStatic struct {
	resolver.Static
	closed atomic.Bool
}

func (c *closableStatic) Close() error {
	c.closed.Store(true)
	return nil
}

func newKonfig(t *testing.T, opts ...Option) *Konfig {
	t.Helper()
	k, err := New(opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = k.Close() })
	return k
}

func TestGetReturnsDefaultWhenUnset(t *testing.T) {
	k := newKonfig(t,
		WithResolvers(newScripted("backend", nil)),
		WithVariables(MustVariable("TIMEOUT", KindInt, WithDefault(30))),
	)

	timeout, err := k.Int(context.Background(), "TIMEOUT")
	require.NoError(t, err)
	assert.Equal(t, 30, timeout)
}

func TestGetPrefersResolverOverDefault(t *testing.T) {
	backend := newScripted("backend", map[string]string{"TIMEOUT": "45"})
	k := newKonfig(t,
		WithResolvers(backend),
		WithVariables(MustVariable("TIMEOUT", KindInt, WithDefault(30))),
	)

	timeout, err := k.Int(context.Background(), "TIMEOUT")
	require.NoError(t, err)
	assert.Equal(t, 45, timeout)
}

func TestGetFromEnvironment(t *testing.T) {
	t.Setenv("API_KEY", "env-secret")

	backend := newScripted("backend", nil)
	k := newKonfig(t,
		WithResolvers(backend, resolver.NewEnv()),
		WithVariables(MustVariable("API_KEY", KindString, Required())),
	)

	got, err := k.String(context.Background(), "API_KEY")
	require.NoError(t, err)
	assert.Equal(t, "env-secret", got)

	// Second access is served from the cache.
	callsAfterFirst := backend.calls.Load()
	_, err = k.String(context.Background(), "API_KEY")
	require.NoError(t, err)
	assert.Equal(t, callsAfterFirst, backend.calls.Load())
}

func TestGetMemoizesAcrossBackendChanges(t *testing.T) {
	backend := newScripted("backend", map[string]string{"LOG_LEVEL": "info"})
	k := newKonfig(t,
		WithResolvers(backend),
		WithVariables(MustVariable("LOG_LEVEL", KindString)),
	)

	first, err := k.String(context.Background(), "LOG_LEVEL")
	require.NoError(t, err)
	assert.Equal(t, "info", first)

	backend.set("LOG_LEVEL", "debug")

	second, err := k.String(context.Background(), "LOG_LEVEL")
	require.NoError(t, err)
	assert.Equal(t, "info", second, "first resolution is pinned for the container's lifetime")
	assert.Equal(t, int64(1), backend.calls.Load())
}

func TestConcurrentFirstAccessResolvesOnce(t *testing.T) {
	backend := newScripted("backend", map[string]string{"API_KEY": "shared"})
	backend.delay = 20 * time.Millisecond

	k := newKonfig(t,
		WithResolvers(backend),
		WithVariables(MustVariable("API_KEY", KindString)),
	)

	const goroutines = 50
	results := make([]string, goroutines)
	var wg sync.WaitGroup
	for i := range goroutines {
		wg.Add(1)
		go func() {
			defer wg.Done()
			value, err := k.String(context.Background(), "API_KEY")
			assert.NoError(t, err)
			results[i] = value
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(1), backend.calls.Load(), "concurrent first accesses coalesce")
	for _, r := range results {
		assert.Equal(t, "shared", r)
	}
}

func TestGetMissingWithoutDefault(t *testing.T) {
	k := newKonfig(t,
		WithResolvers(newScripted("backend", nil)),
		WithVariables(
			MustVariable("REQUIRED_KEY", KindString, Required()),
			MustVariable("OPTIONAL_KEY", KindString),
		),
	)

	// Absence is an access error whether or not the variable is required.
	_, err := k.Get(context.Background(), "REQUIRED_KEY")
	assert.True(t, errors.IsMissing(err))

	_, err = k.Get(context.Background(), "OPTIONAL_KEY")
	assert.True(t, errors.IsMissing(err))
}

func TestGetBackendErrorStopsFallback(t *testing.T) {
	broken := newScripted("vault", nil)
	broken.fail(errors.NewBackend("vault", "read", stderrors.New("connection refused")))
	fallback := newScripted("static", map[string]string{"DB_PASS": "masked"})

	k := newKonfig(t,
		WithResolvers(broken, fallback),
		WithVariables(MustVariable("DB_PASS", KindString)),
	)

	_, err := k.Get(context.Background(), "DB_PASS")
	require.Error(t, err)
	assert.True(t, errors.IsBackend(err))
	assert.Equal(t, int64(0), fallback.calls.Load())
}

func TestGetNotFoundFallsThroughChain(t *testing.T) {
	empty := newScripted("vault", nil)
	env := newScripted("env", map[string]string{"API_KEY": "from-env"})

	k := newKonfig(t,
		WithResolvers(empty, env),
		WithVariables(MustVariable("API_KEY", KindString)),
	)

	got, err := k.String(context.Background(), "API_KEY")
	require.NoError(t, err)
	assert.Equal(t, "from-env", got)
	assert.Equal(t, int64(1), empty.calls.Load())
}

func TestGetUndeclared(t *testing.T) {
	k := newKonfig(t, WithResolvers(newScripted("backend", nil)))

	_, err := k.Get(context.Background(), "NOBODY")
	assert.True(t, errors.IsUndeclared(err))
}

func TestGetFailuresAreRetried(t *testing.T) {
	backend := newScripted("backend", map[string]string{"PORT": "not-a-number"})
	k := newKonfig(t,
		WithResolvers(backend),
		WithVariables(MustVariable("PORT", KindInt)),
	)

	_, err := k.Int(context.Background(), "PORT")
	assert.True(t, errors.IsCoercion(err))

	backend.set("PORT", "8080")

	port, err := k.Int(context.Background(), "PORT")
	require.NoError(t, err)
	assert.Equal(t, 8080, port, "a failed resolution is not cached")
}

func TestTypedAccessorRejectsKindMismatch(t *testing.T) {
	backend := newScripted("backend", map[string]string{"TIMEOUT": "30"})
	k := newKonfig(t,
		WithResolvers(backend),
		WithVariables(MustVariable("TIMEOUT", KindInt)),
	)

	_, err := k.String(context.Background(), "TIMEOUT")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "declared int")
	assert.Equal(t, int64(0), backend.calls.Load(), "kind mismatch is caught before resolving")
}

func TestTimeAccessorCoversDates(t *testing.T) {
	backend := newScripted("backend", map[string]string{"LAUNCH_DATE": "2026-08-23"})
	k := newKonfig(t,
		WithResolvers(backend),
		WithVariables(MustVariable("LAUNCH_DATE", KindDate)),
	)

	got, err := k.Time(context.Background(), "LAUNCH_DATE")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 8, 23, 0, 0, 0, 0, time.UTC), got)
}

func TestDeclareRejectsDuplicates(t *testing.T) {
	k := newKonfig(t)

	require.NoError(t, k.Declare(MustVariable("KEY", KindString)))
	err := k.Declare(MustVariable("KEY", KindInt))
	assert.Error(t, err)
}

func TestAsMapResolvesEverything(t *testing.T) {
	backend := newScripted("backend", map[string]string{
		"HOSTS": "a,b,c",
		"DEBUG": "yes",
	})
	k := newKonfig(t,
		WithResolvers(backend),
		WithVariables(
			MustVariable("HOSTS", KindStringSlice),
			MustVariable("DEBUG", KindBool),
			MustVariable("TIMEOUT", KindInt, WithDefault(30)),
		),
	)

	got, err := k.AsMap(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"HOSTS":   []string{"a", "b", "c"},
		"DEBUG":   true,
		"TIMEOUT": 30,
	}, got)
}

func TestAsMapFailsOnUnresolvable(t *testing.T) {
	k := newKonfig(t,
		WithResolvers(newScripted("backend", nil)),
		WithVariables(MustVariable("MISSING", KindString)),
	)

	_, err := k.AsMap(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsMissing(err))
	assert.Contains(t, err.Error(), "MISSING")
}

func TestCloseReleasesResolversAndRejectsAccess(t *testing.T) {
	closable := &closableStatic{Static: *resolver.NewStatic(map[string]string{"KEY": "v"})}
	k := newKonfig(t,
		WithResolvers(closable),
		WithVariables(MustVariable("KEY", KindString)),
	)

	require.NoError(t, k.Close())
	assert.True(t, closable.closed.Load())

	_, err := k.Get(context.Background(), "KEY")
	assert.ErrorIs(t, err, errors.ErrClosed)

	assert.ErrorIs(t, k.Declare(MustVariable("LATE", KindString)), errors.ErrClosed)

	// Idempotent.
	assert.NoError(t, k.Close())
}

func TestWithVariablesRejectsDuplicates(t *testing.T) {
	_, err := New(WithVariables(
		MustVariable("KEY", KindString),
		MustVariable("KEY", KindInt),
	))
	assert.Error(t, err)
}

func TestNamesSorted(t *testing.T) {
	k := newKonfig(t, WithVariables(
		MustVariable("ZULU", KindString),
		MustVariable("ALPHA", KindString),
		MustVariable("MIKE", KindString),
	))

	assert.Equal(t, []string{"ALPHA", "MIKE", "ZULU"}, k.Names())
}
