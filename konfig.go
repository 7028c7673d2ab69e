package konfetti

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/samarcan/konfetti/errors"
	"github.com/samarcan/konfetti/metric"
	"github.com/samarcan/konfetti/pkg/cache"
	"github.com/samarcan/konfetti/resolver"
)

// Konfig is a configuration container: a set of declared variables, an
// ordered resolver chain and a write-once cache of resolved values.
// All methods are safe for concurrent use.
type Konfig struct {
	chain  *resolver.Chain
	values *cache.Lazy[any]

	vars   map[string]Variable
	varsMu sync.RWMutex

	logger     *slog.Logger
	metricsReg *metric.MetricsRegistry
	metrics    *metric.Metrics

	resolvers []resolver.Resolver // collected by options, consumed by New
	closed    atomic.Bool
}

// New creates a container. Resolver order is fixed here: lookups walk the
// chain in the order WithResolvers declared it.
func New(opts ...Option) (*Konfig, error) {
	k := &Konfig{
		vars:   make(map[string]Variable),
		logger: slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(k); err != nil {
			return nil, errors.Wrap(err, "Konfig", "New", "apply option")
		}
	}

	k.chain = resolver.NewChain(k.resolvers...)
	k.resolvers = nil

	var cacheOpts []cache.Option[any]
	if k.metricsReg != nil {
		cacheOpts = append(cacheOpts, cache.WithMetrics[any](k.metricsReg, "konfig"))
	}
	values, err := cache.NewLazy(cacheOpts...)
	if err != nil {
		return nil, errors.Wrap(err, "Konfig", "New", "create value cache")
	}
	k.values = values

	if k.metrics != nil {
		k.metrics.RecordVariablesDeclared(len(k.vars))
	}

	k.logger.Debug("created configuration container",
		"variables", len(k.vars), "resolvers", len(k.chain.Resolvers()))

	return k, nil
}

// Declare adds a variable to the container. Names are unique: declaring
// the same name twice is an error, it is not an update.
func (k *Konfig) Declare(v Variable) error {
	if k.closed.Load() {
		return errors.ErrClosed
	}

	k.varsMu.Lock()
	defer k.varsMu.Unlock()

	if _, exists := k.vars[v.Name()]; exists {
		return fmt.Errorf("Konfig.Declare: variable `%s` declared twice", v.Name())
	}
	k.vars[v.Name()] = v

	if k.metrics != nil {
		k.metrics.RecordVariablesDeclared(len(k.vars))
	}

	return nil
}

// Names returns the declared variable names in sorted order.
func (k *Konfig) Names() []string {
	k.varsMu.RLock()
	defer k.varsMu.RUnlock()
	return slices.Sorted(maps.Keys(k.vars))
}

// Get returns the variable's value, resolving it on first access and
// serving the memoized value afterwards. The value's dynamic type follows
// the declared kind (string, int, float64, bool, time.Duration, time.Time,
// []string or map[string]any).
func (k *Konfig) Get(ctx context.Context, name string) (any, error) {
	if k.closed.Load() {
		return nil, errors.ErrClosed
	}

	k.varsMu.RLock()
	v, ok := k.vars[name]
	k.varsMu.RUnlock()
	if !ok {
		return nil, &errors.UndeclaredVariableError{Name: name}
	}

	return k.values.GetOrResolve(ctx, name, func(ctx context.Context) (any, error) {
		return k.resolveVariable(ctx, v)
	})
}

// resolveVariable walks the chain for one variable and coerces the match.
// Runs at most once per key at a time; failures are returned uncached so
// a later access retries.
func (k *Konfig) resolveVariable(ctx context.Context, v Variable) (any, error) {
	start := time.Now()

	result, err := k.chain.Lookup(ctx, v.Name())
	if err != nil {
		if errors.IsNotFound(err) {
			if def, ok := v.Default(); ok {
				k.recordResolution("default", metric.OutcomeDefault)
				return def, nil
			}
			k.recordResolution("none", metric.OutcomeNotFound)
			return nil, &errors.MissingVariableError{Name: v.Name()}
		}

		k.recordResolution(backendSource(err), metric.OutcomeError)
		k.logger.Warn("resolution failed", "variable", v.Name(), "error", err)
		return nil, err
	}

	typed, err := coerce(v.Name(), v.Kind(), result.Raw)
	if err != nil {
		k.recordResolution(result.Source, metric.OutcomeError)
		return nil, err
	}

	k.recordResolution(result.Source, metric.OutcomeResolved)
	if k.metrics != nil {
		k.metrics.RecordResolutionDuration(result.Source, time.Since(start))
	}
	k.logger.Debug("resolved variable",
		"variable", v.Name(), "source", result.Source, "kind", v.Kind().String())

	return typed, nil
}

func (k *Konfig) recordResolution(source, outcome string) {
	if k.metrics != nil {
		k.metrics.RecordResolution(source, outcome)
	}
}

// backendSource extracts the failing resolver's name for metric labels.
func backendSource(err error) string {
	var be *errors.BackendError
	if stderrors.As(err, &be) {
		return be.Resolver
	}
	return "chain"
}

// typed fetches a variable after asserting it was declared with the
// expected kind. Kind mismatches are programming errors caught eagerly,
// before any resolution happens.
func (k *Konfig) typed(ctx context.Context, name string, want ...Kind) (any, error) {
	k.varsMu.RLock()
	v, declared := k.vars[name]
	k.varsMu.RUnlock()

	if declared && !slices.Contains(want, v.Kind()) {
		return nil, fmt.Errorf("variable `%s` is declared %s, accessed as %s",
			name, v.Kind(), want[0])
	}

	return k.Get(ctx, name)
}

// String returns a string-kind variable.
func (k *Konfig) String(ctx context.Context, name string) (string, error) {
	value, err := k.typed(ctx, name, KindString)
	if err != nil {
		return "", err
	}
	return value.(string), nil
}

// Int returns an int-kind variable.
func (k *Konfig) Int(ctx context.Context, name string) (int, error) {
	value, err := k.typed(ctx, name, KindInt)
	if err != nil {
		return 0, err
	}
	return value.(int), nil
}

// Float returns a float-kind variable.
func (k *Konfig) Float(ctx context.Context, name string) (float64, error) {
	value, err := k.typed(ctx, name, KindFloat)
	if err != nil {
		return 0, err
	}
	return value.(float64), nil
}

// Bool returns a bool-kind variable.
func (k *Konfig) Bool(ctx context.Context, name string) (bool, error) {
	value, err := k.typed(ctx, name, KindBool)
	if err != nil {
		return false, err
	}
	return value.(bool), nil
}

// Duration returns a duration-kind variable.
func (k *Konfig) Duration(ctx context.Context, name string) (time.Duration, error) {
	value, err := k.typed(ctx, name, KindDuration)
	if err != nil {
		return 0, err
	}
	return value.(time.Duration), nil
}

// Time returns a time- or date-kind variable.
func (k *Konfig) Time(ctx context.Context, name string) (time.Time, error) {
	value, err := k.typed(ctx, name, KindTime, KindDate)
	if err != nil {
		return time.Time{}, err
	}
	return value.(time.Time), nil
}

// StringSlice returns a string-slice-kind variable.
func (k *Konfig) StringSlice(ctx context.Context, name string) ([]string, error) {
	value, err := k.typed(ctx, name, KindStringSlice)
	if err != nil {
		return nil, err
	}
	return value.([]string), nil
}

// JSON returns a json-kind variable as a decoded object.
func (k *Konfig) JSON(ctx context.Context, name string) (map[string]any, error) {
	value, err := k.typed(ctx, name, KindJSON)
	if err != nil {
		return nil, err
	}
	return value.(map[string]any), nil
}

// AsMap resolves every declared variable and returns name to typed value.
// Resolution failures abort with the first failing variable's error.
func (k *Konfig) AsMap(ctx context.Context) (map[string]any, error) {
	names := k.Names()
	out := make(map[string]any, len(names))
	for _, name := range names {
		value, err := k.Get(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("Konfig.AsMap: variable `%s`: %w", name, err)
		}
		out[name] = value
	}
	return out, nil
}

// Close marks the container closed and releases resolver-held resources
// (network connections of vault/NATS resolvers) and the value cache.
// Idempotent; access after Close returns ErrClosed.
func (k *Konfig) Close() error {
	if !k.closed.CompareAndSwap(false, true) {
		return nil
	}

	k.logger.Debug("closing configuration container")

	return stderrors.Join(
		k.chain.Close(),
		k.values.Close(),
	)
}
