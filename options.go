package konfetti

import (
	"fmt"
	"log/slog"

	"github.com/samarcan/konfetti/metric"
	"github.com/samarcan/konfetti/resolver"
)

// Option is a functional option for configuring a Konfig container.
type Option func(*Konfig) error

// WithResolvers appends resolvers to the container's chain, in priority
// order. The order is fixed once New returns.
func WithResolvers(resolvers ...resolver.Resolver) Option {
	return func(k *Konfig) error {
		k.resolvers = append(k.resolvers, resolvers...)
		return nil
	}
}

// WithVariables declares variables at construction time. Duplicate names
// are rejected, same as Declare.
func WithVariables(vars ...Variable) Option {
	return func(k *Konfig) error {
		for _, v := range vars {
			if _, exists := k.vars[v.Name()]; exists {
				return fmt.Errorf("variable `%s` declared twice", v.Name())
			}
			k.vars[v.Name()] = v
		}
		return nil
	}
}

// WithLogger sets a custom logger for the container.
func WithLogger(logger *slog.Logger) Option {
	return func(k *Konfig) error {
		if logger != nil {
			k.logger = logger
		}
		return nil
	}
}

// WithMetrics wires the container to a metrics registry: resolution
// counters and durations, validation failures and the declared-variable
// gauge, plus the value cache's hit/miss series.
func WithMetrics(registry *metric.MetricsRegistry) Option {
	return func(k *Konfig) error {
		if registry != nil {
			k.metricsReg = registry
			k.metrics = registry.CoreMetrics()
		}
		return nil
	}
}
