package resolver

import (
	"context"
	"os"

	"github.com/samarcan/konfetti/errors"
)

// Env resolves values from process environment variables. Lookups are
// local and effectively instantaneous, so Env is safe to place anywhere
// in a chain and never blocks.
type Env struct {
	prefix string
}

// EnvOption configures an Env resolver.
type EnvOption func(*Env)

// WithPrefix prepends a fixed prefix to every looked-up variable name,
// e.g. WithPrefix("MYAPP_") resolves key "TIMEOUT" from MYAPP_TIMEOUT.
func WithPrefix(prefix string) EnvOption {
	return func(e *Env) {
		e.prefix = prefix
	}
}

// NewEnv creates an environment resolver.
func NewEnv(opts ...EnvOption) *Env {
	e := &Env{}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Name implements Resolver.
func (e *Env) Name() string {
	return "env"
}

// Resolve reads the raw string from the process environment. An unset
// variable is NotFound; an empty-but-set variable is a valid empty value.
func (e *Env) Resolve(_ context.Context, key string) (string, error) {
	value, ok := os.LookupEnv(e.prefix + key)
	if !ok {
		return "", errors.ErrNotFound
	}
	return value, nil
}
