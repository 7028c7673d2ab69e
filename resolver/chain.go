package resolver

import (
	"context"
	stderrors "errors"
	"io"

	"github.com/samarcan/konfetti/errors"
)

// Result carries a resolved raw value together with the name of the
// resolver that produced it, for logging and metrics attribution.
type Result struct {
	Raw    string
	Source string
}

// Chain is an ordered composite resolver: members are tried in their
// declared order and the first non-NotFound result wins. A BackendError
// from any member propagates immediately — a misconfigured backend fails
// loudly instead of silently falling back to a lower-priority source.
// Order is fixed at construction and never reordered on latency or
// failure history.
type Chain struct {
	resolvers []Resolver
}

// NewChain creates a composite over the given resolvers. An empty chain
// is valid and resolves nothing.
func NewChain(resolvers ...Resolver) *Chain {
	chain := make([]Resolver, len(resolvers))
	copy(chain, resolvers)
	return &Chain{resolvers: chain}
}

// Name implements Resolver.
func (c *Chain) Name() string {
	return "chain"
}

// Resolve implements Resolver, discarding source attribution.
func (c *Chain) Resolve(ctx context.Context, key string) (string, error) {
	result, err := c.Lookup(ctx, key)
	if err != nil {
		return "", err
	}
	return result.Raw, nil
}

// Lookup tries each member in order and returns the first value found,
// attributed to the resolver that served it.
func (c *Chain) Lookup(ctx context.Context, key string) (Result, error) {
	for _, r := range c.resolvers {
		raw, err := r.Resolve(ctx, key)
		switch {
		case err == nil:
			return Result{Raw: raw, Source: r.Name()}, nil
		case errors.IsNotFound(err):
			continue
		default:
			// Hard backend error: no fallthrough past it.
			return Result{}, errors.NewBackend(r.Name(), "resolve", err)
		}
	}
	return Result{}, errors.ErrNotFound
}

// Resolvers returns the members in their declared order.
func (c *Chain) Resolvers() []Resolver {
	out := make([]Resolver, len(c.resolvers))
	copy(out, c.resolvers)
	return out
}

// Close releases every member that holds resources (implements io.Closer),
// regardless of which access path created them.
func (c *Chain) Close() error {
	var errs []error
	for _, r := range c.resolvers {
		if closer, ok := r.(io.Closer); ok {
			if err := closer.Close(); err != nil {
				errs = append(errs, errors.Wrap(err, "Chain", "Close", "close "+r.Name()))
			}
		}
	}
	return stderrors.Join(errs...)
}
