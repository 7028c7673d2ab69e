package resolver

import (
	"context"
)

// Resolver is a backend-specific lookup capability for configuration values.
//
// Resolve returns the raw string value for a key. Absence is signaled with
// the errors.ErrNotFound sentinel (matched via errors.Is), never with a
// panic or a generic error; backend faults are returned as
// *errors.BackendError. Resolvers are stateless with respect to cached
// results — memoization lives in the container — but may hold connection
// state (a secrets-store client) whose lifetime is tied to the container.
type Resolver interface {
	// Name identifies the resolver in logs, metrics and error attribution.
	Name() string

	// Resolve fetches the raw value for key from this resolver's backend.
	Resolve(ctx context.Context, key string) (string, error)
}
