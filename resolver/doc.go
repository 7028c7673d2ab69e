// Package resolver defines the polymorphic lookup capability behind every
// configuration value and its local implementations.
//
// A Resolver has exactly two outcomes for a key — a raw string value, or
// the errors.ErrNotFound sentinel — plus an out-of-band fault channel
// (*errors.BackendError) for backends that are reachable-but-erroring or
// unreachable. That explicit contract replaces attribute probing: callers
// never have to guess whether an empty result means "unset" or "broken".
//
// Local resolvers live here (Env, Static, and the ordered Chain composite);
// network-backed resolvers live in their own packages (vault, natskv) and
// satisfy the same interface.
package resolver
