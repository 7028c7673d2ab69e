// Package konfetti provides declarative, lazily resolved configuration
// backed by pluggable sources.
//
// # Model
//
// Applications declare Variables (name, kind, optional default, required
// flag) on a Konfig container wired to an ordered list of resolvers.
// Nothing touches a backend at declaration time: the first access of a
// variable walks the resolver chain, coerces the raw value to the declared
// kind and memoizes the result for the container's lifetime. Concurrent
// first accesses of the same variable coalesce into a single backend call.
//
//	┌───────────┐   miss    ┌───────────────┐   first match   ┌─────────┐
//	│  Konfig   ├──────────►│ resolver.Chain├────────────────►│ backend │
//	│ (cache)   │◄──────────┤ env→vault→... │◄────────────────┤  value  │
//	└───────────┘  memoize  └───────────────┘                 └─────────┘
//
// # Resolvers
//
// Four resolver families ship with the module:
//   - resolver.Env: process environment, optional prefix
//   - resolver.Static: fixed in-memory map
//   - vault.Resolver: HashiCorp Vault KV secrets
//   - natskv.Resolver: NATS JetStream KV bucket
//
// resolver.Chain composes them in priority order. A source that has no
// value falls through to the next one; a source whose backend fails stops
// the lookup so a broken secrets store is never silently masked by a
// lower-priority default.
//
// # Usage
//
//	k, err := konfetti.New(
//	    konfetti.WithResolvers(vaultResolver, resolver.NewEnv()),
//	    konfetti.WithVariables(
//	        konfetti.MustVariable("API_KEY", konfetti.KindString, konfetti.Required()),
//	        konfetti.MustVariable("TIMEOUT", konfetti.KindInt, konfetti.WithDefault(30)),
//	    ),
//	)
//	if err != nil { ... }
//	defer k.Close()
//
//	// Fail fast at startup instead of mid-request.
//	if failures := k.Validate(ctx); len(failures) > 0 { ... }
//
//	timeout, err := k.Int(ctx, "TIMEOUT")
//
// # Error taxonomy
//
// Access errors distinguish four situations (see the errors package):
// a variable nobody declared (UndeclaredVariableError), a declared variable
// no source can provide (MissingVariableError), a backend that is broken
// rather than empty (BackendError), and a value that exists but does not
// parse as its declared kind (CoercionError).
//
// There is no package-level default container: construction is always
// explicit, and each container owns its resolvers, cache and metrics.
package konfetti
