// Package vault resolves configuration values from a HashiCorp Vault KV
// secrets engine.
//
// The Client wraps the official API client with token auth, a per-read
// timeout, and a classification-aware retry policy: connectivity failures
// and 5xx responses are retried with exponential backoff, while missing
// paths (NotFound) and denied requests (BackendError) are definitive and
// fail immediately. KV v2 and v1 response layouts are both handled, and
// secret paths tolerate leading/trailing slashes around the configured
// prefix.
//
// The Resolver maps variable names to secret fields, by explicit reference
// or by the PATH__TO__FIELD naming convention, and renders decoded JSON
// values back to raw strings for the container's type coercion. It owns
// the client's network resources: closing the resolver (normally via the
// container's Close) releases pooled connections.
package vault
