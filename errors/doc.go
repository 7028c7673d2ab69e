// Package errors provides the error taxonomy shared by all konfetti packages.
//
// # Overview
//
// Configuration resolution has four distinct failure modes, and conflating
// them is the classic source of silent misconfiguration. This package keeps
// them apart:
//
//   - ErrNotFound: a specific resolver has no value for the key. This is an
//     internal signal, handled by fallthrough inside the resolution pipeline,
//     and never surfaces to application code.
//   - MissingVariableError: no resolver produced a value and no default is
//     declared. Surfaced at the access site or collected by Konfig.Validate.
//   - BackendError: a resolver's backend failed (auth, connectivity,
//     malformed response). Surfaced immediately; a hard backend error is
//     never masked by falling through to a lower-priority resolver.
//   - CoercionError: a raw value exists but cannot be converted to the
//     declared kind, so "missing" and "malformed" are never confused.
//
// # Usage
//
// Resolvers signal absence with the sentinel:
//
//	val, ok := os.LookupEnv(key)
//	if !ok {
//	    return "", errors.ErrNotFound
//	}
//
// Callers classify with the predicates:
//
//	if _, err := cfg.Get(ctx, "DB_PASS"); err != nil {
//	    switch {
//	    case errors.IsMissing(err):
//	        // declare a default or set the variable
//	    case errors.IsBackend(err):
//	        // fix the backend, do not fall back silently
//	    }
//	}
//
// All types support errors.Is, errors.As and wrapping chains. Wrap applies
// the standardized "component.method: action failed: %w" format used across
// the codebase.
package errors
