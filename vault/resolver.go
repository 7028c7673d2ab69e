package vault

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/samarcan/konfetti/errors"
)

// SecretReader is the narrow client capability the resolver depends on.
type SecretReader interface {
	ReadSecret(ctx context.Context, path string) (map[string]any, error)
}

// SecretRef addresses one field inside one secret.
type SecretRef struct {
	Path  string
	Field string
}

// Resolver resolves variable names against a Vault secrets store.
//
// Names map to secrets either through explicit references (WithSecret) or,
// by default, through the double-underscore convention: PATH__TO__SECRET
// addresses field "SECRET" of the secret at "path/to". Names without a
// path separator have no secret address and resolve to NotFound, letting
// the chain fall through to other sources.
type Resolver struct {
	client SecretReader
	refs   map[string]SecretRef
}

// ResolverOption is a functional option for configuring the Resolver.
type ResolverOption func(*Resolver)

// WithSecret maps a variable name to an explicit secret path and field,
// overriding the naming convention for that name.
func WithSecret(name, path, field string) ResolverOption {
	return func(r *Resolver) {
		r.refs[name] = SecretRef{Path: strings.Trim(path, "/"), Field: field}
	}
}

// NewResolver creates a resolver over a secret-reading client.
func NewResolver(client SecretReader, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		client: client,
		refs:   make(map[string]SecretRef),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Name implements resolver.Resolver.
func (r *Resolver) Name() string {
	return "vault"
}

// Resolve fetches the secret field addressed by key and renders it to the
// raw string form the container's coercion expects. A secret that exists
// but lacks the addressed field is NotFound, not an error: presence of a
// path says nothing about which fields it carries.
func (r *Resolver) Resolve(ctx context.Context, key string) (string, error) {
	ref, ok := r.ref(key)
	if !ok {
		return "", errors.ErrNotFound
	}

	data, err := r.client.ReadSecret(ctx, ref.Path)
	if err != nil {
		return "", err
	}

	value, ok := data[ref.Field]
	if !ok {
		return "", errors.ErrNotFound
	}

	return renderValue(value)
}

// ref returns the secret address for a variable name.
func (r *Resolver) ref(key string) (SecretRef, bool) {
	if ref, ok := r.refs[key]; ok {
		return ref, true
	}

	segments := strings.Split(key, "__")
	if len(segments) < 2 {
		return SecretRef{}, false
	}
	field := segments[len(segments)-1]
	path := strings.ToLower(strings.Join(segments[:len(segments)-1], "/"))
	return SecretRef{Path: path, Field: field}, true
}

// renderValue converts a decoded secret field to its raw string form.
// Vault payloads are JSON, so scalars may arrive as bool or json.Number;
// structured values are re-encoded so JSON-kind variables round-trip.
func renderValue(value any) (string, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case bool:
		return strconv.FormatBool(v), nil
	case json.Number:
		return v.String(), nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	case nil:
		return "", errors.ErrNotFound
	default:
		encoded, err := json.Marshal(v)
		if err != nil {
			return "", errors.NewBackend("vault", "render", fmt.Errorf("unrenderable secret value: %w", err))
		}
		return string(encoded), nil
	}
}

// Close releases the underlying client when the resolver owns one.
func (r *Resolver) Close() error {
	if closer, ok := r.client.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
