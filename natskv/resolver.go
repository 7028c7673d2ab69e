package natskv

import (
	"context"
	stderrors "errors"
	"io"
	"time"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/samarcan/konfetti/errors"
)

// Bucket is the narrow KV capability the resolver depends on.
type Bucket interface {
	Get(ctx context.Context, key string) (jetstream.KeyValueEntry, error)
}

// Resolver resolves variable names as keys of a JetStream KV bucket.
// Values are stored raw: whatever bytes the bucket holds for a key are
// surfaced verbatim for the container's type coercion.
type Resolver struct {
	bucket  Bucket
	closer  io.Closer
	timeout time.Duration
}

// ResolverOption is a functional option for configuring the Resolver.
type ResolverOption func(*Resolver)

// WithOpTimeout bounds each KV read (default 5s).
func WithOpTimeout(d time.Duration) ResolverOption {
	return func(r *Resolver) {
		if d > 0 {
			r.timeout = d
		}
	}
}

func withCloser(c io.Closer) ResolverOption {
	return func(r *Resolver) {
		r.closer = c
	}
}

// NewResolver creates a resolver over a KV bucket. Prefer Client.Resolver,
// which also wires connection ownership.
func NewResolver(bucket Bucket, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		bucket:  bucket,
		timeout: 5 * time.Second,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Name implements resolver.Resolver.
func (r *Resolver) Name() string {
	return "nats-kv"
}

// Resolve reads the key from the bucket. Absent keys, and names the KV
// key grammar cannot express, are NotFound so the chain can fall through.
func (r *Resolver) Resolve(ctx context.Context, key string) (string, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	entry, err := r.bucket.Get(ctx, key)
	if err != nil {
		if stderrors.Is(err, jetstream.ErrKeyNotFound) || stderrors.Is(err, jetstream.ErrInvalidKey) {
			return "", errors.ErrNotFound
		}
		return "", errors.NewBackend("nats-kv", "get", err)
	}

	return string(entry.Value()), nil
}

// Close releases the owning client when the resolver has one.
func (r *Resolver) Close() error {
	if r.closer != nil {
		return r.closer.Close()
	}
	return nil
}
