package resolver

import (
	"context"
	"maps"

	"github.com/samarcan/konfetti/errors"
)

// Static resolves values from a fixed in-memory mapping. Useful as the
// lowest-priority layer of a chain and as a test double.
type Static struct {
	values map[string]string
}

// NewStatic creates a static resolver over a copy of values, so later
// mutation of the caller's map cannot change resolution results.
func NewStatic(values map[string]string) *Static {
	copied := make(map[string]string, len(values))
	maps.Copy(copied, values)
	return &Static{values: copied}
}

// Name implements Resolver.
func (s *Static) Name() string {
	return "static"
}

// Resolve returns the mapped value or NotFound.
func (s *Static) Resolve(_ context.Context, key string) (string, error) {
	value, ok := s.values[key]
	if !ok {
		return "", errors.ErrNotFound
	}
	return value, nil
}
