package vault

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samarcan/konfetti/errors"
)

// fakeReader serves canned secrets and records read paths.
type fakeReader struct {
	secrets map[string]map[string]any
	err     error
	reads   []string
	closed  bool
}

func (f *fakeReader) ReadSecret(_ context.Context, path string) (map[string]any, error) {
	f.reads = append(f.reads, path)
	if f.err != nil {
		return nil, f.err
	}
	data, ok := f.secrets[path]
	if !ok {
		return nil, errors.ErrNotFound
	}
	return data, nil
}

func (f *fakeReader) Close() error {
	f.closed = true
	return nil
}

func TestResolverConventionMapping(t *testing.T) {
	reader := &fakeReader{secrets: map[string]map[string]any{
		"path/to": {"SECRET": "value"},
	}}
	r := NewResolver(reader)

	got, err := r.Resolve(context.Background(), "PATH__TO__SECRET")
	require.NoError(t, err)
	assert.Equal(t, "value", got)
	assert.Equal(t, []string{"path/to"}, reader.reads)
}

func TestResolverExplicitRefOverridesConvention(t *testing.T) {
	reader := &fakeReader{secrets: map[string]map[string]any{
		"db/primary": {"password": "hunter2"},
	}}
	r := NewResolver(reader, WithSecret("DB_PASS", "db/primary", "password"))

	got, err := r.Resolve(context.Background(), "DB_PASS")
	require.NoError(t, err)
	assert.Equal(t, "hunter2", got)
}

func TestResolverUnmappableNameIsNotFound(t *testing.T) {
	reader := &fakeReader{}
	r := NewResolver(reader)

	// No "__" separator and no explicit ref: nothing to address in Vault.
	_, err := r.Resolve(context.Background(), "TIMEOUT")
	assert.True(t, errors.IsNotFound(err))
	assert.Empty(t, reader.reads, "unmappable names must not hit the backend")
}

func TestResolverMissingPathIsNotFound(t *testing.T) {
	reader := &fakeReader{secrets: map[string]map[string]any{}}
	r := NewResolver(reader)

	_, err := r.Resolve(context.Background(), "PATH__TO__SECRET")
	assert.True(t, errors.IsNotFound(err))
}

func TestResolverMissingFieldIsNotFound(t *testing.T) {
	reader := &fakeReader{secrets: map[string]map[string]any{
		"path/to": {"OTHER": "value"},
	}}
	r := NewResolver(reader)

	_, err := r.Resolve(context.Background(), "PATH__TO__SECRET")
	assert.True(t, errors.IsNotFound(err))
}

func TestResolverPropagatesBackendError(t *testing.T) {
	reader := &fakeReader{err: errors.NewBackend("vault", "read", stderrors.New("permission denied"))}
	r := NewResolver(reader)

	_, err := r.Resolve(context.Background(), "PATH__TO__SECRET")
	assert.True(t, errors.IsBackend(err))
	assert.False(t, errors.IsNotFound(err))
}

func TestResolverRendersScalarValues(t *testing.T) {
	reader := &fakeReader{secrets: map[string]map[string]any{
		"flags/all": {
			"ENABLED": true,
			"RATIO":   json.Number("1.3"),
			"COUNT":   float64(42),
			"NAME":    "plain",
			"EXTRA":   map[string]any{"nested": "yes"},
		},
	}}
	r := NewResolver(reader)

	cases := map[string]string{
		"FLAGS__ALL__ENABLED": "true",
		"FLAGS__ALL__RATIO":   "1.3",
		"FLAGS__ALL__COUNT":   "42",
		"FLAGS__ALL__NAME":    "plain",
		"FLAGS__ALL__EXTRA":   `{"nested":"yes"}`,
	}
	for key, want := range cases {
		got, err := r.Resolve(context.Background(), key)
		require.NoError(t, err, key)
		assert.Equal(t, want, got, key)
	}
}

func TestResolverNilFieldIsNotFound(t *testing.T) {
	reader := &fakeReader{secrets: map[string]map[string]any{
		"path/to": {"SECRET": nil},
	}}
	r := NewResolver(reader)

	_, err := r.Resolve(context.Background(), "PATH__TO__SECRET")
	assert.True(t, errors.IsNotFound(err))
}

func TestResolverName(t *testing.T) {
	assert.Equal(t, "vault", NewResolver(&fakeReader{}).Name())
}

func TestResolverCloseReleasesClient(t *testing.T) {
	reader := &fakeReader{}
	r := NewResolver(reader)

	require.NoError(t, r.Close())
	assert.True(t, reader.closed)
}
