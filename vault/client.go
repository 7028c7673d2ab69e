package vault

import (
	"context"
	stderrors "errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	vaultapi "github.com/hashicorp/vault/api"

	"github.com/samarcan/konfetti/errors"
	"github.com/samarcan/konfetti/pkg/retry"
)

// Client reads secrets from a Vault KV store over its HTTP API with
// token-based auth. Transient failures (connectivity, 5xx) are retried
// per the configured policy; authentication failures and missing paths
// are surfaced as distinct outcomes and never retried.
type Client struct {
	api        *vaultapi.Client
	httpClient *http.Client
	mount      string
	prefix     string
	timeout    time.Duration
	retryCfg   retry.Config
	logger     *slog.Logger
}

// Option is a functional option for configuring the Client.
type Option func(*Client) error

// WithMount sets the KV secrets-engine mount point (default "secret").
func WithMount(mount string) Option {
	return func(c *Client) error {
		c.mount = strings.Trim(mount, "/")
		return nil
	}
}

// WithPrefix sets a path prefix prepended to every secret path.
// Leading and trailing slashes don't matter.
func WithPrefix(prefix string) Option {
	return func(c *Client) error {
		c.prefix = strings.Trim(prefix, "/")
		return nil
	}
}

// WithTimeout sets the per-read timeout (default 5s).
func WithTimeout(d time.Duration) Option {
	return func(c *Client) error {
		if d > 0 {
			c.timeout = d
		}
		return nil
	}
}

// WithRetry sets the retry policy for transient backend failures.
func WithRetry(cfg retry.Config) Option {
	return func(c *Client) error {
		c.retryCfg = cfg
		return nil
	}
}

// WithLogger sets a custom logger for the client.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) error {
		if logger != nil {
			c.logger = logger
		}
		return nil
	}
}

// WithHTTPClient overrides the underlying HTTP client, e.g. to configure
// TLS or connection pooling.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) error {
		if httpClient != nil {
			c.httpClient = httpClient
		}
		return nil
	}
}

// New creates a Vault client for the given address and token.
func New(address, token string, opts ...Option) (*Client, error) {
	c := &Client{
		mount:    "secret",
		timeout:  5 * time.Second,
		retryCfg: retry.DefaultConfig(),
		logger:   slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, errors.Wrap(err, "Client", "New", "apply option")
		}
	}

	cfg := vaultapi.DefaultConfig()
	cfg.Address = address
	// Retrying is this client's job, with classification-aware policy.
	cfg.MaxRetries = 0
	if c.httpClient != nil {
		cfg.HttpClient = c.httpClient
	}

	apiClient, err := vaultapi.NewClient(cfg)
	if err != nil {
		return nil, errors.Wrap(err, "Client", "New", "create vault api client")
	}
	apiClient.SetToken(token)

	c.api = apiClient
	c.httpClient = cfg.HttpClient

	c.logger.Debug("created vault client", "address", address, "mount", c.mount, "prefix", c.prefix)

	return c, nil
}

// ReadSecret reads the key/value payload stored at path. Paths tolerate
// leading/trailing slashes and are joined under the configured prefix.
// A missing path returns errors.ErrNotFound; auth and connectivity
// failures return a *errors.BackendError.
func (c *Client) ReadSecret(ctx context.Context, path string) (map[string]any, error) {
	full := c.secretPath(path)

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	secret, err := retry.DoWithResult(ctx, c.retryCfg, func() (*vaultapi.Secret, error) {
		s, rerr := c.api.Logical().ReadWithContext(ctx, full)
		if rerr != nil {
			return nil, classifyReadError(rerr)
		}
		return s, nil
	})
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, errors.ErrNotFound
		}
		// Strip the retry marker so callers see the classified cause.
		var nre *retry.NonRetryableError
		if stderrors.As(err, &nre) {
			err = nre.Err
		}
		c.logger.Warn("vault read failed", "path", full, "error", err)
		return nil, errors.NewBackend("vault", "read", err)
	}

	data := secretData(secret)
	if data == nil {
		return nil, errors.ErrNotFound
	}

	c.logger.Debug("vault secret read", "path", full, "keys", len(data))

	return data, nil
}

// classifyReadError maps a vault API error to the retry policy: definitive
// responses (not found, denied) are non-retryable, everything else —
// connectivity failures, 5xx — is left retryable.
func classifyReadError(err error) error {
	var respErr *vaultapi.ResponseError
	if stderrors.As(err, &respErr) {
		switch respErr.StatusCode {
		case http.StatusNotFound:
			return retry.NonRetryable(errors.ErrNotFound)
		case http.StatusUnauthorized, http.StatusForbidden:
			return retry.NonRetryable(errors.NewBackend("vault", "read", err))
		case http.StatusBadRequest:
			return retry.NonRetryable(errors.NewBackend("vault", "read", err))
		}
	}
	return err
}

// secretData extracts the user payload from a read response, handling
// both KV v2 (payload nested under "data") and KV v1 layouts. A nil
// result means the path holds no secret (e.g. deleted KV v2 version).
func secretData(secret *vaultapi.Secret) map[string]any {
	if secret == nil || secret.Data == nil {
		return nil
	}
	if nested, ok := secret.Data["data"]; ok {
		data, ok := nested.(map[string]any)
		if !ok {
			// KV v2 path with a deleted or destroyed version.
			return nil
		}
		return data
	}
	return secret.Data
}

// secretPath joins mount, prefix and path into the KV v2 read path.
func (c *Client) secretPath(path string) string {
	parts := []string{c.mount, "data"}
	if c.prefix != "" {
		parts = append(parts, c.prefix)
	}
	if trimmed := strings.Trim(path, "/"); trimmed != "" {
		parts = append(parts, trimmed)
	}
	return strings.Join(parts, "/")
}

// Close releases pooled network connections held by the client.
func (c *Client) Close() error {
	if c.httpClient != nil {
		c.httpClient.CloseIdleConnections()
	}
	return nil
}
