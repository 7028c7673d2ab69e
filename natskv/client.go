package natskv

import (
	"context"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/samarcan/konfetti/errors"
)

// Client holds a NATS connection opened onto a single JetStream KV bucket.
type Client struct {
	conn    *nats.Conn
	js      jetstream.JetStream
	bucket  jetstream.KeyValue
	logger  *slog.Logger
	name    string
	timeout time.Duration

	// Authentication
	username string
	password string
	token    string
}

// Option is a functional option for configuring the Client.
type Option func(*Client) error

// WithName sets the client connection name visible to the NATS server.
func WithName(name string) Option {
	return func(c *Client) error {
		if name != "" {
			c.name = name
		}
		return nil
	}
}

// WithToken sets token authentication.
func WithToken(token string) Option {
	return func(c *Client) error {
		c.token = token
		return nil
	}
}

// WithCredentials sets username/password authentication.
func WithCredentials(username, password string) Option {
	return func(c *Client) error {
		c.username = username
		c.password = password
		return nil
	}
}

// WithTimeout sets the connect timeout (default 5s).
func WithTimeout(d time.Duration) Option {
	return func(c *Client) error {
		if d > 0 {
			c.timeout = d
		}
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

// Connect dials the NATS server and opens the named KV bucket. The bucket
// must already exist; provisioning it is an operator concern, not this
// client's.
func Connect(ctx context.Context, url, bucket string, opts ...Option) (*Client, error) {
	c := &Client{
		name:    "konfetti",
		timeout: 5 * time.Second,
		logger:  slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, errors.Wrap(err, "Client", "Connect", "apply option")
		}
	}

	natsOpts := []nats.Option{
		nats.Name(c.name),
		nats.Timeout(c.timeout),
	}
	if c.token != "" {
		natsOpts = append(natsOpts, nats.Token(c.token))
	}
	if c.username != "" {
		natsOpts = append(natsOpts, nats.UserInfo(c.username, c.password))
	}

	conn, err := nats.Connect(url, natsOpts...)
	if err != nil {
		return nil, errors.Wrap(err, "Client", "Connect", "connect to nats")
	}

	js, err := jetstream.New(conn)
	if err != nil {
		conn.Close()
		return nil, errors.Wrap(err, "Client", "Connect", "create jetstream context")
	}

	kv, err := js.KeyValue(ctx, bucket)
	if err != nil {
		conn.Close()
		return nil, errors.Wrap(err, "Client", "Connect", "open kv bucket")
	}

	c.conn = conn
	c.js = js
	c.bucket = kv

	c.logger.Debug("connected to nats kv", "url", url, "bucket", bucket, "name", c.name)

	return c, nil
}

// Bucket exposes the underlying KV bucket.
func (c *Client) Bucket() jetstream.KeyValue {
	return c.bucket
}

// Resolver returns a resolver over this client's bucket. The resolver
// takes ownership of the connection: closing it drains the client.
func (c *Client) Resolver(opts ...ResolverOption) *Resolver {
	opts = append(opts, withCloser(c))
	return NewResolver(c.bucket, opts...)
}

// Close drains the connection, flushing pending operations.
func (c *Client) Close() error {
	if c.conn == nil || c.conn.IsClosed() {
		return nil
	}
	if err := c.conn.Drain(); err != nil {
		return errors.Wrap(err, "Client", "Close", "drain connection")
	}
	return nil
}
