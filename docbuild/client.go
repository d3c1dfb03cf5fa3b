package docbuild

import (
	"context"
	"net/http"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/jrsteele09/go-docbuild/token"
	"github.com/jrsteele09/go-docbuild/token/disk"
	"github.com/jrsteele09/go-docbuild/transport"
)

// tokenResource is the token endpoint, relative to Options.URL.
const tokenResource = "oauth/token"

// Client calls the DocBuild API, managing the bearer token transparently.
//
// Requests may be issued concurrently. The setters replace state wholesale
// and must not race with in-flight requests.
type Client struct {
	creds Credentials
	opts  Options

	httpClient *http.Client
	transport  transport.Doer
	cache      token.Cache
	authorizer Authorizer

	log zerolog.Logger
}

// Option customises a Client at construction.
type Option func(*Client)

// WithOptions replaces the default Options.
func WithOptions(opts Options) Option {
	return func(c *Client) {
		c.opts = opts
	}
}

// WithHTTPClient sets the *http.Client used for the API and the token endpoint.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTransport replaces the resty-backed transport for API calls.
func WithTransport(d transport.Doer) Option {
	return func(c *Client) {
		c.transport = d
	}
}

// WithCache sets the token cache. Defaults to a disk cache in the temp directory.
func WithCache(cache token.Cache) Option {
	return func(c *Client) {
		c.cache = cache
	}
}

// WithAuthorizer replaces the OAuth2 client-credentials authorizer.
func WithAuthorizer(a Authorizer) Option {
	return func(c *Client) {
		c.authorizer = a
	}
}

// WithLogger sets the logger. Defaults to the global zerolog logger.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) {
		c.log = l
	}
}

// New returns a client for creds. Options are validated here, credentials
// only when a token is first needed.
func New(creds Credentials, opts ...Option) (*Client, error) {
	c := &Client{
		creds: creds,
		opts:  DefaultOptions(),
		log:   log.Logger,
	}
	for _, opt := range opts {
		opt(c)
	}

	c.opts = c.opts.Normalize()
	if err := c.opts.Validate(); err != nil {
		return nil, err
	}

	if c.httpClient == nil {
		c.httpClient = transport.NewHTTPClient()
	}
	if c.transport == nil {
		c.transport = transport.NewResty(c.httpClient, c.log)
	}
	if c.cache == nil {
		c.cache = disk.New("")
	}
	if c.authorizer == nil {
		c.authorizer = NewClientCredentialsAuthorizer(c.httpClient)
	}
	return c, nil
}

// Authorize exchanges the client credentials for a new access token. It
// bypasses the token cache and the retry logic entirely.
func (c *Client) Authorize(ctx context.Context) (string, error) {
	if err := c.creds.Validate(); err != nil {
		return "", err
	}

	tokenURL := c.opts.ResourceURL(tokenResource)
	c.log.Debug().Str("url", tokenURL).Str("client_id", c.creds.ClientID).Msg("Requesting access token")

	accessToken, err := c.authorizer.Authorize(ctx, tokenURL, c.creds)
	if err != nil {
		return "", err
	}
	if accessToken == "" {
		return "", ErrNoAccessToken
	}
	return accessToken, nil
}

// SetCredentials replaces both the client ID and secret.
func (c *Client) SetCredentials(creds Credentials) {
	c.creds = creds
}

// SetClientID replaces the client ID used by the next authorization.
func (c *Client) SetClientID(clientID string) {
	c.creds.ClientID = clientID
}

// SetClientSecret replaces the client secret used by the next authorization.
func (c *Client) SetClientSecret(clientSecret string) {
	c.creds.ClientSecret = clientSecret
}

// SetOptions replaces all options. Empty strings take their defaults.
func (c *Client) SetOptions(opts Options) error {
	opts = opts.Normalize()
	if err := opts.Validate(); err != nil {
		return err
	}
	c.opts = opts
	return nil
}

// Options returns a copy of the current options.
func (c *Client) Options() Options {
	return c.opts
}

// HTTPClient returns the underlying *http.Client.
func (c *Client) HTTPClient() *http.Client {
	return c.httpClient
}
