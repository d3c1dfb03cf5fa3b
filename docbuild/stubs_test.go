package docbuild_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/jrsteele09/go-docbuild/docbuild"
	"github.com/jrsteele09/go-docbuild/token"
	"github.com/jrsteele09/go-docbuild/token/memory"
	"github.com/jrsteele09/go-docbuild/transport"
)

const (
	testClientID     = "myid"
	testClientSecret = "mysecret"
	testURL          = "http://doc.build/api/"
)

var errDisk = errors.New("permission denied")

// recordingCache wraps a memory cache, counting calls and failing on demand.
type recordingCache struct {
	*memory.Cache

	lock      sync.Mutex
	saves     []string
	deletes   []string
	deleteErr error
	saveErr   error
	fetchErr  error
}

func newRecordingCache() *recordingCache {
	return &recordingCache{Cache: memory.New()}
}

func (c *recordingCache) Fetch(key string) (string, error) {
	if c.fetchErr != nil {
		return "", c.fetchErr
	}
	return c.Cache.Fetch(key)
}

func (c *recordingCache) Save(key, tok string) error {
	c.lock.Lock()
	c.saves = append(c.saves, key+"="+tok)
	c.lock.Unlock()
	if c.saveErr != nil {
		return c.saveErr
	}
	return c.Cache.Save(key, tok)
}

func (c *recordingCache) Delete(key string) error {
	c.lock.Lock()
	c.deletes = append(c.deletes, key)
	c.lock.Unlock()
	if c.deleteErr != nil {
		return c.deleteErr
	}
	return c.Cache.Delete(key)
}

var _ token.Cache = (*recordingCache)(nil)

// stubAuthorizer hands out tokens in order, then repeats the last one.
type stubAuthorizer struct {
	lock   sync.Mutex
	tokens []string
	err    error
	calls  int
	urls   []string
	creds  []docbuild.Credentials
}

func (a *stubAuthorizer) Authorize(_ context.Context, tokenURL string, creds docbuild.Credentials) (string, error) {
	a.lock.Lock()
	defer a.lock.Unlock()
	a.calls++
	a.urls = append(a.urls, tokenURL)
	a.creds = append(a.creds, creds)
	if a.err != nil {
		return "", a.err
	}
	if len(a.tokens) == 0 {
		return "", nil
	}
	tok := a.tokens[0]
	if len(a.tokens) > 1 {
		a.tokens = a.tokens[1:]
	}
	return tok, nil
}

// stubDoer replays scripted results and records every request.
type stubDoer struct {
	lock     sync.Mutex
	results  []stubResult
	requests []*transport.Request
	uploads  map[string][]string
}

type stubResult struct {
	resp *transport.Response
	err  error
}

func (d *stubDoer) Do(_ context.Context, req *transport.Request) (*transport.Response, error) {
	d.lock.Lock()
	defer d.lock.Unlock()
	d.requests = append(d.requests, req)

	for field, f := range req.Files {
		buf, _ := io.ReadAll(f.Reader)
		if d.uploads == nil {
			d.uploads = make(map[string][]string)
		}
		d.uploads[field] = append(d.uploads[field], string(buf))
	}

	if len(d.results) == 0 {
		return &transport.Response{StatusCode: http.StatusOK, Body: []byte(`{}`)}, nil
	}
	r := d.results[0]
	d.results = d.results[1:]
	return r.resp, r.err
}

func (d *stubDoer) accessTokens() []string {
	d.lock.Lock()
	defer d.lock.Unlock()
	var tokens []string
	for _, req := range d.requests {
		if tok := req.Query.Get("access_token"); tok != "" {
			tokens = append(tokens, tok)
			continue
		}
		if tok, ok := req.Params["access_token"].(string); ok {
			tokens = append(tokens, tok)
		}
	}
	return tokens
}

func success(body string) stubResult {
	return stubResult{resp: &transport.Response{StatusCode: http.StatusOK, Body: []byte(body)}}
}

func failure(status int, body string) stubResult {
	return stubResult{err: &transport.StatusError{
		Method:     http.MethodGet,
		URL:        testURL,
		StatusCode: status,
		Body:       []byte(body),
	}}
}

type fixture struct {
	client     *docbuild.Client
	cache      *recordingCache
	authorizer *stubAuthorizer
	doer       *stubDoer
}

func newFixture(t *testing.T, refresh bool, results ...stubResult) *fixture {
	t.Helper()
	f := &fixture{
		cache:      newRecordingCache(),
		authorizer: &stubAuthorizer{tokens: []string{"myapitoken"}},
		doer:       &stubDoer{results: results},
	}
	opts := docbuild.DefaultOptions()
	opts.URL = testURL
	opts.TokenRefresh = refresh

	client, err := docbuild.New(
		docbuild.Credentials{ClientID: testClientID, ClientSecret: testClientSecret},
		docbuild.WithOptions(opts),
		docbuild.WithCache(f.cache),
		docbuild.WithAuthorizer(f.authorizer),
		docbuild.WithTransport(f.doer),
		docbuild.WithLogger(zerolog.Nop()),
	)
	require.NoError(t, err)
	f.client = client
	return f
}
