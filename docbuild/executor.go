package docbuild

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"

	"github.com/jrsteele09/go-docbuild/oauth2"
	"github.com/jrsteele09/go-docbuild/token"
	"github.com/jrsteele09/go-docbuild/transport"
)

const (
	// maxAttempts allows the original request plus one retry after re-authorizing.
	maxAttempts = 2

	requestIDHeader = "X-Request-Id"
)

// Call is one logical API call. The access token is added by the client.
type Call struct {
	Method   string
	Resource string
	// Params go in the query string for GET and in the body otherwise.
	Params map[string]any
	// Files turn a POST into a multipart upload. Readers are not closed.
	Files      map[string]transport.File
	Header     http.Header
	ReturnType ReturnType
}

// Do runs call with a cached or freshly authorized token. When the API
// rejects the token as expired or invalid, the cached token is deleted and,
// if Options.TokenRefresh is set, the call is retried once with a new token.
func (c *Client) Do(ctx context.Context, call Call) (*Body, error) {
	requestID := uuid.NewString()
	log := c.log.With().
		Str("request_id", requestID).
		Str("method", call.Method).
		Str("resource", call.Resource).
		Logger()

	offsets := fileOffsets(call.Files)

	var lastErr error
	retried := false
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if retried {
			if err := rewindFiles(call.Files, offsets); err != nil {
				log.Warn().Err(err).Msg("Cannot rewind upload for retry")
				return nil, lastErr
			}
		}

		accessToken, err := c.accessToken(ctx, log)
		if err != nil {
			return nil, err
		}

		resp, err := c.transport.Do(ctx, c.newRequest(call, accessToken, requestID))
		if err == nil {
			log.Debug().Int("status", resp.StatusCode).Int("attempt", attempt).Msg("Request complete")
			return decodeBody(call.ReturnType, resp)
		}

		authErr, err := c.inspectFailure(err, log)
		if authErr == nil {
			return nil, err
		}
		if !authErr.tokenRelated() || !c.opts.TokenRefresh || retried {
			return nil, authErr
		}

		log.Info().Str("reason", authErr.Kind.String()).Msg("Access token rejected, re-authorizing")
		retried = true
		lastErr = authErr
	}
	return nil, lastErr
}

// accessToken returns the cached token, authorizing and caching a new one on a miss.
func (c *Client) accessToken(ctx context.Context, log zerolog.Logger) (string, error) {
	key := c.opts.CacheKey

	ok, err := c.cache.Contains(key)
	if err != nil {
		return "", fmt.Errorf("%w: contains %q: %w", ErrCache, key, err)
	}
	if ok {
		accessToken, err := c.cache.Fetch(key)
		switch {
		case err == nil:
			log.Debug().Str("cache_key", key).Msg("Using cached access token")
			return accessToken, nil
		case errors.Is(err, token.ErrNotFound):
			// Deleted by a concurrent call since Contains.
		default:
			return "", fmt.Errorf("%w: fetch %q: %w", ErrCache, key, err)
		}
	}

	log.Debug().Str("cache_key", key).Msg("No cached access token, authorizing")
	accessToken, err := c.Authorize(ctx)
	if err != nil {
		return "", err
	}
	if err := c.cache.Save(key, accessToken); err != nil {
		return "", fmt.Errorf("%w: save %q: %w", ErrCache, key, err)
	}
	return accessToken, nil
}

// inspectFailure decides what a failed request means. It returns a non-nil
// *AuthError only for a 400/401/403 carrying an error_description, after
// the cached token has been deleted; everything else comes back as a plain error.
func (c *Client) inspectFailure(err error, log zerolog.Logger) (*AuthError, error) {
	var statusErr *transport.StatusError
	if !errors.As(err, &statusErr) || !isAuthStatus(statusErr.StatusCode) {
		return nil, err
	}

	if !gjson.ValidBytes(statusErr.Body) {
		return nil, err
	}
	description := gjson.GetBytes(statusErr.Body, "error_description")
	if !description.Exists() {
		return nil, err
	}

	key := c.opts.CacheKey
	if delErr := c.cache.Delete(key); delErr != nil {
		return nil, fmt.Errorf("%w: delete %q: %w", ErrCache, key, delErr)
	}

	authErr := newAuthError(statusErr.StatusCode, statusErr.Body, description.String())
	log.Warn().
		Int("status", statusErr.StatusCode).
		Str("reason", authErr.Kind.String()).
		Str("cache_key", key).
		Msg("Request rejected, cached access token deleted")
	return authErr, nil
}

func (c *Client) newRequest(call Call, accessToken, requestID string) *transport.Request {
	header := http.Header{}
	for k, v := range call.Header {
		header[k] = v
	}
	header.Set(requestIDHeader, requestID)

	req := &transport.Request{
		Method: call.Method,
		URL:    c.opts.ResourceURL(call.Resource),
		Header: header,
		Stream: call.ReturnType == ReturnStream,
	}

	if call.Method == http.MethodGet {
		req.Query = queryValues(call.Params)
		req.Query.Set(oauth2.ParamAccessToken, accessToken)
		return req
	}

	params := make(map[string]any, len(call.Params)+1)
	for k, v := range call.Params {
		params[k] = v
	}
	params[oauth2.ParamAccessToken] = accessToken
	req.Params = params
	req.Files = call.Files
	return req
}

// queryValues encodes params for a query string; non-string values are sent as JSON.
func queryValues(params map[string]any) url.Values {
	values := url.Values{}
	for k, v := range params {
		switch v := v.(type) {
		case nil:
		case string:
			values.Set(k, v)
		case []string:
			values[k] = v
		case fmt.Stringer:
			values.Set(k, v.String())
		default:
			encoded, err := json.Marshal(v)
			if err != nil {
				values.Set(k, fmt.Sprint(v))
				continue
			}
			values.Set(k, string(encoded))
		}
	}
	return values
}

// fileOffsets records where each seekable upload starts so a retry can resend it.
// Pipes and other readers that cannot seek are left out.
func fileOffsets(files map[string]transport.File) map[string]int64 {
	offsets := make(map[string]int64, len(files))
	for name, f := range files {
		seeker, ok := f.Reader.(io.Seeker)
		if !ok {
			continue
		}
		offset, err := seeker.Seek(0, io.SeekCurrent)
		if err != nil {
			continue
		}
		offsets[name] = offset
	}
	return offsets
}

func rewindFiles(files map[string]transport.File, offsets map[string]int64) error {
	for name, f := range files {
		offset, ok := offsets[name]
		if !ok {
			return fmt.Errorf("%s is not seekable", name)
		}
		if _, err := f.Reader.(io.Seeker).Seek(offset, io.SeekStart); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	return nil
}
