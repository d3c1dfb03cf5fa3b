package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
)

const (
	defaultMaxConns    = 100
	defaultHTTPTimeout = 60 * time.Second

	contentTypeJSON   = "application/json"
	contentTypeBinary = "application/octet-stream"
)

var _ Doer = (*Resty)(nil)

// Resty is the default Doer, a thin wrapper around resty.Client.
type Resty struct {
	client *resty.Client
}

// NewHTTPClient returns the *http.Client used when the caller supplies none.
func NewHTTPClient() *http.Client {
	return &http.Client{
		Timeout: defaultHTTPTimeout,
		Transport: &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			MaxConnsPerHost:     defaultMaxConns,
			MaxIdleConnsPerHost: defaultMaxConns,
		},
	}
}

// NewResty wraps hc, or NewHTTPClient() when hc is nil.
func NewResty(hc *http.Client, log zerolog.Logger) *Resty {
	if hc == nil {
		hc = NewHTTPClient()
	}
	client := resty.NewWithClient(hc).
		SetLogger(restyLogger{log: log}).
		SetHeader("Accept", contentTypeJSON)
	return &Resty{client: client}
}

// Do implements Doer
func (r *Resty) Do(ctx context.Context, req *Request) (*Response, error) {
	rr := r.client.R().SetContext(ctx)
	if len(req.Header) > 0 {
		rr.SetHeaderMultiValues(req.Header)
	}
	if len(req.Query) > 0 {
		rr.SetQueryParamsFromValues(req.Query)
	}

	switch {
	case len(req.Files) > 0:
		fields, err := formFields(req.Params)
		if err != nil {
			return nil, fmt.Errorf("%s %s: %w", req.Method, req.URL, err)
		}
		rr.SetMultipartFormData(fields)
		for param, f := range req.Files {
			rr.SetMultipartField(param, f.Name, contentTypeBinary, f.Reader)
		}
	case req.Params != nil:
		rr.SetHeader("Content-Type", contentTypeJSON).SetBody(req.Params)
	}

	if req.Stream {
		rr.SetDoNotParseResponse(true)
	}

	resp, err := rr.Execute(req.Method, req.URL)
	if err != nil {
		if resp != nil && resp.RawBody() != nil && req.Stream {
			resp.RawBody().Close()
		}
		return nil, &Error{Method: req.Method, URL: req.URL, Err: err}
	}

	if !resp.IsSuccess() {
		body := resp.Body()
		if req.Stream {
			raw := resp.RawBody()
			body, err = io.ReadAll(raw)
			raw.Close()
			if err != nil {
				return nil, &Error{Method: req.Method, URL: req.URL, Err: err}
			}
		}
		return nil, &StatusError{
			Method:     req.Method,
			URL:        req.URL,
			StatusCode: resp.StatusCode(),
			Header:     resp.Header(),
			Body:       body,
		}
	}

	out := &Response{
		StatusCode: resp.StatusCode(),
		Header:     resp.Header(),
	}
	if req.Stream {
		out.Stream = resp.RawBody()
	} else {
		out.Body = resp.Body()
	}
	return out, nil
}

// formFields flattens params for a multipart body. Strings are sent as-is,
// anything else as JSON.
func formFields(params map[string]any) (map[string]string, error) {
	fields := make(map[string]string, len(params))
	for k, v := range params {
		switch v := v.(type) {
		case string:
			fields[k] = v
		case nil:
		default:
			encoded, err := json.Marshal(v)
			if err != nil {
				return nil, fmt.Errorf("encode field %s: %w", k, err)
			}
			fields[k] = string(encoded)
		}
	}
	return fields, nil
}

type restyLogger struct {
	log zerolog.Logger
}

func (l restyLogger) Errorf(format string, v ...interface{}) {
	l.log.Error().Str("component", "resty").Msgf(format, v...)
}

func (l restyLogger) Warnf(format string, v ...interface{}) {
	l.log.Warn().Str("component", "resty").Msgf(format, v...)
}

func (l restyLogger) Debugf(format string, v ...interface{}) {
	l.log.Debug().Str("component", "resty").Msgf(format, v...)
}
