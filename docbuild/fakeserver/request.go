package fakeserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/jrsteele09/go-docbuild/oauth2"
)

const maxUploadMemory = 32 << 20

// Request is a resource request as the server received it.
type Request struct {
	Method      string
	Path        string
	RequestID   string
	AccessToken string
	// Params are the query parameters for GET and the JSON body or
	// multipart fields otherwise, without access_token.
	Params map[string]any
	Files  map[string]Upload
}

// Upload is a multipart file part.
type Upload struct {
	Filename string
	Content  []byte
}

type contextKey string

const requestContextKey contextKey = "request"

func withRequest(ctx context.Context, req Request) context.Context {
	return context.WithValue(ctx, requestContextKey, req)
}

func requestFrom(ctx context.Context) Request {
	req, _ := ctx.Value(requestContextKey).(Request)
	return req
}

// Requests returns every resource request received so far, oldest first.
func (s *Server) Requests() []Request {
	s.lock.Lock()
	defer s.lock.Unlock()
	return append([]Request(nil), s.requests...)
}

// LastRequest returns the most recent resource request.
func (s *Server) LastRequest() (Request, bool) {
	s.lock.Lock()
	defer s.lock.Unlock()
	if len(s.requests) == 0 {
		return Request{}, false
	}
	return s.requests[len(s.requests)-1], true
}

func (s *Server) record(req Request) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.requests = append(s.requests, req)
}

func parseRequest(r *http.Request) (Request, error) {
	req := Request{
		Method:    r.Method,
		Path:      r.URL.Path,
		RequestID: r.Header.Get("X-Request-Id"),
		Params:    make(map[string]any),
		Files:     make(map[string]Upload),
	}

	if r.Method == http.MethodGet {
		for k, v := range r.URL.Query() {
			if len(v) == 1 {
				req.Params[k] = v[0]
			} else {
				req.Params[k] = v
			}
		}
		return takeToken(req), nil
	}

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch {
	case strings.HasPrefix(mediaType, "multipart/"):
		if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
			return req, fmt.Errorf("invalid multipart body: %w", err)
		}
		for k, v := range r.MultipartForm.Value {
			if len(v) > 0 {
				req.Params[k] = v[0]
			}
		}
		for field, headers := range r.MultipartForm.File {
			if len(headers) == 0 {
				continue
			}
			upload, err := readUpload(headers[0])
			if err != nil {
				return req, err
			}
			req.Files[field] = upload
		}
	default:
		if err := json.NewDecoder(r.Body).Decode(&req.Params); err != nil && !errors.Is(err, io.EOF) {
			return req, fmt.Errorf("invalid JSON body: %w", err)
		}
		if req.Params == nil {
			req.Params = make(map[string]any)
		}
	}
	return takeToken(req), nil
}

func takeToken(req Request) Request {
	if token, ok := req.Params[oauth2.ParamAccessToken].(string); ok {
		req.AccessToken = token
	}
	delete(req.Params, oauth2.ParamAccessToken)
	return req
}

func readUpload(header *multipart.FileHeader) (Upload, error) {
	f, err := header.Open()
	if err != nil {
		return Upload{}, fmt.Errorf("opening upload %s: %w", header.Filename, err)
	}
	defer f.Close()
	content, err := io.ReadAll(f)
	if err != nil {
		return Upload{}, fmt.Errorf("reading upload %s: %w", header.Filename, err)
	}
	return Upload{Filename: header.Filename, Content: content}, nil
}
