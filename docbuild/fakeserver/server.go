// Package fakeserver is an in-memory stand-in for the DocBuild API, served
// over httptest. It issues signed access tokens, enforces them on every
// resource endpoint and records what it received.
package fakeserver

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/jrsteele09/go-docbuild/oauth2"
)

const (
	contentTypeJSON = "application/json; charset=utf-8"

	// DefaultTokenTTL is how long issued access tokens stay valid.
	DefaultTokenTTL = time.Hour
)

// Route path constants
const (
	RouteToken           = "/oauth/token"
	RouteDocuments       = "/documents"
	RouteDocument        = "/documents/{id}"
	RouteDocumentPayload = "/documents/{id}/payload"
	RouteCallback        = "/callback"
	RouteCombine         = "/combine"
	RoutePDF             = "/pdf"
	RouteXLSX            = "/xlsx"
	RouteMailMerge       = "/mailmerge"
	RouteV2MailMerge     = "/v2/mailmerge"
	RouteSignable        = "/signable"
	RouteSignableRemind  = "/signable/remind"
	RouteSignableCancel  = "/signable/cancel"
	RouteAdobeSign       = "/adobe-sign"
)

// Server is a fake DocBuild API. All methods are safe for concurrent use.
type Server struct {
	httpServer *httptest.Server
	mux        *http.ServeMux

	lock          sync.Mutex
	now           func() time.Time
	tokenTTL      time.Duration
	signingKey    []byte
	clients       map[string]string // client id -> bcrypt hash of the secret
	documents     map[string]*storedDocument
	order         []string
	jobs          []Job
	requests      []Request
	tokenRequests int
	queued        []cannedResponse
}

type cannedResponse struct {
	status int
	body   []byte
}

// New starts a fake server. Close it when done.
func New() *Server {
	s := &Server{
		mux:        http.NewServeMux(),
		now:        time.Now,
		tokenTTL:   DefaultTokenTTL,
		signingKey: newSigningKey(),
		clients:    make(map[string]string),
		documents:  make(map[string]*storedDocument),
	}
	s.initRoutes()
	s.httpServer = httptest.NewServer(s.mux)
	return s
}

func (s *Server) initRoutes() {
	s.mux.HandleFunc("POST "+RouteToken, s.Token())

	s.mux.HandleFunc("GET "+RouteDocuments, ChainMiddleware(s.ListDocuments(), s.RequireToken))
	s.mux.HandleFunc("POST "+RouteDocuments, ChainMiddleware(s.CreateDocument(), s.RequireToken))
	s.mux.HandleFunc("GET "+RouteDocument, ChainMiddleware(s.GetDocument(), s.RequireToken))
	s.mux.HandleFunc("GET "+RouteDocumentPayload, ChainMiddleware(s.DownloadPayload(), s.RequireToken))
	s.mux.HandleFunc("POST "+RouteDocumentPayload, ChainMiddleware(s.UploadPayload(), s.RequireToken))

	s.mux.HandleFunc("POST "+RouteCallback, ChainMiddleware(s.Job("callback", "source", "url"), s.RequireToken))
	s.mux.HandleFunc("POST "+RouteCombine, ChainMiddleware(s.Job("combine", "name", "source"), s.RequireToken))
	s.mux.HandleFunc("POST "+RoutePDF, ChainMiddleware(s.Job("pdf", "source"), s.RequireToken))
	s.mux.HandleFunc("POST "+RouteXLSX, ChainMiddleware(s.Job("xlsx", "source"), s.RequireToken))
	s.mux.HandleFunc("POST "+RouteMailMerge, ChainMiddleware(s.Job("mailmerge", "source", "fields"), s.RequireToken))
	s.mux.HandleFunc("POST "+RouteV2MailMerge, ChainMiddleware(s.Job("v2/mailmerge", "source", "fields"), s.RequireToken))
	s.mux.HandleFunc("POST "+RouteSignable, ChainMiddleware(s.Job("signable", "source", "signableKey", "recipients"), s.RequireToken))
	s.mux.HandleFunc("POST "+RouteSignableRemind, ChainMiddleware(s.Job("signable/remind", "source", "signableKey"), s.RequireToken))
	s.mux.HandleFunc("POST "+RouteSignableCancel, ChainMiddleware(s.Job("signable/cancel", "source", "signableKey"), s.RequireToken))
	s.mux.HandleFunc("POST "+RouteAdobeSign, ChainMiddleware(s.Job("adobe-sign", "source", "emailAddresses", "token"), s.RequireToken))
}

// ChainMiddleware wraps routeFunction so mw[0] runs first.
func ChainMiddleware(routeFunction http.HandlerFunc, mw ...func(http.HandlerFunc) http.HandlerFunc) http.HandlerFunc {
	chainedHandler := routeFunction
	for i := len(mw) - 1; i >= 0; i-- {
		chainedHandler = mw[i](chainedHandler)
	}
	return chainedHandler
}

// URL is the base URL to use as Options.URL.
func (s *Server) URL() string {
	return s.httpServer.URL + "/"
}

// Client returns an *http.Client that trusts the server.
func (s *Server) Client() *http.Client {
	return s.httpServer.Client()
}

func (s *Server) Close() {
	s.httpServer.Close()
}

// SetNow fixes the server clock used to issue and check tokens.
func (s *Server) SetNow(now time.Time) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.now = func() time.Time { return now }
}

// Advance moves the server clock forward by d.
func (s *Server) Advance(d time.Duration) {
	s.lock.Lock()
	defer s.lock.Unlock()
	current := s.now()
	s.now = func() time.Time { return current.Add(d) }
}

// SetTokenTTL changes the lifetime of tokens issued from now on.
func (s *Server) SetTokenTTL(ttl time.Duration) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.tokenTTL = ttl
}

// QueueResponse makes the next resource request, whatever its token,
// answer with status and body. body is JSON encoded unless it is a string.
func (s *Server) QueueResponse(status int, body any) {
	var raw []byte
	switch b := body.(type) {
	case string:
		raw = []byte(b)
	case []byte:
		raw = b
	default:
		raw, _ = json.Marshal(b)
	}
	s.lock.Lock()
	defer s.lock.Unlock()
	s.queued = append(s.queued, cannedResponse{status: status, body: raw})
}

func (s *Server) nextCanned() (cannedResponse, bool) {
	s.lock.Lock()
	defer s.lock.Unlock()
	if len(s.queued) == 0 {
		return cannedResponse{}, false
	}
	canned := s.queued[0]
	s.queued = s.queued[1:]
	return canned, true
}

func (s *Server) clock() time.Time {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.now()
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("fakeserver: failed to write response")
	}
}

func writeJSONError(w http.ResponseWriter, errorCode, description string, statusCode int) {
	writeJSON(w, statusCode, oauth2.ErrorResponse{
		Error:            errorCode,
		ErrorDescription: description,
	})
}

// writeValidationError reports a bad resource request without an
// error_description, so clients never mistake it for a token problem.
func writeValidationError(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusUnprocessableEntity, map[string]string{
		"error":   oauth2.ErrorInvalidRequest,
		"message": message,
	})
}

func newID() string {
	return uuid.NewString()
}
