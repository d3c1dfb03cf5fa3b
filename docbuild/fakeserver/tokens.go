package fakeserver

import (
	"errors"
	"fmt"
	"net/http"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/jrsteele09/go-docbuild/oauth2"
)

// Description returned when a resource request carries no token at all.
const MissingTokenDescription = "OAuth2 authentication required"

// AddClient registers a client. Only the bcrypt hash of the secret is kept.
func (s *Server) AddClient(clientID, clientSecret string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(clientSecret), bcrypt.MinCost)
	if err != nil {
		return fmt.Errorf("[AddClient] hashing secret: %w", err)
	}
	s.lock.Lock()
	defer s.lock.Unlock()
	s.clients[clientID] = string(hash)
	return nil
}

// RotateKey replaces the signing key, making every issued token invalid.
func (s *Server) RotateKey() {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.signingKey = newSigningKey()
}

// TokenRequests returns how many times the token endpoint has been called.
func (s *Server) TokenRequests() int {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.tokenRequests
}

// IssueToken signs a token for clientID without going through the token
// endpoint, for seeding caches in tests.
func (s *Server) IssueToken(clientID string) (string, error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.issueToken(clientID)
}

// Token exchanges client credentials for an access token.
func (s *Server) Token() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.lock.Lock()
		s.tokenRequests++
		s.lock.Unlock()

		if err := r.ParseForm(); err != nil {
			writeJSONError(w, oauth2.ErrorInvalidRequest, "Failed to parse form data", http.StatusBadRequest)
			return
		}
		if grant := r.PostFormValue(oauth2.ParamGrantType); grant != string(oauth2.ClientCredentialsGrant) {
			writeJSONError(w, oauth2.ErrorUnsupported, fmt.Sprintf("Grant type %q is not supported", grant), http.StatusBadRequest)
			return
		}

		clientID := r.PostFormValue(oauth2.ParamClientID)
		clientSecret := r.PostFormValue(oauth2.ParamClientSecret)

		s.lock.Lock()
		hash, ok := s.clients[clientID]
		s.lock.Unlock()
		if !ok || bcrypt.CompareHashAndPassword([]byte(hash), []byte(clientSecret)) != nil {
			writeJSONError(w, oauth2.ErrorInvalidClient, "The client credentials are invalid", http.StatusUnauthorized)
			return
		}

		s.lock.Lock()
		accessToken, err := s.issueToken(clientID)
		ttl := s.tokenTTL
		s.lock.Unlock()
		if err != nil {
			writeJSONError(w, "server_error", err.Error(), http.StatusInternalServerError)
			return
		}

		log.Debug().Str("client_id", clientID).Msg("fakeserver: issued access token")
		w.Header().Set("Cache-Control", "no-store")
		w.Header().Set("Pragma", "no-cache")
		writeJSON(w, http.StatusOK, oauth2.TokenResponse{
			AccessToken: accessToken,
			ExpiresIn:   int(ttl.Seconds()),
			TokenType:   oauth2.TokenType,
		})
	}
}

// issueToken must be called with the lock held.
func (s *Server) issueToken(clientID string) (string, error) {
	now := s.now()
	claims := jwtlib.MapClaims{
		"iss":        s.httpServer.URL,
		"sub":        clientID,
		"client_id":  clientID,
		"token_type": "client",
		"iat":        now.Unix(),
		"exp":        now.Add(s.tokenTTL).Unix(),
		"jti":        newID(),
	}
	signed, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString(s.signingKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign JWT token: %w", err)
	}
	return signed, nil
}

// verifyToken returns the error description the API uses for rawToken, or
// "" when the token is good.
func (s *Server) verifyToken(rawToken string) string {
	s.lock.Lock()
	key := s.signingKey
	now := s.now
	s.lock.Unlock()

	_, err := jwtlib.Parse(rawToken,
		func(*jwtlib.Token) (any, error) { return key, nil },
		jwtlib.WithValidMethods([]string{jwtlib.SigningMethodHS256.Alg()}),
		jwtlib.WithTimeFunc(now),
		jwtlib.WithExpirationRequired(),
	)
	switch {
	case err == nil:
		return ""
	case errors.Is(err, jwtlib.ErrTokenExpired):
		return oauth2.TokenExpiredDescription
	default:
		return oauth2.TokenInvalidDescription
	}
}

// RequireToken records the request, then rejects it unless it carries a
// valid access_token parameter.
func (s *Server) RequireToken(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, err := parseRequest(r)
		if err != nil {
			writeValidationError(w, err.Error())
			return
		}
		s.record(req)

		if canned, ok := s.nextCanned(); ok {
			w.Header().Set("Content-Type", contentTypeJSON)
			w.WriteHeader(canned.status)
			_, _ = w.Write(canned.body)
			return
		}

		if req.AccessToken == "" {
			writeJSONError(w, oauth2.ErrorInvalidRequest, MissingTokenDescription, http.StatusUnauthorized)
			return
		}
		if description := s.verifyToken(req.AccessToken); description != "" {
			log.Debug().Str("path", r.URL.Path).Str("reason", description).Msg("fakeserver: rejected access token")
			writeJSONError(w, oauth2.ErrorInvalidGrant, description, http.StatusUnauthorized)
			return
		}

		next(w, r.WithContext(withRequest(r.Context(), req)))
	}
}

func newSigningKey() []byte {
	return []byte(newID() + newID())
}
