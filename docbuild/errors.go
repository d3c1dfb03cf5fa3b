package docbuild

import (
	"errors"
	"fmt"
	"net/http"

	internalerrors "github.com/jrsteele09/go-docbuild/internal/errors"
	"github.com/jrsteele09/go-docbuild/oauth2"
)

var (
	// Authentication errors
	ErrBadCredentials = errors.New("docbuild: you must provide a client ID and a client secret")
	ErrNoAccessToken  = errors.New("docbuild: no access token was provided in the response")
	ErrUnauthorized   = errors.New("docbuild: unauthorized")
	ErrTokenExpired   = errors.New("docbuild: access token expired")
	ErrTokenInvalid   = errors.New("docbuild: access token invalid")

	// Local failures, never sent to the API
	ErrCache           = errors.New("docbuild: could not update the token cache, do you have permission?")
	ErrFile            = errors.New("docbuild: not a valid stream")
	ErrInvalidArgument = errors.New("docbuild: invalid argument")
	ErrInvalidOptions  = internalerrors.ErrInvalidConfig

	ErrMalformedResponse = errors.New("docbuild: malformed response body")
)

// AuthFailureKind classifies a 400/401/403 carrying an error_description.
type AuthFailureKind int

const (
	KindUnauthorized AuthFailureKind = iota
	KindTokenExpired
	KindTokenInvalid
)

func (k AuthFailureKind) String() string {
	switch k {
	case KindTokenExpired:
		return "token_expired"
	case KindTokenInvalid:
		return "token_invalid"
	default:
		return "unauthorized"
	}
}

// AuthError is a rejection by the token endpoint or the API.
//
// Every AuthError matches ErrUnauthorized; expired and invalid tokens also
// match ErrTokenExpired and ErrTokenInvalid respectively.
type AuthError struct {
	Kind        AuthFailureKind
	StatusCode  int
	Description string
	Body        []byte
}

func (e *AuthError) Error() string {
	if e.Description != "" {
		return fmt.Sprintf("docbuild: %s (status %d): %s", e.Kind, e.StatusCode, e.Description)
	}
	return fmt.Sprintf("docbuild: %s (status %d): %s", e.Kind, e.StatusCode, e.Body)
}

func (e *AuthError) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return true
	case ErrTokenExpired:
		return e.Kind == KindTokenExpired
	case ErrTokenInvalid:
		return e.Kind == KindTokenInvalid
	}
	return false
}

// tokenRelated reports whether a fresh token could fix the failure.
func (e *AuthError) tokenRelated() bool {
	return e.Kind == KindTokenExpired || e.Kind == KindTokenInvalid
}

func newAuthError(statusCode int, body []byte, description string) *AuthError {
	kind := KindUnauthorized
	switch description {
	case oauth2.TokenExpiredDescription:
		kind = KindTokenExpired
	case oauth2.TokenInvalidDescription:
		kind = KindTokenInvalid
	}
	return &AuthError{
		Kind:        kind,
		StatusCode:  statusCode,
		Description: description,
		Body:        body,
	}
}

// isAuthStatus reports whether a status may be token related and is worth inspecting.
func isAuthStatus(code int) bool {
	return code == http.StatusBadRequest || code == http.StatusUnauthorized || code == http.StatusForbidden
}
