package docbuild

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	xoauth2 "golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/jrsteele09/go-docbuild/transport"
)

// Authorizer fetches a new access token from the token endpoint.
//
// Failures must be one of: *AuthError for 400/401/403, *transport.StatusError
// for other statuses, *transport.Error for network faults, ErrNoAccessToken
// when a successful response carries no token.
type Authorizer interface {
	Authorize(ctx context.Context, tokenURL string, creds Credentials) (string, error)
}

var _ Authorizer = (*ClientCredentialsAuthorizer)(nil)

// ClientCredentialsAuthorizer runs the OAuth2 client-credentials grant,
// sending client_id and client_secret as form parameters.
type ClientCredentialsAuthorizer struct {
	httpClient *http.Client
}

func NewClientCredentialsAuthorizer(hc *http.Client) *ClientCredentialsAuthorizer {
	return &ClientCredentialsAuthorizer{httpClient: hc}
}

// Authorize implements Authorizer
func (a *ClientCredentialsAuthorizer) Authorize(ctx context.Context, tokenURL string, creds Credentials) (string, error) {
	cfg := clientcredentials.Config{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		TokenURL:     tokenURL,
		AuthStyle:    xoauth2.AuthStyleInParams,
	}

	if a.httpClient != nil {
		ctx = context.WithValue(ctx, xoauth2.HTTPClient, a.httpClient)
	}

	// x/oauth2 accepts any 2xx token response, not only 200.
	tok, err := cfg.Token(ctx)
	if err != nil {
		return "", tokenError(tokenURL, err)
	}
	return tok.AccessToken, nil
}

// tokenError maps x/oauth2 failures onto the client's error kinds.
func tokenError(tokenURL string, err error) error {
	var retrieveErr *xoauth2.RetrieveError
	if errors.As(err, &retrieveErr) {
		var (
			status int
			header http.Header
		)
		if retrieveErr.Response != nil {
			status = retrieveErr.Response.StatusCode
			header = retrieveErr.Response.Header
		}
		if isAuthStatus(status) {
			return &AuthError{
				Kind:        KindUnauthorized,
				StatusCode:  status,
				Description: retrieveErr.ErrorDescription,
				Body:        retrieveErr.Body,
			}
		}
		return &transport.StatusError{
			Method:     http.MethodPost,
			URL:        tokenURL,
			StatusCode: status,
			Header:     header,
			Body:       retrieveErr.Body,
		}
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return &transport.Error{Method: http.MethodPost, URL: tokenURL, Err: err}
	}

	// x/oauth2 returns plain errors for unreadable bodies and responses
	// without an access_token.
	return fmt.Errorf("%w: %w", ErrNoAccessToken, err)
}
