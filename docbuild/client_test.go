package docbuild_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jrsteele09/go-docbuild/docbuild"
)

func TestNewDefaults(t *testing.T) {
	client, err := docbuild.New(docbuild.Credentials{ClientID: testClientID, ClientSecret: testClientSecret})
	require.NoError(t, err)

	opts := client.Options()
	require.True(t, opts.TokenRefresh)
	require.Equal(t, "token", opts.CacheKey)
	require.Equal(t, "http://api.docbuild.vivait.co.uk/", opts.URL)
	require.NotNil(t, client.HTTPClient())
}

func TestNewRejectsInvalidOptions(t *testing.T) {
	_, err := docbuild.New(docbuild.Credentials{}, docbuild.WithOptions(docbuild.Options{URL: "not a url"}))
	require.ErrorIs(t, err, docbuild.ErrInvalidOptions)
}

func TestNewKeepsHTTPClient(t *testing.T) {
	hc := &http.Client{}
	client, err := docbuild.New(docbuild.Credentials{}, docbuild.WithHTTPClient(hc))
	require.NoError(t, err)
	require.Same(t, hc, client.HTTPClient())
}

func TestSetOptions(t *testing.T) {
	f := newFixture(t, true)

	require.NoError(t, f.client.SetOptions(docbuild.Options{TokenRefresh: false, CacheKey: "other"}))
	opts := f.client.Options()
	require.False(t, opts.TokenRefresh)
	require.Equal(t, "other", opts.CacheKey)
	require.Equal(t, "http://api.docbuild.vivait.co.uk/", opts.URL, "empty URL falls back to the default")

	require.ErrorIs(t, f.client.SetOptions(docbuild.Options{URL: "/relative"}), docbuild.ErrInvalidOptions)
	require.Equal(t, "other", f.client.Options().CacheKey, "a rejected update leaves options unchanged")
}

func TestSetOptionsChangesCacheKey(t *testing.T) {
	f := newFixture(t, true, success(`[]`))
	require.NoError(t, f.client.SetOptions(docbuild.Options{TokenRefresh: true, CacheKey: "tenant-a", URL: testURL}))

	_, err := f.client.GetDocuments(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"tenant-a=myapitoken"}, f.cache.saves)
}

func TestSetCredentials(t *testing.T) {
	f := newFixture(t, true)

	f.client.SetClientID("newid")
	_, err := f.client.Authorize(context.Background())
	require.NoError(t, err)

	f.client.SetClientSecret("newsecret")
	_, err = f.client.Authorize(context.Background())
	require.NoError(t, err)

	f.client.SetCredentials(docbuild.Credentials{ClientID: "a", ClientSecret: "b"})
	_, err = f.client.Authorize(context.Background())
	require.NoError(t, err)

	require.Equal(t, []docbuild.Credentials{
		{ClientID: "newid", ClientSecret: testClientSecret},
		{ClientID: "newid", ClientSecret: "newsecret"},
		{ClientID: "a", ClientSecret: "b"},
	}, f.authorizer.creds)

	f.client.SetClientSecret("")
	_, err = f.client.Authorize(context.Background())
	require.ErrorIs(t, err, docbuild.ErrBadCredentials)
	require.Equal(t, 3, f.authorizer.calls)
}

func TestAuthorizeBypassesCache(t *testing.T) {
	f := newFixture(t, true)

	accessToken, err := f.client.Authorize(context.Background())
	require.NoError(t, err)
	require.Equal(t, "myapitoken", accessToken)
	require.Empty(t, f.cache.saves)
	require.Empty(t, f.doer.requests)
}

func TestAuthorizeEmptyToken(t *testing.T) {
	f := newFixture(t, true)
	f.authorizer.tokens = nil

	_, err := f.client.Authorize(context.Background())
	require.ErrorIs(t, err, docbuild.ErrNoAccessToken)
}

func TestCredentialsStringHidesSecret(t *testing.T) {
	creds := docbuild.Credentials{ClientID: testClientID, ClientSecret: testClientSecret}
	require.NotContains(t, creds.String(), testClientSecret)
	require.NotContains(t, fmt.Sprintf("%v", creds), testClientSecret)
	require.Contains(t, creds.String(), testClientID)
}

func TestCredentialsFromEnv(t *testing.T) {
	t.Setenv("DOCBUILD_CLIENT_ID", "envid")
	t.Setenv("DOCBUILD_CLIENT_SECRET", "envsecret")

	creds := docbuild.CredentialsFromEnv()
	require.Equal(t, docbuild.Credentials{ClientID: "envid", ClientSecret: "envsecret"}, creds)
	require.NoError(t, creds.Validate())
}

func TestAuthErrorMatching(t *testing.T) {
	tests := []struct {
		kind    docbuild.AuthFailureKind
		expired bool
		invalid bool
	}{
		{docbuild.KindUnauthorized, false, false},
		{docbuild.KindTokenExpired, true, false},
		{docbuild.KindTokenInvalid, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			err := fmt.Errorf("wrapped: %w", &docbuild.AuthError{Kind: tt.kind, StatusCode: http.StatusUnauthorized})
			require.ErrorIs(t, err, docbuild.ErrUnauthorized)
			require.Equal(t, tt.expired, errors.Is(err, docbuild.ErrTokenExpired))
			require.Equal(t, tt.invalid, errors.Is(err, docbuild.ErrTokenInvalid))
			require.False(t, errors.Is(err, docbuild.ErrCache))
		})
	}
}
