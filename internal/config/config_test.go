package config_test

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/jrsteele09/go-docbuild/internal/config"
	"github.com/jrsteele09/go-docbuild/internal/errors"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name    string
		values  map[string]any
		want    config.Options
		wantErr bool
	}{
		{
			name:   "empty map gives defaults",
			values: map[string]any{},
			want:   config.Defaults(),
		},
		{
			name:   "nil map gives defaults",
			values: nil,
			want:   config.Defaults(),
		},
		{
			name: "all options set",
			values: map[string]any{
				"token_refresh": false,
				"cache_key":     "docbuild",
				"url":           "https://docbuild.example.com/",
			},
			want: config.Options{TokenRefresh: false, CacheKey: "docbuild", URL: "https://docbuild.example.com/"},
		},
		{
			name:   "weakly typed bool",
			values: map[string]any{"token_refresh": "false"},
			want:   config.Options{TokenRefresh: false, CacheKey: config.DefaultCacheKey, URL: config.DefaultURL},
		},
		{
			name:   "blank cache key falls back to default",
			values: map[string]any{"cache_key": ""},
			want:   config.Defaults(),
		},
		{
			name:    "unknown option",
			values:  map[string]any{"timeout": 30},
			wantErr: true,
		},
		{
			name:    "relative url",
			values:  map[string]any{"url": "/api"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts, err := config.Resolve(tt.values)
			if tt.wantErr {
				require.Error(t, err)
				require.ErrorIs(t, err, errors.ErrInvalidConfig)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, opts)
		})
	}
}

func TestResourceURL(t *testing.T) {
	opts := config.Defaults()
	require.Equal(t, "http://api.docbuild.vivait.co.uk/documents", opts.ResourceURL("documents"))
	require.Equal(t, "http://api.docbuild.vivait.co.uk/oauth/token", opts.ResourceURL("/oauth/token"))

	opts.URL = "https://example.com/api"
	require.Equal(t, "https://example.com/api/v2/mailmerge", opts.ResourceURL("v2/mailmerge"))
}

func TestFromEnv(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		t.Setenv("DOCBUILD_URL", "")
		t.Setenv("DOCBUILD_CACHE_KEY", "")
		t.Setenv("DOCBUILD_TOKEN_REFRESH", "")

		opts, err := config.FromEnv()
		require.NoError(t, err)
		require.Equal(t, config.Defaults(), opts)
	})

	t.Run("overrides", func(t *testing.T) {
		t.Setenv("DOCBUILD_URL", "https://docbuild.internal")
		t.Setenv("DOCBUILD_CACHE_KEY", "ci-token")
		t.Setenv("DOCBUILD_TOKEN_REFRESH", "0")

		opts, err := config.FromEnv()
		require.NoError(t, err)
		require.Equal(t, config.Options{TokenRefresh: false, CacheKey: "ci-token", URL: "https://docbuild.internal"}, opts)
	})

	t.Run("bad bool", func(t *testing.T) {
		t.Setenv("DOCBUILD_TOKEN_REFRESH", "sometimes")

		_, err := config.FromEnv()
		require.ErrorIs(t, err, errors.ErrInvalidConfig)
	})

	t.Run("credentials", func(t *testing.T) {
		t.Setenv("DOCBUILD_CLIENT_ID", "my-id")
		t.Setenv("DOCBUILD_CLIENT_SECRET", "my-secret")

		var env config.EnvVars
		require.Equal(t, "my-id", env.GetClientID())
		require.Equal(t, "my-secret", env.GetClientSecret())
	})
}

func TestLoad(t *testing.T) {
	fs := afero.NewMemMapFs()

	require.NoError(t, afero.WriteFile(fs, "/etc/docbuild/full.yaml", []byte(
		"token_refresh: false\ncache_key: docbuild-token\nurl: https://docbuild.example.com/\n"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/etc/docbuild/empty.yaml", nil, 0o644))
	require.NoError(t, afero.WriteFile(fs, "/etc/docbuild/unknown.yaml", []byte("retries: 3\n"), 0o644))

	opts, err := config.Load(fs, "/etc/docbuild/full.yaml")
	require.NoError(t, err)
	require.Equal(t, config.Options{TokenRefresh: false, CacheKey: "docbuild-token", URL: "https://docbuild.example.com/"}, opts)

	opts, err = config.Load(fs, "/etc/docbuild/empty.yaml")
	require.NoError(t, err)
	require.Equal(t, config.Defaults(), opts)

	_, err = config.Load(fs, "/etc/docbuild/unknown.yaml")
	require.ErrorIs(t, err, errors.ErrInvalidConfig)

	_, err = config.Load(fs, "/etc/docbuild/missing.yaml")
	require.Error(t, err)
}
