package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/jrsteele09/go-docbuild/internal/errors"
)

const (
	urlEnvVar          = "DOCBUILD_URL"
	cacheKeyEnvVar     = "DOCBUILD_CACHE_KEY"
	tokenRefreshEnvVar = "DOCBUILD_TOKEN_REFRESH"
	clientIDEnvVar     = "DOCBUILD_CLIENT_ID"
	clientSecretEnvVar = "DOCBUILD_CLIENT_SECRET"
)

type EnvVars struct{}

func (EnvVars) GetURL() string {
	return GetEnv(urlEnvVar, DefaultURL)
}

func (EnvVars) GetCacheKey() string {
	return GetEnv(cacheKeyEnvVar, DefaultCacheKey)
}

// GetTokenRefresh accepts anything strconv.ParseBool does.
func (EnvVars) GetTokenRefresh() (bool, error) {
	value := GetEnv(tokenRefreshEnvVar, strconv.FormatBool(DefaultTokenRefresh))
	refresh, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("%w: %s=%q", errors.ErrInvalidConfig, tokenRefreshEnvVar, value)
	}
	return refresh, nil
}

func (EnvVars) GetClientID() string {
	return GetEnv(clientIDEnvVar, "")
}

func (EnvVars) GetClientSecret() string {
	return GetEnv(clientSecretEnvVar, "")
}

// FromEnv resolves Options from DOCBUILD_* environment variables.
func FromEnv() (Options, error) {
	var env EnvVars

	refresh, err := env.GetTokenRefresh()
	if err != nil {
		return Options{}, err
	}

	opts := Options{
		TokenRefresh: refresh,
		CacheKey:     env.GetCacheKey(),
		URL:          env.GetURL(),
	}.Normalize()
	if err := opts.Validate(); err != nil {
		return Options{}, err
	}
	return opts, nil
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}
