package docbuild

import (
	"github.com/spf13/afero"

	"github.com/jrsteele09/go-docbuild/internal/config"
)

// Options configures a Client: TokenRefresh, CacheKey and URL.
type Options = config.Options

// DefaultOptions returns TokenRefresh=true, CacheKey="token" and the production URL.
func DefaultOptions() Options {
	return config.Defaults()
}

// ResolveOptions builds Options from the keys token_refresh, cache_key and url.
// Missing keys take their defaults; unknown keys fail with ErrInvalidOptions.
func ResolveOptions(values map[string]any) (Options, error) {
	return config.Resolve(values)
}

// LoadOptions reads Options from a YAML file.
func LoadOptions(fs afero.Fs, path string) (Options, error) {
	return config.Load(fs, path)
}

// OptionsFromEnv reads DOCBUILD_URL, DOCBUILD_CACHE_KEY and DOCBUILD_TOKEN_REFRESH.
func OptionsFromEnv() (Options, error) {
	return config.FromEnv()
}
