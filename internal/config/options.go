package config

import (
	"fmt"
	"net/url"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/mitchellh/mapstructure"

	"github.com/jrsteele09/go-docbuild/internal/errors"
	"github.com/jrsteele09/go-docbuild/internal/utils"
)

const (
	// DefaultURL is the production DocBuild API.
	DefaultURL = "http://api.docbuild.vivait.co.uk/"
	// DefaultCacheKey is the key the bearer token is cached under.
	DefaultCacheKey = "token"
	// DefaultTokenRefresh re-authorizes once when the service reports an expired or invalid token.
	DefaultTokenRefresh = true
)

// Options configures a DocBuild client. Once resolved every field is set.
type Options struct {
	TokenRefresh bool   `mapstructure:"token_refresh" yaml:"token_refresh"`
	CacheKey     string `mapstructure:"cache_key" yaml:"cache_key"`
	URL          string `mapstructure:"url" yaml:"url"`
}

// rawOptions is the unresolved form, nil means "use the default".
type rawOptions struct {
	TokenRefresh *bool   `mapstructure:"token_refresh" yaml:"token_refresh"`
	CacheKey     *string `mapstructure:"cache_key" yaml:"cache_key"`
	URL          *string `mapstructure:"url" yaml:"url"`
}

// Defaults returns the options used when nothing is configured.
func Defaults() Options {
	return Options{
		TokenRefresh: DefaultTokenRefresh,
		CacheKey:     DefaultCacheKey,
		URL:          DefaultURL,
	}
}

// Resolve builds Options from a loose map using the keys token_refresh,
// cache_key and url. Missing keys take their defaults, unknown keys are rejected.
func Resolve(values map[string]any) (Options, error) {
	var raw rawOptions
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		ErrorUnused:      true,
		WeaklyTypedInput: true,
		Result:           &raw,
	})
	if err != nil {
		return Options{}, errors.Wrapf(err, "mapstructure.NewDecoder")
	}

	if err := decoder.Decode(values); err != nil {
		return Options{}, fmt.Errorf("%w: %w", errors.ErrInvalidConfig, err)
	}
	return raw.resolve()
}

func (r rawOptions) resolve() (Options, error) {
	opts := Options{
		TokenRefresh: utils.ValueOr(r.TokenRefresh, DefaultTokenRefresh),
		CacheKey:     utils.ValueOr(r.CacheKey, DefaultCacheKey),
		URL:          utils.ValueOr(r.URL, DefaultURL),
	}.Normalize()
	if err := opts.Validate(); err != nil {
		return Options{}, err
	}
	return opts, nil
}

// Normalize fills empty string fields with their defaults.
func (o Options) Normalize() Options {
	if strings.TrimSpace(o.CacheKey) == "" {
		o.CacheKey = DefaultCacheKey
	}
	if strings.TrimSpace(o.URL) == "" {
		o.URL = DefaultURL
	}
	return o
}

// Validate checks the options are usable.
func (o Options) Validate() error {
	err := validation.ValidateStruct(&o,
		validation.Field(&o.CacheKey, validation.Required),
		validation.Field(&o.URL, validation.Required, validation.By(absoluteURL)),
	)
	if err != nil {
		return fmt.Errorf("%w: %w", errors.ErrInvalidConfig, err)
	}
	return nil
}

// ResourceURL joins the base URL and a resource path with exactly one slash.
func (o Options) ResourceURL(resource string) string {
	return fmt.Sprintf("%s/%s", strings.TrimRight(o.URL, "/"), strings.TrimLeft(resource, "/"))
}

func absoluteURL(value interface{}) error {
	s, _ := value.(string)
	u, err := url.Parse(s)
	if err != nil {
		return err
	}
	if u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("must be an absolute URL")
	}
	return nil
}
