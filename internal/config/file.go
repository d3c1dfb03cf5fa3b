package config

import (
	"bytes"
	"fmt"
	"io"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/jrsteele09/go-docbuild/internal/errors"
)

// Load reads Options from a YAML file on fs. An empty file yields the defaults.
//
//	token_refresh: false
//	cache_key: docbuild-token
//	url: https://api.docbuild.example/
func Load(fs afero.Fs, path string) (Options, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return Options{}, errors.Wrapf(err, "read options file %s", path)
	}

	var raw rawOptions
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&raw); err != nil && !errors.Is(err, io.EOF) {
		return Options{}, fmt.Errorf("%w: %s: %w", errors.ErrInvalidConfig, path, err)
	}
	return raw.resolve()
}
