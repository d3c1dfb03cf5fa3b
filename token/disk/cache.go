package disk

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"

	"github.com/peterbourgon/diskv/v3"

	"github.com/jrsteele09/go-docbuild/internal/errors"
	"github.com/jrsteele09/go-docbuild/token"
)

const (
	dirPerm  = 0o700
	filePerm = 0o600
)

var plainKey = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// hashedPrefix marks file names derived from keys that are not file safe.
const hashedPrefix = "sha256-"

var _ token.Cache = (*Cache)(nil)

// Cache persists tokens as files under a base directory, so a token
// survives process restarts and is shared by processes using the same directory.
type Cache struct {
	dv *diskv.Diskv
}

// DefaultDir is where New stores tokens when no directory is given.
func DefaultDir() string {
	return filepath.Join(os.TempDir(), "docbuild")
}

// New returns a cache rooted at dir, or DefaultDir when dir is empty.
func New(dir string) *Cache {
	if dir == "" {
		dir = DefaultDir()
	}

	// Flat layout: one file per key directly in dir. No read cache, other
	// processes may replace or remove the file at any time.
	flatTransform := func(s string) []string { return []string{} }

	return &Cache{
		dv: diskv.New(diskv.Options{
			BasePath:     dir,
			Transform:    flatTransform,
			CacheSizeMax: 0,
			PathPerm:     dirPerm,
			FilePerm:     filePerm,
		}),
	}
}

func (c *Cache) Contains(key string) (bool, error) {
	name, err := fileName(key)
	if err != nil {
		return false, err
	}
	return c.dv.Has(name), nil
}

func (c *Cache) Fetch(key string) (string, error) {
	name, err := fileName(key)
	if err != nil {
		return "", err
	}
	value, err := c.dv.Read(name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", token.ErrNotFound, key)
		}
		return "", errors.Wrapf(err, "diskv.Read %s", key)
	}
	return string(value), nil
}

func (c *Cache) Save(key, t string) error {
	name, err := fileName(key)
	if err != nil {
		return err
	}
	return errors.Wrapf(c.dv.Write(name, []byte(t)), "diskv.Write %s", key)
}

// Delete removes key. A file already removed by another process counts as deleted.
func (c *Cache) Delete(key string) error {
	name, err := fileName(key)
	if err != nil {
		return err
	}
	if err := c.dv.Erase(name); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return errors.Wrapf(err, "diskv.Erase %s", key)
	}
	return nil
}

// Dir returns the directory tokens are written to.
func (c *Cache) Dir() string {
	return c.dv.BasePath
}

// fileName maps a cache key to a file name in the base directory. Keys that
// are already file safe are used as is, anything else is hashed.
func fileName(key string) (string, error) {
	if key == "" {
		return "", fmt.Errorf("%w: empty key", token.ErrInvalidKey)
	}
	if plainKey.MatchString(key) {
		return key, nil
	}
	sum := sha256.Sum256([]byte(key))
	return hashedPrefix + hex.EncodeToString(sum[:]), nil
}
