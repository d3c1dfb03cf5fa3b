package token

import "errors"

// DefaultKey is the cache key used when none is configured.
const DefaultKey = "token"

// Cache stores the bearer token between calls.
//
// Delete must return an error when the entry could not be removed; callers
// treat that as fatal, since a token that cannot be invalidated would be
// reused forever. Deleting a key that is not present is not an error.
type Cache interface {
	Contains(key string) (bool, error)
	Fetch(key string) (string, error)
	Save(key, token string) error
	Delete(key string) error
}

var (
	ErrNotFound   = errors.New("token not found")
	ErrInvalidKey = errors.New("invalid cache key")
)
