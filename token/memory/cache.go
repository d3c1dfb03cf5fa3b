package memory

import (
	"fmt"
	"sync"

	"github.com/jrsteele09/go-docbuild/token"
)

var _ token.Cache = (*Cache)(nil)

// Cache keeps tokens in process memory. Safe for concurrent use.
type Cache struct {
	tokens map[string]string
	lock   sync.RWMutex
}

func New() *Cache {
	return &Cache{
		tokens: make(map[string]string),
	}
}

func (c *Cache) Contains(key string) (bool, error) {
	c.lock.RLock()
	defer c.lock.RUnlock()
	_, ok := c.tokens[key]
	return ok, nil
}

func (c *Cache) Fetch(key string) (string, error) {
	c.lock.RLock()
	defer c.lock.RUnlock()
	t, ok := c.tokens[key]
	if !ok {
		return "", fmt.Errorf("%w: %s", token.ErrNotFound, key)
	}
	return t, nil
}

func (c *Cache) Save(key, t string) error {
	if key == "" {
		return token.ErrInvalidKey
	}
	c.lock.Lock()
	defer c.lock.Unlock()
	c.tokens[key] = t
	return nil
}

func (c *Cache) Delete(key string) error {
	c.lock.Lock()
	defer c.lock.Unlock()
	delete(c.tokens, key)
	return nil
}

// Len returns the number of cached tokens.
func (c *Cache) Len() int {
	c.lock.RLock()
	defer c.lock.RUnlock()
	return len(c.tokens)
}
