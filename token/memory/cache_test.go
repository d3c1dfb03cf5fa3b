package memory_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jrsteele09/go-docbuild/token"
	"github.com/jrsteele09/go-docbuild/token/memory"
)

func TestCache(t *testing.T) {
	c := memory.New()

	ok, err := c.Contains(token.DefaultKey)
	require.NoError(t, err)
	require.False(t, ok)

	_, err = c.Fetch(token.DefaultKey)
	require.ErrorIs(t, err, token.ErrNotFound)

	require.NoError(t, c.Save(token.DefaultKey, "myapitoken"))
	ok, err = c.Contains(token.DefaultKey)
	require.NoError(t, err)
	require.True(t, ok)

	got, err := c.Fetch(token.DefaultKey)
	require.NoError(t, err)
	require.Equal(t, "myapitoken", got)

	require.NoError(t, c.Save(token.DefaultKey, "newtoken"))
	got, err = c.Fetch(token.DefaultKey)
	require.NoError(t, err)
	require.Equal(t, "newtoken", got)
	require.Equal(t, 1, c.Len())

	require.NoError(t, c.Delete(token.DefaultKey))
	require.NoError(t, c.Delete(token.DefaultKey), "deleting a missing key is not an error")
	ok, err = c.Contains(token.DefaultKey)
	require.NoError(t, err)
	require.False(t, ok)

	require.ErrorIs(t, c.Save("", "x"), token.ErrInvalidKey)
}

func TestCacheConcurrentSaves(t *testing.T) {
	c := memory.New()

	var wg sync.WaitGroup
	for _, tok := range []string{"a", "b", "c", "d"} {
		wg.Add(1)
		go func(tok string) {
			defer wg.Done()
			require.NoError(t, c.Save(token.DefaultKey, tok))
		}(tok)
	}
	wg.Wait()

	got, err := c.Fetch(token.DefaultKey)
	require.NoError(t, err)
	require.Contains(t, []string{"a", "b", "c", "d"}, got)
}
