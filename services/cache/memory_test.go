package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCache(t *testing.T) {
	c := NewMemoryCache()

	_, err := c.Get("missing")
	assert.ErrorIs(t, err, ErrMiss)

	require.NoError(t, c.Set("k", []byte("v"), time.Minute))
	value, err := c.Get("k")
	require.NoError(t, err)
	assert.Equal(t, "v", string(value))

	require.NoError(t, c.Delete("k"))
	_, err = c.Get("k")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestMemoryCacheExpiry(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	c := NewMemoryCache()
	c.now = func() time.Time { return now }

	require.NoError(t, c.Set("cooldown", []byte("500"), 10*time.Second))
	require.NoError(t, c.Set("forever", []byte("x"), 0))

	now = now.Add(9 * time.Second)
	_, err := c.Get("cooldown")
	assert.NoError(t, err)

	now = now.Add(time.Second)
	_, err = c.Get("cooldown")
	assert.ErrorIs(t, err, ErrMiss)
	assert.Equal(t, 1, c.Size())

	now = now.Add(24 * time.Hour)
	_, err = c.Get("forever")
	assert.NoError(t, err)
}

func TestNewSelectsBackend(t *testing.T) {
	assert.IsType(t, &MemoryCache{}, New(""))
	assert.IsType(t, &MemcacheService{}, New("localhost:11211"))
}

func TestMemoryCacheExpiryKeepsConcurrentSet(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	c := NewMemoryCache()
	armed := false
	c.now = func() time.Time {
		if armed {
			// a writer refreshes the key between the expiry check and the delete
			armed = false
			require.NoError(t, c.Set("cooldown", []byte("fresh"), time.Hour))
		}
		return now
	}

	require.NoError(t, c.Set("cooldown", []byte("stale"), time.Second))
	now = now.Add(2 * time.Second)

	armed = true
	_, err := c.Get("cooldown")
	assert.ErrorIs(t, err, ErrMiss)

	value, err := c.Get("cooldown")
	require.NoError(t, err)
	assert.Equal(t, "fresh", string(value))
}
