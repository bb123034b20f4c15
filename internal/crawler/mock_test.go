package crawler

import (
	"errors"
	"sync"
	"time"

	"sjsage522/partwatch/services/cache"
)

var errCacheDown = errors.New("memcache: no servers configured or available")

// UnavailableCache behaves like a memcache service whose server is unreachable
type UnavailableCache struct {
	mu   sync.Mutex
	sets int
}

var _ cache.CacheService = (*UnavailableCache)(nil)

func (m *UnavailableCache) Get(key string) ([]byte, error) {
	return nil, errCacheDown
}

func (m *UnavailableCache) Set(key string, value []byte, expiration time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sets++
	return errCacheDown
}

func (m *UnavailableCache) Delete(key string) error {
	return errCacheDown
}

func (m *UnavailableCache) Sets() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sets
}
