package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryCache implements CacheService in process memory
type MemoryCache struct {
	cache *gocache.Cache
}

// NewMemoryCache creates an empty in-process cache
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		cache: gocache.New(gocache.NoExpiration, time.Minute),
	}
}

// Get retrieves a value, treating expired entries as misses
func (m *MemoryCache) Get(key string) ([]byte, error) {
	value, ok := m.cache.Get(key)
	if !ok {
		return nil, ErrCacheMiss
	}
	return value.([]byte), nil
}

// Set stores a value; a zero expiration never expires
func (m *MemoryCache) Set(key string, value []byte, expiration time.Duration) error {
	if expiration <= 0 {
		expiration = gocache.NoExpiration
	}
	m.cache.Set(key, append([]byte(nil), value...), expiration)
	return nil
}

// Delete removes a value
func (m *MemoryCache) Delete(key string) error {
	m.cache.Delete(key)
	return nil
}
