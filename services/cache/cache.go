package cache

import (
	"errors"
	"time"

	"sjsage522/carwatcher/logger"
)

// ErrCacheMiss is returned by in-process caches for absent or expired keys
var ErrCacheMiss = errors.New("cache: miss")

// CacheService represents a generic cache service
type CacheService interface {
	// Get retrieves a value from the cache
	Get(key string) ([]byte, error)

	// Set stores a value in the cache with an expiration time
	Set(key string, value []byte, expiration time.Duration) error

	// Delete removes a value from the cache
	Delete(key string) error
}

// New returns a memcache-backed service when addr is set, otherwise an in-process cache
func New(addr string) CacheService {
	log := logger.ForCache()
	if addr == "" {
		log.Info().Msg("Using in-process cache")
		return NewMemoryCache()
	}
	log.Info().Str("addr", addr).Msg("Using memcache")
	return NewMemcacheService(addr)
}
