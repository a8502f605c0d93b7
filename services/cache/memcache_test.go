package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// This test requires a running memcached instance
// If memcached is not available, the test will be skipped
func TestMemcacheService(t *testing.T) {
	mc := NewMemcacheService("localhost:11211")

	if err := mc.Ping(); err != nil {
		t.Skip("Memcached is not available, skipping test")
	}

	// Set a value
	err := mc.Set("carwatcher_test_key", []byte("600"), 2*time.Second)
	assert.NoError(t, err)

	// Get the value
	value, err := mc.Get("carwatcher_test_key")
	assert.NoError(t, err)
	assert.Equal(t, "600", string(value))

	// Delete the value
	assert.NoError(t, mc.Delete("carwatcher_test_key"))

	// Deleted keys read as misses and deleting twice is fine
	_, err = mc.Get("carwatcher_test_key")
	assert.ErrorIs(t, err, ErrCacheMiss)
	assert.NoError(t, mc.Delete("carwatcher_test_key"))
}
