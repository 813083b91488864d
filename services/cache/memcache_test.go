package cache

import (
	"testing"
	"time"

	"github.com/bradfitz/gomemcache/memcache"
	"github.com/stretchr/testify/assert"
)

// Requires a running memcached instance; skipped otherwise.
func TestMemcacheService(t *testing.T) {
	mc := NewMemcacheService("localhost:11211")

	_, err := mc.client.Get("ping")
	if err != nil && err != memcache.ErrCacheMiss {
		t.Skip("Memcached is not available, skipping test")
	}

	err = mc.Set("rate_limited_comprar", []byte("1"), 1*time.Second)
	assert.NoError(t, err)

	value, err := mc.Get("rate_limited_comprar")
	assert.NoError(t, err)
	assert.Equal(t, "1", string(value))

	err = mc.Delete("rate_limited_comprar")
	assert.NoError(t, err)

	_, err = mc.Get("rate_limited_comprar")
	assert.Error(t, err)
}
