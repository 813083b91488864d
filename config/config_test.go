package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	// Test with default values
	config := LoadConfig()
	assert.Equal(t, "https://www.boletinoficial.gob.ar", config.BoletinBaseURL)
	assert.Equal(t, "https://comprar.gob.ar", config.ComprarBaseURL)
	assert.Equal(t, "https://comprar.gob.ar/Compras.aspx?qs=W1HXHGHtH10=", config.ComprarListURL)
	assert.Equal(t, time.Second, config.RequestDelay)
	assert.Equal(t, 30*time.Second, config.HTTPTimeout)
	assert.Equal(t, 0, config.MaxPages)
	assert.True(t, config.ChromeHeadless)
	assert.Empty(t, config.RedisAddr)
	assert.Empty(t, config.MemcacheAddr)
	assert.Equal(t, "procesos", config.RedisStream)

	// Test with environment variables
	os.Setenv("COMPRAR_LIST_URL", "https://example.com/Compras.aspx?qs=x")
	os.Setenv("REQUEST_DELAY_MS", "250")
	os.Setenv("MAX_PAGES", "3")
	os.Setenv("CHROME_HEADLESS", "false")
	os.Setenv("REDIS_ADDR", "redis.example.com:6379")
	os.Setenv("REDIS_DB", "1")
	os.Setenv("MEMCACHE_ADDR", "memcache.example.com:11211")

	config = LoadConfig()
	assert.Equal(t, "https://example.com/Compras.aspx?qs=x", config.ComprarListURL)
	assert.Equal(t, 250*time.Millisecond, config.RequestDelay)
	assert.Equal(t, 3, config.MaxPages)
	assert.False(t, config.ChromeHeadless)
	assert.Equal(t, "redis.example.com:6379", config.RedisAddr)
	assert.Equal(t, 1, config.RedisDB)
	assert.Equal(t, "memcache.example.com:11211", config.MemcacheAddr)

	// Clean up
	os.Unsetenv("COMPRAR_LIST_URL")
	os.Unsetenv("REQUEST_DELAY_MS")
	os.Unsetenv("MAX_PAGES")
	os.Unsetenv("CHROME_HEADLESS")
	os.Unsetenv("REDIS_ADDR")
	os.Unsetenv("REDIS_DB")
	os.Unsetenv("MEMCACHE_ADDR")
}

func TestValidate(t *testing.T) {
	cfg := LoadConfig()
	require.NoError(t, cfg.Validate())

	cfg.BoletinBaseURL = ""
	assert.Error(t, cfg.Validate())

	cfg = LoadConfig()
	cfg.RequestDelay = -time.Second
	assert.Error(t, cfg.Validate())

	cfg = LoadConfig()
	cfg.MaxPages = -1
	assert.Error(t, cfg.Validate())

	cfg = LoadConfig()
	cfg.HTTPTimeout = 0
	assert.Error(t, cfg.Validate())
}
