package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadUserCacheConfig_Defaults(t *testing.T) {
	cfg := LoadUserCacheConfig()
	assert.Equal(t, 300*time.Second, cfg.TTL)
	assert.Equal(t, "user", cfg.Prefix)
}

func TestLoadUserCacheConfig_FromEnv(t *testing.T) {
	t.Setenv("USER_CACHE_TTL", "90s")
	t.Setenv("USER_CACHE_PREFIX", "acct")

	cfg := LoadUserCacheConfig()
	assert.Equal(t, 90*time.Second, cfg.TTL)
	assert.Equal(t, "acct", cfg.Prefix)
}

func TestLoadRateLimitConfig_Defaults(t *testing.T) {
	cfg := LoadRateLimitConfig()
	assert.True(t, cfg.Enabled)
	assert.Equal(t, 10, cfg.Capacity)
	assert.Equal(t, 1, cfg.RefillTokens)
	assert.Equal(t, 6*time.Second, cfg.RefillInterval)
	assert.Equal(t, 10*time.Minute, cfg.TTL)
	assert.Equal(t, "ip_route", cfg.KeyStrategy)
}

func TestLoadRateLimitConfig_ClampsNonsense(t *testing.T) {
	t.Setenv("RATE_LIMIT_CAPACITY", "0")
	t.Setenv("RATE_LIMIT_REFILL_TOKENS", "-3")
	t.Setenv("RATE_LIMIT_REFILL_INTERVAL", "bogus")
	t.Setenv("RATE_LIMIT_TTL", "1s")

	cfg := LoadRateLimitConfig()
	assert.Equal(t, 1, cfg.Capacity)
	assert.Equal(t, 1, cfg.RefillTokens)
	assert.Equal(t, time.Second, cfg.RefillInterval)
	// TTL never drops below a few refill intervals so an in-use bucket
	// cannot expire mid-burst.
	assert.Equal(t, 5*time.Second, cfg.TTL)
}
