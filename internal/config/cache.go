package config

import (
	"os"
	"strconv"
	"time"
)

// UserCacheConfig defines settings for the redis-backed user snapshot cache
// consulted on every authenticated request.  TTL bounds how long a stale
// snapshot may be served after the underlying row changes; Prefix namespaces
// the keys so the cache can share a redis database with the rate limiter.
type UserCacheConfig struct {
	TTL    time.Duration
	Prefix string
}

// LoadUserCacheConfig reads environment variables to build a UserCacheConfig.
// Defaults are used when variables are not set.
func LoadUserCacheConfig() UserCacheConfig {
	return UserCacheConfig{
		TTL:    parseDur(getenv("USER_CACHE_TTL", "300s")),
		Prefix: getenv("USER_CACHE_PREFIX", "user"),
	}
}

// Helper functions shared with redis.go and ratelimit.go.
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func atoi(s string) int {
	i, _ := strconv.Atoi(s)
	return i
}

func parseDur(s string) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return time.Second
	}
	return d
}
