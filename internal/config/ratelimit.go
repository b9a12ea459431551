package config

import (
	"strconv"
	"time"
)

// RateLimitConfig drives the redis token bucket middleware. When Enabled is
// false or no redis client exists, rate limiting is a no-op.
type RateLimitConfig struct {
	Enabled        bool
	Capacity       int           // bucket size
	RefillTokens   int           // tokens added per interval
	RefillInterval time.Duration // refill cadence
	TTL            time.Duration // idle bucket expiry
	Prefix         string        // key namespace
	KeyStrategy    string        // ip, user, route or combinations
	Debug          bool
}

// LoadRateLimitConfig reads the limiter settings from the environment.
func LoadRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		Enabled:        getenv("RATELIMIT_ENABLED", "true") == "true",
		Capacity:       atoi(getenv("RATELIMIT_CAPACITY", "60")),
		RefillTokens:   atoi(getenv("RATELIMIT_REFILL_TOKENS", "1")),
		RefillInterval: parseDur(getenv("RATELIMIT_REFILL_INTERVAL", "1s")),
		TTL:            parseDur(getenv("RATELIMIT_TTL", "10m")),
		Prefix:         getenv("RATELIMIT_PREFIX", "ratelimit"),
		KeyStrategy:    getenv("RATELIMIT_KEY_STRATEGY", "ip_user_route"),
		Debug:          getenv("RATELIMIT_DEBUG", "false") == "true",
	}
}

func atoi(s string) int {
	i, _ := strconv.Atoi(s)
	return i
}
