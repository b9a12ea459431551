package config

import (
	"os"
	"time"
)

// CacheConfig holds the freshness window for each cached read category.
// Aggregate and listing data tolerate minutes of staleness; availability and
// spot-status data go stale within seconds to a couple of minutes, so their
// windows are short. A zero duration disables caching for that category.
type CacheConfig struct {
	Dashboard    time.Duration // admin dashboard aggregates
	LotList      time.Duration // full lot listing
	Availability time.Duration // lots-with-free-spots listing
	SpotList     time.Duration // per-lot spot listing
	UserStats    time.Duration // per-user booking stats
	History      time.Duration // per-user reservation history
}

// LoadCacheConfig reads the per-category TTLs from the environment, with
// defaults matching how quickly each category goes stale.
func LoadCacheConfig() CacheConfig {
	return CacheConfig{
		Dashboard:    parseDur(getenv("CACHE_DASHBOARD_TTL", "5m")),
		LotList:      parseDur(getenv("CACHE_LOT_LIST_TTL", "10m")),
		Availability: parseDur(getenv("CACHE_AVAILABILITY_TTL", "60s")),
		SpotList:     parseDur(getenv("CACHE_SPOT_LIST_TTL", "60s")),
		UserStats:    parseDur(getenv("CACHE_USER_STATS_TTL", "2m")),
		History:      parseDur(getenv("CACHE_HISTORY_TTL", "2m")),
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseDur(s string) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return time.Minute
	}
	return d
}
