// Package cache provides the redis-backed read cache and the invalidation
// policy applied after every successful mutation. The cache is advisory: any
// redis failure is logged and absorbed, and reads or writes of the engine
// never fail or block because of it.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store wraps a redis client with JSON encoding and silent failure. A nil
// client disables caching entirely: Get always misses and Set/Delete are
// no-ops, which is how the service degrades when redis is unreachable at
// startup.
type Store struct {
	rdb *redis.Client
}

// NewStore returns a Store; rdb may be nil.
func NewStore(rdb *redis.Client) *Store { return &Store{rdb: rdb} }

// Enabled reports whether a redis client is configured.
func (s *Store) Enabled() bool { return s != nil && s.rdb != nil }

// Get loads key into dest and reports whether a usable entry was found.
// Misses, redis errors and undecodable payloads all read as "not found".
func (s *Store) Get(ctx context.Context, key string, dest interface{}) bool {
	if !s.Enabled() {
		return false
	}
	b, err := s.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Printf("cache: get %s failed: %v", key, err)
		}
		return false
	}
	if err := json.Unmarshal(b, dest); err != nil {
		log.Printf("cache: decode %s failed: %v", key, err)
		return false
	}
	return true
}

// Set stores v under key for ttl. Failures are logged and dropped.
func (s *Store) Set(ctx context.Context, key string, v interface{}, ttl time.Duration) {
	if !s.Enabled() || ttl <= 0 {
		return
	}
	b, err := json.Marshal(v)
	if err != nil {
		log.Printf("cache: encode %s failed: %v", key, err)
		return
	}
	if err := s.rdb.SetEx(ctx, key, b, ttl).Err(); err != nil {
		log.Printf("cache: set %s failed: %v", key, err)
	}
}

// Delete drops the given keys. Failures are logged and dropped; a stale
// entry then simply ages out through its TTL.
func (s *Store) Delete(ctx context.Context, keys ...string) {
	if !s.Enabled() || len(keys) == 0 {
		return
	}
	if err := s.rdb.Del(ctx, keys...).Err(); err != nil {
		log.Printf("cache: delete %v failed: %v", keys, err)
	}
}
