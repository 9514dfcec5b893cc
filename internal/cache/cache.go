package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"
	"time"

	"github.com/ppiankov/tvlabel/internal/model"
)

// Cache defines the interface for caching
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// Key builds a namespaced cache key. Parts are hashed so arbitrary sentences
// are safe as file names.
func Key(namespace string, parts ...string) string {
	hash := sha256.Sum256([]byte(strings.Join(parts, "\x00")))
	return "tvlabel:v1:" + namespace + ":" + hex.EncodeToString(hash[:])
}

// New builds the cache described by cfg: nil when disabled, memory only when
// no directory is set, memory over disk otherwise.
func New(cfg model.CacheConfig) Cache {
	if !cfg.Enabled {
		return nil
	}
	if cfg.Dir == "" {
		return NewMemoryCache(cfg.MemoryTTL, 10*time.Minute)
	}
	return NewLayeredCache(cfg.MemoryTTL, cfg.Dir, cfg.DiskTTL)
}

// GetJSON decodes a cached JSON value. Undecodable entries count as misses.
func GetJSON[T any](c Cache, key string) (T, bool) {
	var v T
	if c == nil {
		return v, false
	}
	data, ok := c.Get(key)
	if !ok {
		return v, false
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return v, false
	}
	return v, true
}

// SetJSON stores v as JSON with the cache's default TTL.
func SetJSON[T any](c Cache, key string, v T) error {
	if c == nil {
		return nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.Set(key, data, 0)
}
