// Package cache stores provider replies and semantic service responses so
// identical inputs are not re-billed or re-clustered. Memory caching covers
// a single run; the disk layer survives across runs.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Cache is the storage contract shared by the memory, disk, and layered
// implementations.
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// Key derives a cache key from its parts, typically provider name,
// operation, and input text. Parts are hashed, so raw comment text never
// appears in a filename.
func Key(parts ...string) string {
	h := sha256.New()
	for _, p := range parts {
		h.Write([]byte(p))
		h.Write([]byte{0})
	}
	return "sheetlens:v1:" + hex.EncodeToString(h.Sum(nil))
}
