// Package cache provides the key/value stores used to memoize fetched
// documents. Every backend treats an I/O failure on read as a miss.
package cache

import (
	"strings"
	"time"
)

// Cache stores opaque documents by key.
type Cache interface {
	// Get returns the stored bytes when the entry exists and was written
	// less than ttl ago. A non-positive ttl never expires.
	Get(key string, ttl time.Duration) ([]byte, bool)
	// Put stores data under key, replacing any previous value.
	Put(key string, data []byte) error
}

// fresh reports whether an entry written at modTime is still within ttl.
func fresh(modTime, now time.Time, ttl time.Duration) bool {
	if ttl <= 0 {
		return true
	}
	return now.Sub(modTime) < ttl
}

// sanitizeKey makes a key safe for use as a file name.
func sanitizeKey(key string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|', 0:
			return '-'
		}
		return r
	}, key)
}
