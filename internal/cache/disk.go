package cache

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// DiskCache keeps one file per key inside a directory. Freshness is judged
// by the file modification time.
type DiskCache struct {
	dir    string
	now    func() time.Time
	logger *slog.Logger
}

// NewDiskCache creates a DiskCache and ensures the directory exists. A nil
// logger falls back to slog.Default().
func NewDiskCache(dir string, logger *slog.Logger) (*DiskCache, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory %s: %w", dir, err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &DiskCache{dir: dir, now: time.Now, logger: logger}, nil
}

// Dir returns the backing directory.
func (c *DiskCache) Dir() string {
	return c.dir
}

func (c *DiskCache) path(key string) string {
	return filepath.Join(c.dir, sanitizeKey(key))
}

// Get implements Cache.
func (c *DiskCache) Get(key string, ttl time.Duration) ([]byte, bool) {
	p := c.path(key)
	info, err := os.Stat(p)
	if err != nil {
		if !os.IsNotExist(err) {
			c.logger.Debug("cache stat failed", "key", key, "error", err)
		}
		return nil, false
	}
	if !fresh(info.ModTime(), c.now(), ttl) {
		return nil, false
	}

	data, err := os.ReadFile(p)
	if err != nil {
		c.logger.Debug("cache read failed", "key", key, "error", err)
		return nil, false
	}
	return data, true
}

// Put implements Cache. The value is written to a temporary file and
// renamed into place so readers never observe a partial entry.
func (c *DiskCache) Put(key string, data []byte) error {
	if err := os.MkdirAll(c.dir, 0755); err != nil {
		return fmt.Errorf("failed to create cache directory %s: %w", c.dir, err)
	}

	tmp, err := os.CreateTemp(c.dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create cache temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write cache entry %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close cache entry %s: %w", key, err)
	}
	if err := os.Rename(tmpName, c.path(key)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to store cache entry %s: %w", key, err)
	}
	return nil
}
