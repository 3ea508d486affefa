// Package dataflows implements the data-provider adapters behind the
// tool registry: Tushare/AKShare for A-share fundamentals and bars,
// Yahoo Finance and Longport for the non-A-share fallback path, news
// scraping, technical indicators, and the China-market regime tools.
package dataflows

import (
	"crypto/md5"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Cache is a file-based response cache keyed by provider/method/params,
// grounded on the same shape every data adapter here uses to avoid
// re-hitting rate-limited upstreams within a run.
type Cache struct {
	dir     string
	ttl     time.Duration
	enabled bool
}

// NewCache returns a Cache rooted at dir; Get/Set are no-ops when
// enabled is false.
func NewCache(dir string, ttl time.Duration, enabled bool) *Cache {
	return &Cache{dir: dir, ttl: ttl, enabled: enabled}
}

func (c *Cache) key(source, method string, params any) string {
	data, _ := json.Marshal(params)
	return fmt.Sprintf("%s_%s_%x.json", source, method, md5.Sum(data))
}

// Get loads a cached response into result, reporting whether it was
// present and unexpired.
func (c *Cache) Get(source, method string, params any, result any) bool {
	if !c.enabled {
		return false
	}
	path := filepath.Join(c.dir, c.key(source, method, params))
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	if time.Since(info.ModTime()) > c.ttl {
		_ = os.Remove(path)
		return false
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	return json.Unmarshal(data, result) == nil
}

// Set persists data under the cache key for (source, method, params).
func (c *Cache) Set(source, method string, params any, data any) error {
	if !c.enabled {
		return nil
	}
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return err
	}
	encoded, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(c.dir, c.key(source, method, params)), encoded, 0o644)
}
